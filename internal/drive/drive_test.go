package drive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonathan/resume-tabulator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// newTestStore points a Store at a fake Drive API served by handler.
func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewStore(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return store
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestFolderQuery(t *testing.T) {
	assert.Equal(t,
		"'folder123' in parents and mimeType='application/pdf' and trashed=false",
		FolderQuery("folder123"))
	assert.Equal(t,
		`'it\'s' in parents and mimeType='application/pdf' and trashed=false`,
		FolderQuery("it's"))
}

func TestListPDFs_Paginates(t *testing.T) {
	var tokens []string
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/files"), r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, FolderQuery("folder-1"), q.Get("q"))
		assert.Equal(t, "1000", q.Get("pageSize"))
		tokens = append(tokens, q.Get("pageToken"))

		switch q.Get("pageToken") {
		case "":
			writeJSON(t, w, map[string]any{
				"nextPageToken": "page-2",
				"files": []map[string]string{
					{"id": "a", "name": "2. Bob.pdf"},
					{"id": "b", "name": "1. Ann.pdf"},
				},
			})
		case "page-2":
			writeJSON(t, w, map[string]any{
				"files": []map[string]string{{"id": "c", "name": "resume.pdf"}},
			})
		default:
			t.Errorf("unexpected page token %q", q.Get("pageToken"))
		}
	})

	files, err := store.ListPDFs(context.Background(), "folder-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"", "page-2"}, tokens)
	assert.Equal(t, []types.SourceFile{
		{ID: "a", Name: "2. Bob.pdf"},
		{ID: "b", Name: "1. Ann.pdf"},
		{ID: "c", Name: "resume.pdf"},
	}, files)
}

func TestListPDFs_Error(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"code": 404, "message": "folder not found"}}`, http.StatusNotFound)
	})

	_, err := store.ListPDFs(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list files in folder missing")
}

func TestDownload(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/files/file-7"), r.URL.Path)
		assert.Equal(t, "media", r.URL.Query().Get("alt"))
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	})

	data, err := store.Download(context.Background(), "file-7")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
}

func TestMetadata(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/files/file-7"), r.URL.Path)
		assert.NotEqual(t, "media", r.URL.Query().Get("alt"))
		writeJSON(t, w, map[string]string{"id": "file-7", "name": "7. Grace Hopper.pdf"})
	})

	file, err := store.Metadata(context.Background(), "file-7")
	require.NoError(t, err)
	assert.Equal(t, types.SourceFile{ID: "file-7", Name: "7. Grace Hopper.pdf"}, file)
}
