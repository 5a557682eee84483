// Package drive lists and downloads resume PDFs from a Google Drive folder.
package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-tabulator/internal/types"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	mimePDF  = "application/pdf"
	pageSize = 1000
)

// Store reads resumes from Drive. It wraps one authenticated service that
// is reused for every call.
type Store struct {
	svc *drive.Service
}

// NewStore creates a Store from Google API client options.
func NewStore(ctx context.Context, opts ...option.ClientOption) (*Store, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Store{svc: svc}, nil
}

// FolderQuery builds the Drive search query for PDFs directly inside a folder.
func FolderQuery(folderID string) string {
	escaped := strings.ReplaceAll(folderID, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false", escaped, mimePDF)
}

// ListPDFs returns every PDF in folderID, following page tokens until Drive
// reports no further page.
func (s *Store) ListPDFs(ctx context.Context, folderID string) ([]types.SourceFile, error) {
	var files []types.SourceFile
	pageToken := ""

	for {
		call := s.svc.Files.List().
			Context(ctx).
			Q(FolderQuery(folderID)).
			Fields("nextPageToken, files(id, name)").
			PageSize(pageSize).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list files in folder %s: %w", folderID, err)
		}
		for _, f := range resp.Files {
			files = append(files, types.SourceFile{ID: f.Id, Name: f.Name})
		}

		if resp.NextPageToken == "" {
			return files, nil
		}
		pageToken = resp.NextPageToken
	}
}

// Download returns the full contents of a file.
func (s *Store) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.svc.Files.Get(fileID).Context(ctx).SupportsAllDrives(true).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return data, nil
}

// Metadata returns the id and display name of a file.
func (s *Store) Metadata(ctx context.Context, fileID string) (types.SourceFile, error) {
	f, err := s.svc.Files.Get(fileID).Context(ctx).Fields("id, name").SupportsAllDrives(true).Do()
	if err != nil {
		return types.SourceFile{}, fmt.Errorf("failed to get metadata for file %s: %w", fileID, err)
	}
	return types.SourceFile{ID: f.Id, Name: f.Name}, nil
}
