package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/resume-tabulator/internal/logging"
	"github.com/jonathan/resume-tabulator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	files []types.SourceFile
	err   error
}

func (f *fakeLister) ListPDFs(_ context.Context, _ string) ([]types.SourceFile, error) {
	out := make([]types.SourceFile, len(f.files))
	copy(out, f.files)
	return out, f.err
}

type fakeProcessor struct {
	mu   sync.Mutex
	ids  []string
	fail map[string]bool
}

func (p *fakeProcessor) RunSingle(_ context.Context, fileID string) (types.OutputRow, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, fileID)
	if p.fail[fileID] {
		return nil, errors.New("parse failed")
	}
	return types.OutputRow{}, nil
}

func (p *fakeProcessor) calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ids...)
}

type memoryLog struct {
	mu        sync.Mutex
	entries   [][]string
	readErr   error
	appendErr error
}

func (m *memoryLog) ColumnValues(_ context.Context, column string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	if column != IDColumn {
		return nil, errors.New("unexpected column " + column)
	}
	var ids []string
	for _, e := range m.entries {
		ids = append(ids, e[1])
	}
	return ids, nil
}

func (m *memoryLog) Append(_ context.Context, cells []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, cells)
	return nil
}

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newWatcher(files *fakeLister, proc *fakeProcessor, log *memoryLog) *Watcher {
	w := New(files, proc, log, "folder", logging.Discard())
	w.now = func() time.Time { return fixedNow }
	return w
}

func TestRunOnce_ProcessesOnlyNewFiles(t *testing.T) {
	files := &fakeLister{files: []types.SourceFile{
		{ID: "b", Name: "12. Bo Li.PDF"},
		{ID: "a", Name: "3. Ann Lee.pdf"},
		{ID: "c", Name: "cover.pdf"},
	}}
	proc := &fakeProcessor{}
	log := &memoryLog{entries: [][]string{{"3", "a", "3. Ann Lee", "earlier"}}}

	result, err := newWatcher(files, proc, log).RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, PollResult{Listed: 3, New: 2, Processed: 2}, result)
	assert.Equal(t, []string{"b", "c"}, proc.calls())
	require.Len(t, log.entries, 3)
	assert.Equal(t, []string{"12", "b", "12. Bo Li", "2026-03-04T05:06:07Z"}, log.entries[1])
	assert.Equal(t, []string{"", "c", "cover", "2026-03-04T05:06:07Z"}, log.entries[2])
}

func TestRunOnce_LogIndexFromRawName(t *testing.T) {
	files := &fakeLister{files: []types.SourceFile{{ID: "x", Name: "12.pdf"}}}
	log := &memoryLog{}

	_, err := newWatcher(files, &fakeProcessor{}, log).RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, log.entries, 1)
	assert.Equal(t, []string{"12", "x", "12", "2026-03-04T05:06:07Z"}, log.entries[0])
}

func TestRunOnce_FailedFileIsRetriedNextPoll(t *testing.T) {
	files := &fakeLister{files: []types.SourceFile{{ID: "a", Name: "1. A.pdf"}, {ID: "b", Name: "2. B.pdf"}}}
	proc := &fakeProcessor{fail: map[string]bool{"a": true}}
	log := &memoryLog{}
	w := newWatcher(files, proc, log)

	result, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, result.Failed)
	assert.Equal(t, 1, result.Processed)
	assert.Len(t, log.entries, 1)

	proc.fail = nil
	result, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.New)
	assert.Equal(t, []string{"a", "b", "a"}, proc.calls())
}

func TestRunOnce_Errors(t *testing.T) {
	t.Run("log read", func(t *testing.T) {
		_, err := newWatcher(&fakeLister{}, &fakeProcessor{}, &memoryLog{readErr: errors.New("403")}).
			RunOnce(context.Background())
		assert.ErrorContains(t, err, "failed to read log sheet")
	})
	t.Run("list", func(t *testing.T) {
		_, err := newWatcher(&fakeLister{err: errors.New("404")}, &fakeProcessor{}, &memoryLog{}).
			RunOnce(context.Background())
		assert.ErrorContains(t, err, "failed to list folder")
	})
	t.Run("log append stops the poll", func(t *testing.T) {
		files := &fakeLister{files: []types.SourceFile{{ID: "a", Name: "1. A.pdf"}, {ID: "b", Name: "2. B.pdf"}}}
		proc := &fakeProcessor{}
		_, err := newWatcher(files, proc, &memoryLog{appendErr: errors.New("quota")}).RunOnce(context.Background())
		assert.ErrorContains(t, err, `failed to log "1. A.pdf"`)
		assert.Equal(t, []string{"a"}, proc.calls())
	})
}

func TestRun_PollsUntilCanceled(t *testing.T) {
	files := &fakeLister{files: []types.SourceFile{{ID: "a", Name: "1. A.pdf"}}}
	proc := &fakeProcessor{}
	log := &memoryLog{}
	w := newWatcher(files, proc, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, 10*time.Millisecond) }()

	require.Eventually(t, func() bool { return len(proc.calls()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, []string{"a"}, proc.calls(), "logged file is not processed again")
}

func TestRun_RejectsNonPositiveInterval(t *testing.T) {
	w := newWatcher(&fakeLister{}, &fakeProcessor{}, &memoryLog{})
	assert.Error(t, w.Run(context.Background(), 0))
}
