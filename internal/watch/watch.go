// Package watch polls the source folder and processes files that have not
// been logged yet. Each processed file gets one row in a log sheet, which
// doubles as the record of what has been seen.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/resume-tabulator/internal/rows"
	"github.com/jonathan/resume-tabulator/internal/types"
)

// IDColumn is the log sheet column holding processed file ids.
const IDColumn = "B"

// Lister lists the PDFs in a folder.
type Lister interface {
	ListPDFs(ctx context.Context, folderID string) ([]types.SourceFile, error)
}

// Processor runs the single-file pipeline.
type Processor interface {
	RunSingle(ctx context.Context, fileID string) (types.OutputRow, error)
}

// LogSheet stores one entry per processed file.
type LogSheet interface {
	ColumnValues(ctx context.Context, column string) ([]string, error)
	Append(ctx context.Context, cells []string) error
}

// Watcher processes newly uploaded files.
type Watcher struct {
	files    Lister
	proc     Processor
	log      LogSheet
	folderID string
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Watcher over folderID.
func New(files Lister, proc Processor, log LogSheet, folderID string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		files:    files,
		proc:     proc,
		log:      log,
		folderID: folderID,
		logger:   logger.With("component", "watch"),
		now:      time.Now,
	}
}

// PollResult summarizes one poll.
type PollResult struct {
	Listed    int      `json:"listed"`
	New       int      `json:"new"`
	Processed int      `json:"processed"`
	Failed    []string `json:"failed,omitempty"`
}

// RunOnce lists the folder, skips ids already in the log sheet and processes
// the rest in ordinal order. A failed file is not logged, so the next poll
// retries it.
func (w *Watcher) RunOnce(ctx context.Context) (PollResult, error) {
	var result PollResult

	logged, err := w.log.ColumnValues(ctx, IDColumn)
	if err != nil {
		return result, fmt.Errorf("failed to read log sheet: %w", err)
	}
	seen := make(map[string]bool, len(logged))
	for _, id := range logged {
		seen[id] = true
	}

	files, err := w.files.ListPDFs(ctx, w.folderID)
	if err != nil {
		return result, fmt.Errorf("failed to list folder: %w", err)
	}
	rows.SortFiles(files)
	result.Listed = len(files)

	for _, file := range files {
		if seen[file.ID] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.New++

		w.logger.Info("new file uploaded", "file", file.Name, "file_id", file.ID)
		if _, err := w.proc.RunSingle(ctx, file.ID); err != nil {
			w.logger.Error("failed to process file", "file", file.Name, "error", err)
			result.Failed = append(result.Failed, file.ID)
			continue
		}

		if err := w.log.Append(ctx, w.logEntry(file)); err != nil {
			// The row is already in the output sheet; without a log entry
			// the next poll would process it again.
			return result, fmt.Errorf("failed to log %q: %w", file.Name, err)
		}
		seen[file.ID] = true
		result.Processed++
	}

	return result, nil
}

func (w *Watcher) logEntry(file types.SourceFile) []string {
	return []string{rows.LogIndex(file.Name), file.ID, rows.CleanName(file.Name), w.now().Format(time.RFC3339)}
}

// Run polls immediately and then every interval until ctx is done. Poll
// errors are logged and the next tick tries again.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", interval)
	}
	w.logger.Info("watching folder", "folder_id", w.folderID, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := w.RunOnce(ctx)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		case err != nil:
			w.logger.Error("poll failed", "error", err)
		case result.New > 0:
			w.logger.Info("poll finished", "new", result.New, "processed", result.Processed, "failed", len(result.Failed))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
