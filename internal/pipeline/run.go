// Package pipeline orchestrates resume processing: list, download, extract,
// parse, build a row and append it to the output store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tabulator/internal/extraction"
	"github.com/jonathan/resume-tabulator/internal/rows"
	"github.com/jonathan/resume-tabulator/internal/types"
)

// FileStore is the source of resume files.
type FileStore interface {
	ListPDFs(ctx context.Context, folderID string) ([]types.SourceFile, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
	Metadata(ctx context.Context, fileID string) (types.SourceFile, error)
}

// Parser extracts the resume field schema from plain text.
type Parser interface {
	Parse(ctx context.Context, text, fileName string) (types.ParsedFields, error)
}

// OutputStore receives the header and one row per processed file.
type OutputStore interface {
	WriteHeader(ctx context.Context, header []string) error
	AppendRow(ctx context.Context, row types.OutputRow) error
}

// Extractor turns PDF bytes into text.
type Extractor func(ctx context.Context, data []byte) (string, error)

// FailurePolicy decides what a batch does after a file fails.
type FailurePolicy string

const (
	// PolicyAbort stops the batch at the first failed file.
	PolicyAbort FailurePolicy = "abort"
	// PolicyContinue logs the failure, records it and moves to the next file.
	PolicyContinue FailurePolicy = "continue"
)

// ParseFailurePolicy maps a config value to a FailurePolicy. Empty means abort.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", PolicyAbort:
		return PolicyAbort, nil
	case PolicyContinue:
		return PolicyContinue, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want %q or %q)", s, PolicyAbort, PolicyContinue)
	}
}

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	RunID    string `json:"run_id,omitempty"`
	FileID   string `json:"file_id,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Stage    Stage  `json:"stage,omitempty"`
	Message  string `json:"message"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options configures a Pipeline.
type Options struct {
	FolderID      string
	FailurePolicy FailurePolicy
	Extract       Extractor
	Logger        *slog.Logger
	OnProgress    ProgressCallback
}

// Pipeline runs the per-file resume flow against injected collaborators.
// The collaborators are created once per process and shared across runs.
type Pipeline struct {
	files  FileStore
	parser Parser
	out    OutputStore
	opts   Options
	logger *slog.Logger
}

// New creates a Pipeline.
func New(files FileStore, parser Parser, out OutputStore, opts Options) *Pipeline {
	if opts.Extract == nil {
		opts.Extract = extraction.ExtractText
	}
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = PolicyAbort
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{files: files, parser: parser, out: out, opts: opts, logger: logger}
}

// FailedFile records a file skipped under PolicyContinue.
type FailedFile struct {
	File  types.SourceFile `json:"file"`
	Stage Stage            `json:"stage"`
	Error string           `json:"error"`
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	RunID     string            `json:"run_id"`
	Total     int               `json:"total"`
	Processed int               `json:"processed"`
	Rows      []types.OutputRow `json:"rows,omitempty"`
	Failed    []FailedFile      `json:"failed,omitempty"`
}

// RunBatch writes the header, then processes every PDF in the configured
// folder in ordinal order. Under PolicyAbort the first failure ends the run
// and is returned along with the partial result.
func (p *Pipeline) RunBatch(ctx context.Context) (*BatchResult, error) {
	result := &BatchResult{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", result.RunID)

	if err := p.out.WriteHeader(ctx, types.HeaderRow()); err != nil {
		return result, fmt.Errorf("failed to write header: %w", err)
	}

	files, err := p.files.ListPDFs(ctx, p.opts.FolderID)
	if err != nil {
		return result, fmt.Errorf("failed to list source folder: %w", err)
	}
	rows.SortFiles(files)
	result.Total = len(files)
	logger.Info("batch started", "folder_id", p.opts.FolderID, "files", len(files), "policy", p.opts.FailurePolicy)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		row, err := p.processFile(ctx, result.RunID, file)
		if err != nil {
			if p.opts.FailurePolicy != PolicyContinue {
				logger.Error("batch aborted", "file", file.Name, "error", err)
				return result, err
			}
			var stage Stage
			var fileErr *FileError
			if errors.As(err, &fileErr) {
				stage = fileErr.Stage
			}
			logger.Warn("file failed, continuing", "file", file.Name, "stage", stage, "error", err)
			result.Failed = append(result.Failed, FailedFile{File: file, Stage: stage, Error: err.Error()})
			continue
		}
		result.Processed++
		result.Rows = append(result.Rows, row)
	}

	logger.Info("batch finished", "processed", result.Processed, "failed", len(result.Failed))
	return result, nil
}

// RunSingle processes one file by id, without writing the header.
func (p *Pipeline) RunSingle(ctx context.Context, fileID string) (types.OutputRow, error) {
	if fileID == "" {
		return nil, ErrMissingFileID
	}

	runID := uuid.NewString()
	file, err := p.files.Metadata(ctx, fileID)
	if err != nil {
		return nil, &FileError{FileID: fileID, Stage: StageMetadata, Cause: err}
	}
	p.logger.Info("processing single file", "run_id", runID, "file", file.Name, "file_id", file.ID)

	return p.processFile(ctx, runID, file)
}

// processFile runs download, extract, parse, build and append for one file.
func (p *Pipeline) processFile(ctx context.Context, runID string, file types.SourceFile) (types.OutputRow, error) {
	fail := func(stage Stage, err error) (types.OutputRow, error) {
		p.emit(ProgressEvent{RunID: runID, FileID: file.ID, FileName: file.Name, Stage: stage, Message: "failed", Content: err.Error()})
		return nil, &FileError{FileID: file.ID, FileName: file.Name, Stage: stage, Cause: err}
	}

	p.logger.Debug("processing file", "run_id", runID, "file", file.Name, "file_id", file.ID)
	p.emit(ProgressEvent{RunID: runID, FileID: file.ID, FileName: file.Name, Message: "started"})

	data, err := p.files.Download(ctx, file.ID)
	if err != nil {
		return fail(StageDownload, err)
	}

	text, err := p.opts.Extract(ctx, data)
	if err != nil {
		return fail(StageExtract, err)
	}
	if text == "" {
		p.logger.Warn("no text layer found", "run_id", runID, "file", file.Name)
	}

	parsed, err := p.parser.Parse(ctx, text, file.Name)
	if err != nil {
		return fail(StageParse, err)
	}
	p.emit(ProgressEvent{RunID: runID, FileID: file.ID, FileName: file.Name, Stage: StageParse, Message: "parsed", Content: parsed})

	row := rows.BuildRow(file.ID, file.Name, parsed)
	if err := p.out.AppendRow(ctx, row); err != nil {
		return fail(StageAppend, err)
	}
	p.emit(ProgressEvent{RunID: runID, FileID: file.ID, FileName: file.Name, Stage: StageAppend, Message: "appended", Content: row})

	p.logger.Info("file processed", "run_id", runID, "file", file.Name)
	return row, nil
}

func (p *Pipeline) emit(event ProgressEvent) {
	if p.opts.OnProgress != nil {
		p.opts.OnProgress(event)
	}
}

// StreamBatch runs a batch and additionally reports progress to onProgress.
// The configured OnProgress callback, if any, still receives every event.
func (p *Pipeline) StreamBatch(ctx context.Context, onProgress ProgressCallback) (*BatchResult, error) {
	streamed := *p
	configured := p.opts.OnProgress
	streamed.opts.OnProgress = func(event ProgressEvent) {
		if configured != nil {
			configured(event)
		}
		if onProgress != nil {
			onProgress(event)
		}
	}
	return streamed.RunBatch(ctx)
}
