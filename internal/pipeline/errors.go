package pipeline

import (
	"errors"
	"fmt"
)

// ErrMissingFileID is returned when a single-file run has no file id.
var ErrMissingFileID = errors.New("missing file_id")

// Stage names the step of the per-file pipeline that failed.
type Stage string

// Per-file stages, in execution order.
const (
	StageMetadata Stage = "metadata"
	StageDownload Stage = "download"
	StageExtract  Stage = "extract"
	StageParse    Stage = "parse"
	StageAppend   Stage = "append"
)

// FileError wraps a failure while processing one file.
type FileError struct {
	FileID   string
	FileName string
	Stage    Stage
	Cause    error
}

func (e *FileError) Error() string {
	name := e.FileName
	if name == "" {
		name = e.FileID
	}
	return fmt.Sprintf("%s failed for %q: %v", e.Stage, name, e.Cause)
}

func (e *FileError) Unwrap() error {
	return e.Cause
}
