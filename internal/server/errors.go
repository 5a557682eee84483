package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-tabulator/internal/pipeline"
)

var (
	// ErrBatchInProgress is returned for a single-file run while a batch is
	// writing to the output sheet.
	ErrBatchInProgress = errors.New("a batch run is already in progress")
	// ErrOutputBusy is returned for a batch while another batch or a
	// single-file run holds the output sheet.
	ErrOutputBusy = errors.New("another run is writing to the output sheet")
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	switch {
	case errors.Is(err, pipeline.ErrMissingFileID), errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrBatchInProgress), errors.Is(err, ErrOutputBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
