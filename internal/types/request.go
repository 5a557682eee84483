package types

import "github.com/go-playground/validator/v10"

// ProcessRequest is the body of a single-file processing request.
type ProcessRequest struct {
	FileID string `json:"file_id" validate:"required"`
}

// Validate validates the ProcessRequest using the validator.
func (r *ProcessRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ProcessResponse is returned when a file was processed.
type ProcessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
