// Package schemas checks model output against the JSON Schema of a resume
// extraction result.
package schemas

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// resumeFieldsSchema accepts any JSON object. Missing keys and nested
// values are handled when rows are built.
const resumeFieldsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "ResumeFields",
  "type": "object"
}`

var (
	compileOnce    sync.Once
	compiledSchema *gojsonschema.Schema
	compileErr     error
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// DocumentError means the input was not JSON at all.
type DocumentError struct {
	Cause error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document is not valid JSON: %v", e.Cause)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

func resumeSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(resumeFieldsSchema))
	})
	return compiledSchema, compileErr
}

// ValidateObject reports whether jsonText is a single JSON object. It
// returns a *DocumentError for text that is not JSON and a *ValidationError
// for JSON of the wrong shape.
func ValidateObject(jsonText string) error {
	schema, err := resumeSchema()
	if err != nil {
		return fmt.Errorf("failed to compile resume schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonText))
	if err != nil {
		return &DocumentError{Cause: err}
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
