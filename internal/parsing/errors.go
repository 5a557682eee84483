package parsing

import "fmt"

// APICallError represents a failed request to the language model
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents model output that is not a JSON object
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// UnparsableOutputError is returned when both the first attempt and the
// retry produced output that could not be parsed. RawOutput holds the
// retry's response for diagnosis.
type UnparsableOutputError struct {
	FileName  string
	RawOutput string
	Cause     error
}

func (e *UnparsableOutputError) Error() string {
	return fmt.Sprintf("unparsable model output for %q after retry: %v", e.FileName, e.Cause)
}

func (e *UnparsableOutputError) Unwrap() error {
	return e.Cause
}
