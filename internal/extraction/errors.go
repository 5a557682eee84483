package extraction

import "fmt"

// ExtractionError reports a PDF that could not be read.
type ExtractionError struct {
	Message string
	Page    int // 1-based; 0 when the failure is not tied to a page
	Cause   error
}

func (e *ExtractionError) Error() string {
	msg := e.Message
	if e.Page > 0 {
		msg = fmt.Sprintf("%s (page %d)", e.Message, e.Page)
	}
	if e.Cause != nil {
		return fmt.Sprintf("pdf extraction failed: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("pdf extraction failed: %s", msg)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
