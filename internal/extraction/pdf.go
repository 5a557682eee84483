// Package extraction pulls the embedded text layer out of PDF resumes.
package extraction

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the text of every page concatenated in page order.
// Pages without a text layer contribute nothing, so an image-only PDF yields
// an empty string rather than an error.
func ExtractText(ctx context.Context, data []byte) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", &ExtractionError{Message: "empty document"}
	}

	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Message: "malformed document", Cause: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Message: "failed to open document", Cause: err}
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Message: "failed to read page text", Page: i, Cause: err}
		}
		sb.WriteString(pageText)
	}

	return sb.String(), nil
}
