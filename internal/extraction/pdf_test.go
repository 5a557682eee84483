package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF renders one page per entry with a single line of Helvetica text
// and a byte-exact xref table.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	fontObj := 3 + 2*len(pages)
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 3+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)))

	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractText_PagesInOrder(t *testing.T) {
	data := buildPDF(t, "PageOne", "PageTwo", "PageThree")

	text, err := ExtractText(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, "\nPageOne\nPageTwo\nPageThree", text)
}

func TestExtractText_Empty(t *testing.T) {
	_, err := ExtractText(context.Background(), nil)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Contains(t, err.Error(), "empty document")
}

func TestExtractText_NotAPDF(t *testing.T) {
	_, err := ExtractText(context.Background(), []byte("this is plain text, not a pdf"))

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Contains(t, err.Error(), "pdf extraction failed")
}

func TestExtractText_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExtractText(ctx, []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractionError_Message(t *testing.T) {
	cause := errors.New("bad xref")
	err := &ExtractionError{Message: "failed to read page text", Page: 3, Cause: cause}

	assert.Equal(t, "pdf extraction failed: failed to read page text (page 3): bad xref", err.Error())
	assert.ErrorIs(t, err, cause)
}
