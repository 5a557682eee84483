// Package sheets writes resume rows to a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/resume-tabulator/internal/types"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultSheetName is the tab that receives extracted rows.
const DefaultSheetName = "raw_output"

const valueInputRaw = "RAW"

// Writer appends rows to one tab of a spreadsheet.
type Writer struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewWriter creates a Writer for sheetName in spreadsheetID.
func NewWriter(ctx context.Context, spreadsheetID, sheetName string, opts ...option.ClientOption) (*Writer, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &Writer{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// ForSheet returns a Writer for another tab of the same spreadsheet that
// shares this Writer's service.
func (w *Writer) ForSheet(sheetName string) *Writer {
	return &Writer{svc: w.svc, spreadsheetID: w.spreadsheetID, sheetName: sheetName}
}

// SheetName returns the tab this Writer targets.
func (w *Writer) SheetName() string {
	return w.sheetName
}

// A1 builds an A1-notation range on sheet, quoting the sheet name.
func A1(sheet, ref string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), ref)
}

// WriteHeader overwrites the first row of the tab with header.
func (w *Writer) WriteHeader(ctx context.Context, header []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(header)}}
	_, err := w.svc.Spreadsheets.Values.Update(w.spreadsheetID, A1(w.sheetName, "A1"), vr).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write header to %s: %w", w.sheetName, err)
	}
	return nil
}

// AppendRow adds row after the existing content of the tab.
func (w *Writer) AppendRow(ctx context.Context, row types.OutputRow) error {
	return w.Append(ctx, []string(row))
}

// Append adds one row of cells after the existing content of the tab.
func (w *Writer) Append(ctx context.Context, cells []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(cells)}}
	_, err := w.svc.Spreadsheets.Values.Append(w.spreadsheetID, A1(w.sheetName, "A2"), vr).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", w.sheetName, err)
	}
	return nil
}

// ColumnValues returns every non-empty cell in a column, e.g. "B".
func (w *Writer) ColumnValues(ctx context.Context, column string) ([]string, error) {
	resp, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, A1(w.sheetName, column+":"+column)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read column %s of %s: %w", column, w.sheetName, err)
	}

	var values []string
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if s := fmt.Sprint(row[0]); s != "" {
			values = append(values, s)
		}
	}
	return values, nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
