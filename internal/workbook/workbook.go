// Package workbook writes resume rows to a local XLSX file, for runs that
// have no access to Google Sheets.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/jonathan/resume-tabulator/internal/types"
	"github.com/xuri/excelize/v2"
)

// DefaultSheetName matches the Sheets tab name so both outputs look alike.
const DefaultSheetName = "raw_output"

// Writer keeps an XLSX workbook open and saves it after every write, so a
// crash mid-batch leaves every appended row on disk.
type Writer struct {
	mu      sync.Mutex
	path    string
	sheet   string
	file    *excelize.File
	nextRow int
}

// Open loads the workbook at path, or starts a new one if it does not exist.
func Open(path, sheet string) (*Writer, error) {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	var f *excelize.File
	if _, err := os.Stat(path); err == nil {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		f = excelize.NewFile()
	} else {
		return nil, fmt.Errorf("failed to stat workbook %s: %w", path, err)
	}

	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	rows, err := f.GetRows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	next := len(rows) + 1
	if next < 2 {
		next = 2 // row 1 is reserved for the header
	}

	return &Writer{path: path, sheet: sheet, file: f, nextRow: next}, nil
}

// WriteHeader overwrites row 1 with header.
func (w *Writer) WriteHeader(_ context.Context, header []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.setRow(1, header); err != nil {
		return err
	}
	return w.save()
}

// AppendRow writes row below the last used row.
func (w *Writer) AppendRow(_ context.Context, row types.OutputRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.setRow(w.nextRow, row); err != nil {
		return err
	}
	w.nextRow++
	return w.save()
}

// Close releases the workbook.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *Writer) setRow(row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := w.file.SetSheetRow(w.sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, w.sheet, err)
	}
	return nil
}

func (w *Writer) save() error {
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.path, err)
	}
	return nil
}
