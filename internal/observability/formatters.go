// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-tabulator/internal/pipeline"
	"github.com/jonathan/resume-tabulator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxFailuresToShow is the number of failed files listed in a summary
	maxFailuresToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens a line to the box interior, counting runes.
func clip(line string) string {
	r := []rune(line)
	if len(r) > boxWidth-4 {
		return string(r[:boxWidth-7]) + "..."
	}
	return line
}

// PrintParsedFields outputs the extracted schema for one resume, in column order.
func (p *Printer) PrintParsedFields(fileName string, fields types.ParsedFields) {
	if fields == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File: %s\n\n", fileName))
	for _, key := range types.SchemaFields {
		value := fields.Get(key)
		if value == "" {
			value = "-"
		}
		sb.WriteString(fmt.Sprintf("%-20s %s\n", key+":", value))
	}
	if missing := fields.Missing(); len(missing) > 0 {
		sb.WriteString(fmt.Sprintf("\nMissing: %s\n", strings.Join(missing, ", ")))
	}

	p.printBox("PARSED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRow outputs the row appended for one file.
func (p *Printer) PrintRow(row types.OutputRow) {
	if len(row) < 3 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Index: %s\n", row[0]))
	sb.WriteString(fmt.Sprintf("Name:  %s\n", row[1]))
	sb.WriteString(fmt.Sprintf("Link:  %s", row[2]))

	p.printBox("ROW APPENDED", sb.String())
}

// PrintFailure outputs a failed file and the stage it failed in.
func (p *Printer) PrintFailure(fileName string, stage pipeline.Stage, reason string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:  %s\n", fileName))
	sb.WriteString(fmt.Sprintf("Stage: %s\n", stage))
	sb.WriteString(fmt.Sprintf("Error: %s", reason))

	p.printBox("FILE FAILED", sb.String())
}

// PrintBatchSummary outputs totals and the first failed files of a batch.
func (p *Printer) PrintBatchSummary(result *pipeline.BatchResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:       %s\n", result.RunID))
	sb.WriteString(fmt.Sprintf("Files:     %d\n", result.Total))
	sb.WriteString(fmt.Sprintf("Processed: %d\n", result.Processed))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", len(result.Failed)))

	if len(result.Failed) > 0 {
		sb.WriteString("\n")
		count := min(len(result.Failed), maxFailuresToShow)
		for i := 0; i < count; i++ {
			f := result.Failed[i]
			sb.WriteString(fmt.Sprintf("  • %s (%s)\n", f.File.Name, f.Stage))
		}
		if len(result.Failed) > maxFailuresToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Failed)-maxFailuresToShow))
		}
	}

	p.printBox("BATCH SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// Progress renders pipeline progress events. Pass it as
// pipeline.Options.OnProgress when verbose output is on.
func (p *Printer) Progress(event pipeline.ProgressEvent) {
	switch event.Message {
	case "parsed":
		if fields, ok := event.Content.(types.ParsedFields); ok {
			p.PrintParsedFields(event.FileName, fields)
		}
	case "appended":
		if row, ok := event.Content.(types.OutputRow); ok {
			p.PrintRow(row)
		}
	case "failed":
		reason, _ := event.Content.(string)
		p.PrintFailure(event.FileName, event.Stage, reason)
	}
}
