// Package rows turns parsed resume fields into spreadsheet rows and orders
// source files by the ordinal prefix in their names.
package rows

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/resume-tabulator/internal/types"
)

const shareLinkTemplate = "https://drive.google.com/file/d/%s/view?usp=sharing"

var (
	// "<digits>. <name>", anchored at the start of the extension-less name.
	fileNamePattern = regexp.MustCompile(`^(\d+)\.\s*(.+)`)
	leadingDigits   = regexp.MustCompile(`^\d+`)
	logIndexPattern = regexp.MustCompile(`^(\d+)\.`)
	pdfSuffix       = regexp.MustCompile(`(?i)\.pdf$`)
)

// ParseFileName derives the ordinal index and the candidate name from a
// display name such as "167. David Kim.pdf". Both are empty when the name
// does not follow the "<digits>. <name>" convention.
func ParseFileName(fileName string) (index string, name string) {
	base := strings.TrimSpace(fileName)
	if ext := filepath.Ext(base); isExtension(ext, base) {
		base = strings.TrimSuffix(base, ext)
	}

	m := fileNamePattern.FindStringSubmatch(base)
	if m == nil {
		return "", ""
	}
	return m[1], strings.TrimSpace(m[2])
}

// isExtension rejects dotted tails that are really part of a name, such as
// the ". Sam Hill" in "4. Sam Hill".
func isExtension(ext, base string) bool {
	return ext != "" && ext != base && !strings.ContainsAny(ext, " \t")
}

// CleanName strips a trailing ".pdf" (any case) from a display name.
func CleanName(fileName string) string {
	return pdfSuffix.ReplaceAllString(fileName, "")
}

// ResumeLink returns the shareable Drive URL for a file.
func ResumeLink(fileID string) string {
	return fmt.Sprintf(shareLinkTemplate, fileID)
}

// BuildRow assembles the output row for one resume. Absent fields become
// empty cells and structured values are written as compact JSON.
func BuildRow(fileID, fileName string, parsed types.ParsedFields) types.OutputRow {
	index, name := ParseFileName(fileName)

	row := make(types.OutputRow, 0, types.RowWidth)
	row = append(row, index, name, ResumeLink(fileID))
	for _, key := range types.SchemaFields {
		row = append(row, parsed.Get(key))
	}
	return row
}

// LogIndex returns the digits before the first dot of the raw display name,
// extension included, so "12.pdf" yields "12". It is empty when the name
// does not start with "<digits>.".
func LogIndex(fileName string) string {
	m := logIndexPattern.FindStringSubmatch(fileName)
	if m == nil {
		return ""
	}
	return m[1]
}

// Ordinal returns the leading digits of a trimmed display name with leading
// zeros removed. ok is false when the name has no leading digits.
func Ordinal(fileName string) (digits string, ok bool) {
	d := leadingDigits.FindString(strings.TrimSpace(fileName))
	if d == "" {
		return "", false
	}
	d = strings.TrimLeft(d, "0")
	if d == "" {
		d = "0"
	}
	return d, true
}

// lessOrdinal compares two names by ordinal. Names without an ordinal sort
// after every name that has one.
func lessOrdinal(a, b string) bool {
	da, okA := Ordinal(a)
	db, okB := Ordinal(b)
	switch {
	case !okA:
		return false
	case !okB:
		return true
	case len(da) != len(db):
		return len(da) < len(db)
	default:
		return da < db
	}
}

// SortFiles orders files ascending by ordinal in place. The sort is stable,
// so files with equal ordinals keep their listing order.
func SortFiles(files []types.SourceFile) {
	sort.SliceStable(files, func(i, j int) bool {
		return lessOrdinal(files[i].Name, files[j].Name)
	})
}
