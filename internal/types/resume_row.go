// Package types defines the data model shared by the resume tabulation pipeline.
package types

import (
	"bytes"
	"encoding/json"
)

// SchemaFields lists the keys the model is asked to extract, in the order
// they appear in the output row.
var SchemaFields = []string{
	"industry",
	"experience",
	"current_location",
	"email",
	"phone",
	"linkedin",
	"current_job_title",
	"current_company",
	"education",
	"major",
	"university",
	"location_preference",
}

// Derived columns that precede the schema fields in every row.
const (
	ColumnIndex      = "index"
	ColumnName       = "name"
	ColumnResumeLink = "resume_link"
)

// RowWidth is the number of cells in an OutputRow.
var RowWidth = 3 + len(SchemaFields)

// HeaderRow returns the column names written at the top of the output sheet.
func HeaderRow() []string {
	header := make([]string, 0, RowWidth)
	header = append(header, ColumnIndex, ColumnName, ColumnResumeLink)
	return append(header, SchemaFields...)
}

// SourceFile is a resume as reported by the file store.
type SourceFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OutputRow is one spreadsheet row: index, name, resume link, then the
// schema fields in declared order.
type OutputRow []string

// FieldKind tags the variant held by a FieldValue.
type FieldKind int

const (
	// KindText is a scalar value rendered as text.
	KindText FieldKind = iota
	// KindStructured is an array or object the model returned where a
	// flat value was expected.
	KindStructured
)

// FieldValue is a single extracted value. Scalars are kept as text;
// arrays and objects keep their compact JSON encoding.
type FieldValue struct {
	Kind FieldKind
	Text string
	Raw  json.RawMessage
}

// TextValue builds a scalar FieldValue.
func TextValue(s string) FieldValue {
	return FieldValue{Kind: KindText, Text: s}
}

// StructuredValue builds a FieldValue from an array or object encoding.
// The encoding is compacted so it fits in a single cell.
func StructuredValue(raw json.RawMessage) FieldValue {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return FieldValue{Kind: KindStructured, Raw: append(json.RawMessage(nil), raw...)}
	}
	return FieldValue{Kind: KindStructured, Raw: json.RawMessage(buf.Bytes())}
}

// Flatten returns the string form written to the output row.
func (v FieldValue) Flatten() string {
	if v.Kind == KindStructured {
		return string(v.Raw)
	}
	return v.Text
}

// ParsedFields maps schema keys to the values the model extracted. It may
// lack keys or carry extra ones; consumers read through Get.
type ParsedFields map[string]FieldValue

// Get returns the flattened value for key, or "" if the key is absent.
func (p ParsedFields) Get(key string) string {
	v, ok := p[key]
	if !ok {
		return ""
	}
	return v.Flatten()
}

// Missing returns the schema keys absent from p, in declared order.
func (p ParsedFields) Missing() []string {
	var missing []string
	for _, key := range SchemaFields {
		if _, ok := p[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// UnmarshalJSON decodes a JSON object into ParsedFields, classifying each
// value. Strings are unquoted, numbers and booleans keep their literal
// spelling, null becomes "", arrays and objects stay structured.
func (p *ParsedFields) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ParsedFields, len(raw))
	for key, value := range raw {
		fv, err := classify(value)
		if err != nil {
			return err
		}
		out[key] = fv
	}
	*p = out
	return nil
}

func classify(value json.RawMessage) (FieldValue, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return TextValue(""), nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return FieldValue{}, err
		}
		return TextValue(s), nil
	case '{', '[':
		return StructuredValue(trimmed), nil
	case 'n':
		return TextValue(""), nil
	default:
		return TextValue(string(trimmed)), nil
	}
}
