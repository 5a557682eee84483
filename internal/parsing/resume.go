// Package parsing extracts the fixed resume field schema from plain resume
// text using a language model.
package parsing

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jonathan/resume-tabulator/internal/llm"
	"github.com/jonathan/resume-tabulator/internal/prompts"
	"github.com/jonathan/resume-tabulator/internal/schemas"
	"github.com/jonathan/resume-tabulator/internal/types"
)

// MaxInputChars is how much resume text is sent to the model. Anything past
// it is dropped.
const MaxInputChars = 10000

const promptFile = "resume.json"

// attempt names a state of the two-attempt extraction.
type attempt int

const (
	attemptFirst attempt = iota
	attemptRetry
)

func (a attempt) String() string {
	if a == attemptRetry {
		return "retry"
	}
	return "first"
}

// Parser turns resume text into ParsedFields. A Parser holds one model
// client and is reused for every file.
type Parser struct {
	client llm.Client
	tier   llm.ModelTier
	logger *slog.Logger
}

// NewParser creates a Parser that submits prompts through client.
func NewParser(client llm.Client, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{client: client, tier: llm.TierStandard, logger: logger}
}

// WithTier selects the model tier used for extraction.
func (p *Parser) WithTier(tier llm.ModelTier) *Parser {
	p.tier = tier
	return p
}

// Parse submits the extraction prompt and decodes the response. If the
// first response cannot be parsed the prompt is sent once more with a
// corrective suffix; if that also fails Parse returns an
// *UnparsableOutputError and no fields. Model call failures are returned as
// *APICallError without retrying.
func (p *Parser) Parse(ctx context.Context, text, fileName string) (types.ParsedFields, error) {
	prompt := BuildPrompt(text, fileName)

	state := attemptFirst
	for {
		raw, err := p.client.GenerateContent(ctx, prompt, p.tier)
		if err != nil {
			return nil, &APICallError{Message: "failed to generate content from LLM", Cause: err}
		}

		fields, parseErr := DecodeFields(raw)
		if parseErr == nil {
			if missing := fields.Missing(); len(missing) > 0 {
				p.logger.Debug("model output missing fields", "file", fileName, "missing", missing)
			}
			return fields, nil
		}

		switch state {
		case attemptFirst:
			p.logger.Warn("first attempt failed to parse model output, retrying",
				"file", fileName, "error", parseErr)
			prompt += prompts.MustGet(promptFile, "retry-suffix")
			state = attemptRetry
		default:
			p.logger.Error("retry also failed to parse model output",
				"file", fileName, "attempt", state.String(), "output", raw)
			return nil, &UnparsableOutputError{FileName: fileName, RawOutput: raw, Cause: parseErr}
		}
	}
}

// BuildPrompt fills the extraction template with the file name and the
// first MaxInputChars characters of text.
func BuildPrompt(text, fileName string) string {
	template := prompts.MustGet(promptFile, "extract-resume-fields")
	return prompts.Format(template, map[string]string{
		"FileName":   fileName,
		"ResumeText": Truncate(text, MaxInputChars),
	})
}

// Truncate returns the first n characters of s, never splitting a UTF-8
// sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// DecodeFields parses a model response into ParsedFields. Markdown fences
// are stripped; anything other than a single JSON object is a *ParseError.
func DecodeFields(raw string) (types.ParsedFields, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.ValidateObject(cleaned); err != nil {
		return nil, &ParseError{Message: "model output is not a JSON object", Cause: err}
	}

	var fields types.ParsedFields
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, &ParseError{Message: "failed to decode model output", Cause: err}
	}
	return fields, nil
}
