// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultSheetName     = "raw_output"
	DefaultLogSheetName  = "Log"
	DefaultProvider      = "gemini"
	DefaultOutput        = OutputSheets
	DefaultXLSXPath      = "resumes.xlsx"
	DefaultFailurePolicy = "abort"
	DefaultWatchInterval = "1m"
	DefaultPort          = "8080"
)

// Output store kinds.
const (
	OutputSheets = "sheets"
	OutputXLSX   = "xlsx"
)

// Config is the runtime configuration. Values come from a JSON file, the
// environment and .env, in that order of precedence.
type Config struct {
	// Source and destination
	FolderID      string `json:"folder_id,omitempty"`
	SpreadsheetID string `json:"spreadsheet_id,omitempty" validate:"required_if=Output sheets"`
	SheetName     string `json:"sheet_name,omitempty" validate:"required"`
	LogSheetName  string `json:"log_sheet_name,omitempty"`
	Output        string `json:"output,omitempty" validate:"oneof=sheets xlsx"`
	XLSXPath      string `json:"xlsx_path,omitempty" validate:"required_if=Output xlsx"`

	// Credentials
	CredentialsFile string `json:"credentials_file,omitempty"` // Service account JSON; ADC when empty
	GeminiAPIKey    string `json:"gemini_api_key,omitempty" validate:"required_if=LLMProvider gemini"`
	OpenAIAPIKey    string `json:"openai_api_key,omitempty" validate:"required_if=LLMProvider openai"`

	// Model
	LLMProvider string `json:"llm_provider,omitempty" validate:"oneof=gemini openai"`
	LLMModel    string `json:"llm_model,omitempty"` // Overrides the provider's default model

	// Behavior
	FailurePolicy string `json:"failure_policy,omitempty" validate:"oneof=abort continue"`
	WatchInterval string `json:"watch_interval,omitempty" validate:"duration"`
	Port          string `json:"port,omitempty" validate:"numeric"`
	Verbose       bool   `json:"verbose,omitempty"`
}

// ValidationError reports the first configuration field that failed validation.
type ValidationError struct {
	Field string
	Rule  string
	Cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config error: '%s' failed '%s' check", e.Field, e.Rule)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads the configuration from environment variables through getenv
// (os.Getenv in production).
func FromEnv(getenv func(string) string) Config {
	credentials := getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if credentials == "" {
		credentials = getenv("SERVICE_ACCOUNT_FILE")
	}
	return Config{
		FolderID:        getenv("FOLDER_ID"),
		SpreadsheetID:   getenv("SPREADSHEET_ID"),
		SheetName:       getenv("SHEET_NAME"),
		LogSheetName:    getenv("LOG_SHEET_NAME"),
		Output:          strings.ToLower(getenv("OUTPUT")),
		XLSXPath:        getenv("XLSX_PATH"),
		CredentialsFile: credentials,
		GeminiAPIKey:    getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:    getenv("OPENAI_API_KEY"),
		LLMProvider:     strings.ToLower(getenv("LLM_PROVIDER")),
		LLMModel:        getenv("LLM_MODEL"),
		FailurePolicy:   strings.ToLower(getenv("FAILURE_POLICY")),
		WatchInterval:   getenv("WATCH_INTERVAL"),
		Port:            getenv("PORT"),
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Used to layer the config file over the environment.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.FolderID, defaults.FolderID)
	fill(&result.SpreadsheetID, defaults.SpreadsheetID)
	fill(&result.SheetName, defaults.SheetName)
	fill(&result.LogSheetName, defaults.LogSheetName)
	fill(&result.Output, defaults.Output)
	fill(&result.XLSXPath, defaults.XLSXPath)
	fill(&result.CredentialsFile, defaults.CredentialsFile)
	fill(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	fill(&result.OpenAIAPIKey, defaults.OpenAIAPIKey)
	fill(&result.LLMProvider, defaults.LLMProvider)
	fill(&result.LLMModel, defaults.LLMModel)
	fill(&result.FailurePolicy, defaults.FailurePolicy)
	fill(&result.WatchInterval, defaults.WatchInterval)
	fill(&result.Port, defaults.Port)

	// Bools cannot distinguish unset from false; either source may enable.
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// ApplyDefaults fills every unset optional field with its built-in default.
func (c *Config) ApplyDefaults() {
	*c = c.MergeWithDefaults(Config{
		SheetName:     DefaultSheetName,
		LogSheetName:  DefaultLogSheetName,
		Output:        DefaultOutput,
		XLSXPath:      DefaultXLSXPath,
		LLMProvider:   DefaultProvider,
		FailurePolicy: DefaultFailurePolicy,
		WatchInterval: DefaultWatchInterval,
		Port:          DefaultPort,
	})
}

// Validate checks field values. Call after ApplyDefaults. FolderID is not
// checked here because single-file runs do not need it; see RequireFolder.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ValidationError{Field: fe.Field(), Rule: fe.Tag(), Cause: err}
		}
		return &ValidationError{Field: "(config)", Rule: "struct", Cause: err}
	}
	return nil
}

// RequireFolder reports an error when no source folder is configured.
func (c *Config) RequireFolder() error {
	if strings.TrimSpace(c.FolderID) == "" {
		return &ValidationError{Field: "folder_id", Rule: "required"}
	}
	return nil
}

// Interval parses WatchInterval.
func (c *Config) Interval() (time.Duration, error) {
	d, err := time.ParseDuration(c.WatchInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid watch interval %q: %w", c.WatchInterval, err)
	}
	return d, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names so errors match the config file.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d > 0
	})
	return v
}
