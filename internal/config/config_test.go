package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func validConfig() Config {
	cfg := Config{
		FolderID:      "folder-1",
		SpreadsheetID: "sheet-1",
		GeminiAPIKey:  "key",
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"folder_id": "F1",
		"spreadsheet_id": "S1",
		"llm_provider": "openai",
		"failure_policy": "continue",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "F1", cfg.FolderID)
	assert.Equal(t, "S1", cfg.SpreadsheetID)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "continue", cfg.FailurePolicy)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestFromEnv(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{
		"FOLDER_ID":            "F1",
		"SPREADSHEET_ID":       "S1",
		"SERVICE_ACCOUNT_FILE": "sa.json",
		"LLM_PROVIDER":         "OpenAI",
		"OUTPUT":               "XLSX",
		"WATCH_INTERVAL":       "30s",
	}))

	assert.Equal(t, "F1", cfg.FolderID)
	assert.Equal(t, "S1", cfg.SpreadsheetID)
	assert.Equal(t, "sa.json", cfg.CredentialsFile)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, OutputXLSX, cfg.Output)
	assert.Equal(t, "30s", cfg.WatchInterval)
}

func TestFromEnv_ApplicationCredentialsWin(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{
		"GOOGLE_APPLICATION_CREDENTIALS": "adc.json",
		"SERVICE_ACCOUNT_FILE":           "sa.json",
	}))
	assert.Equal(t, "adc.json", cfg.CredentialsFile)
}

func TestMergeWithDefaults(t *testing.T) {
	file := Config{FolderID: "from-file", LLMModel: "gemini-2.5-pro"}
	env := Config{FolderID: "from-env", SpreadsheetID: "S-env", Verbose: true}

	merged := file.MergeWithDefaults(env)

	assert.Equal(t, "from-file", merged.FolderID)
	assert.Equal(t, "S-env", merged.SpreadsheetID)
	assert.Equal(t, "gemini-2.5-pro", merged.LLMModel)
	assert.True(t, merged.Verbose)
	assert.Equal(t, "from-file", file.FolderID, "receiver is not modified")
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{SheetName: "custom"}
	cfg.ApplyDefaults()

	assert.Equal(t, "custom", cfg.SheetName)
	assert.Equal(t, DefaultLogSheetName, cfg.LogSheetName)
	assert.Equal(t, OutputSheets, cfg.Output)
	assert.Equal(t, DefaultProvider, cfg.LLMProvider)
	assert.Equal(t, DefaultFailurePolicy, cfg.FailurePolicy)
	assert.Equal(t, DefaultWatchInterval, cfg.WatchInterval)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "sheets output needs spreadsheet", mutate: func(c *Config) { c.SpreadsheetID = "" }, wantField: "spreadsheet_id"},
		{name: "xlsx output needs no spreadsheet", mutate: func(c *Config) { c.SpreadsheetID = ""; c.Output = OutputXLSX }},
		{name: "xlsx output needs path", mutate: func(c *Config) { c.Output = OutputXLSX; c.XLSXPath = "" }, wantField: "xlsx_path"},
		{name: "unknown output", mutate: func(c *Config) { c.Output = "csv" }, wantField: "output"},
		{name: "unknown provider", mutate: func(c *Config) { c.LLMProvider = "claude" }, wantField: "llm_provider"},
		{name: "gemini needs key", mutate: func(c *Config) { c.GeminiAPIKey = "" }, wantField: "gemini_api_key"},
		{name: "openai needs key", mutate: func(c *Config) { c.LLMProvider = "openai" }, wantField: "openai_api_key"},
		{name: "unknown policy", mutate: func(c *Config) { c.FailurePolicy = "retry" }, wantField: "failure_policy"},
		{name: "bad interval", mutate: func(c *Config) { c.WatchInterval = "soon" }, wantField: "watch_interval"},
		{name: "non-positive interval", mutate: func(c *Config) { c.WatchInterval = "0s" }, wantField: "watch_interval"},
		{name: "bad port", mutate: func(c *Config) { c.Port = "http" }, wantField: "port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestRequireFolder(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.RequireFolder())

	cfg.FolderID = "  "
	err := cfg.RequireFolder()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "folder_id")
}

func TestInterval(t *testing.T) {
	cfg := validConfig()
	d, err := cfg.Interval()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	cfg.WatchInterval = "nope"
	_, err = cfg.Interval()
	assert.Error(t, err)
}
