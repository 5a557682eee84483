package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"google.golang.org/api/option"

	"github.com/jonathan/resume-tabulator/internal/config"
	"github.com/jonathan/resume-tabulator/internal/drive"
	"github.com/jonathan/resume-tabulator/internal/gcp"
	"github.com/jonathan/resume-tabulator/internal/llm"
	"github.com/jonathan/resume-tabulator/internal/observability"
	"github.com/jonathan/resume-tabulator/internal/parsing"
	"github.com/jonathan/resume-tabulator/internal/pipeline"
	"github.com/jonathan/resume-tabulator/internal/sheets"
	"github.com/jonathan/resume-tabulator/internal/workbook"
)

// loadConfig layers the --config file over the environment, applies
// defaults and validates the result.
func loadConfig() (*config.Config, error) {
	cfg := config.FromEnv(os.Getenv)
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}
	if verbose {
		cfg.Verbose = true
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// app holds the collaborators built once per process.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	clientOpts []option.ClientOption
	files      *drive.Store
	sheet      *sheets.Writer // nil unless output is sheets
	pipeline   *pipeline.Pipeline
	closers    []func() error
}

// newAppFromConfig resolves Google credentials and builds the app.
func newAppFromConfig(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	opts, err := gcp.ClientOptions(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, logger, out, opts)
}

// newApp builds the file store, output store, model client, parser and
// pipeline. Verbose output goes to out.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, opts []option.ClientOption) (*app, error) {
	a := &app{cfg: cfg, logger: logger, clientOpts: opts}

	files, err := drive.NewStore(ctx, opts...)
	if err != nil {
		return nil, err
	}
	a.files = files

	output, err := a.newOutputStore(ctx)
	if err != nil {
		return nil, err
	}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	a.closers = append(a.closers, client.Close)

	policy, err := pipeline.ParseFailurePolicy(cfg.FailurePolicy)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	popts := pipeline.Options{
		FolderID:      cfg.FolderID,
		FailurePolicy: policy,
		Logger:        logger,
	}
	if cfg.Verbose {
		popts.OnProgress = observability.NewPrinter(out).Progress
	}

	parser := parsing.NewParser(client, logger)
	a.pipeline = pipeline.New(files, parser, output, popts)

	logger.Debug("app ready",
		"provider", cfg.LLMProvider,
		"model", client.GetModel(llm.TierStandard),
		"output", cfg.Output,
		"policy", policy,
	)
	return a, nil
}

func (a *app) newOutputStore(ctx context.Context) (pipeline.OutputStore, error) {
	switch a.cfg.Output {
	case config.OutputXLSX:
		wb, err := workbook.Open(a.cfg.XLSXPath, a.cfg.SheetName)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, wb.Close)
		return wb, nil
	default:
		w, err := sheets.NewWriter(ctx, a.cfg.SpreadsheetID, a.cfg.SheetName, a.clientOpts...)
		if err != nil {
			return nil, err
		}
		a.sheet = w
		return w, nil
	}
}

// logSheet returns the watcher's log tab. It lives in the configured
// spreadsheet even when rows go to a local workbook.
func (a *app) logSheet(ctx context.Context) (*sheets.Writer, error) {
	if a.sheet != nil {
		return a.sheet.ForSheet(a.cfg.LogSheetName), nil
	}
	if a.cfg.SpreadsheetID == "" {
		return nil, &config.ValidationError{Field: "spreadsheet_id", Rule: "required"}
	}
	return sheets.NewWriter(ctx, a.cfg.SpreadsheetID, a.cfg.LogSheetName, a.clientOpts...)
}

// Close releases the model client and any open workbook.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	llmCfg := llm.ConfigFor(cfg.LLMProvider)
	if cfg.LLMModel != "" {
		llmCfg = llmCfg.WithModel(llm.TierStandard, cfg.LLMModel)
	}
	apiKey := cfg.GeminiAPIKey
	if llmCfg.Provider == llm.ProviderOpenAI {
		apiKey = cfg.OpenAIAPIKey
	}
	return llm.NewClient(ctx, llmCfg, apiKey)
}
