// Package main provides the entry point for the resume tabulator CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tabulator/internal/logging"
)

var (
	configPath string
	verbose    bool
	logLevel   string
	logFormat  string

	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "resume_tabulator",
	Short: "Turn a Drive folder of PDF resumes into spreadsheet rows",
	Long: `Resume Tabulator downloads PDF resumes from a Google Drive folder, extracts
their text, asks a language model for a fixed set of candidate fields and
appends one row per resume to a Google Sheet or a local XLSX workbook.

Configuration comes from environment variables (and .env), optionally
overridden by a JSON file passed with --config.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (overrides environment values)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print parsed fields and summaries, and log at debug level")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "Log format: text or json")
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	level := logLevel
	if verbose && !cmd.Flags().Changed("log-level") {
		level = "debug"
	}
	l, err := logging.New(level, logFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
