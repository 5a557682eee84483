package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tabulator/internal/observability"
)

var batchJSON bool

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process every PDF in the configured folder",
	Long: `Write the header row, then download, extract, parse and append one row for
every PDF in FOLDER_ID, in ordinal order of the file names ("12. Name.pdf").
With failure_policy=abort (the default) the first failed file stops the run.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "Print the batch summary as JSON")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireFolder(); err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newAppFromConfig(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	result, runErr := a.pipeline.RunBatch(ctx)

	switch {
	case batchJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case cfg.Verbose:
		observability.NewPrinter(cmd.OutOrStdout()).PrintBatchSummary(result)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Processed %d of %d files (%d failed)\n",
			result.Processed, result.Total, len(result.Failed))
	}

	if runErr != nil {
		return fmt.Errorf("batch stopped: %w", runErr)
	}
	return nil
}
