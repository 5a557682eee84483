package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var processFileID string

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a single file by Drive id",
	Long:  "Download one PDF by id, extract and parse it, and append its row. The header row is not written.",
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processFileID, "file-id", "", "Drive file id to process (required)")
	_ = processCmd.MarkFlagRequired("file-id")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newAppFromConfig(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	row, err := a.pipeline.RunSingle(ctx, strings.TrimSpace(processFileID))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Appended %s (%s)\n", row[1], processFileID)
	return nil
}
