package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tabulator/internal/server"
	"github.com/jonathan/resume-tabulator/internal/watch"
)

var (
	watchInterval   time.Duration
	watchOnce       bool
	watchWithServer bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the folder and process newly uploaded files",
	Long: `Poll FOLDER_ID, process every file whose id is not yet in column B of the
log sheet (LOG_SHEET_NAME, default "Log"), and log
[index, file id, name, timestamp] for each success. Failed files are retried
on the next poll.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Polling interval (default: WATCH_INTERVAL or 1m)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Poll once and exit")
	watchCmd.Flags().BoolVar(&watchWithServer, "serve", false, "Also run the HTTP API in the same process")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireFolder(); err != nil {
		return err
	}
	interval := watchInterval
	if interval == 0 {
		if interval, err = cfg.Interval(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newAppFromConfig(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	logSheet, err := a.logSheet(ctx)
	if err != nil {
		return err
	}
	watcher := watch.New(a.files, a.pipeline, logSheet, cfg.FolderID, logger)

	if watchOnce {
		result, err := watcher.RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Found %d new files, processed %d (%d failed)\n",
			result.New, result.Processed, len(result.Failed))
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return watcher.Run(gctx, interval) })
	if watchWithServer {
		srv := server.New(a.pipeline, server.Config{Port: cfg.Port, Logger: logger})
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			return shutdown(srv)
		})
	}
	return g.Wait()
}
