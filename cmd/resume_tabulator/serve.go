package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tabulator/internal/server"
)

const shutdownTimeout = 30 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server that processes files on request.

  POST /            {"file_id": "..."}  process one file
  POST /process     same as POST /
  POST /batch       process the whole folder and return a summary
  POST /batch/stream  same, streaming progress as server-sent events
  GET  /health`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newAppFromConfig(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	srv := server.New(a.pipeline, server.Config{Port: cfg.Port, Logger: logger})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv)
	})
	return g.Wait()
}

func shutdown(srv *server.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
