// ABOUTME: CLI command running the HTTP API.
// ABOUTME: Serves ingestion and read endpoints until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/harperreed/lifeos/internal/api"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. Point Health Auto Export's REST automation at
POST http://<host>/api/ingest to stream samples in.

ENDPOINTS:

  POST /api/ingest                      Health Auto Export payload
  GET  /api/metrics                     metric catalog
  GET  /api/metrics/{id}/latest         most recent sample
  GET  /api/metrics/{id}/trend?days=7   samples in the trailing window
  GET  /api/metrics/{id}/average?start=&end=
  GET  /api/scores?days=7               composite scores
  GET  /api/habits/stats                scientific aggregation
  GET  /api/habits/today                habits scheduled today
  GET  /api/flow/sessions?limit=10      recent focus sessions

The address defaults to listen_addr from the config file, or 127.0.0.1:8787.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.GetListenAddr()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		color.Cyan("Listening on http://%s", addr)
		return api.NewServer(svc, logger).ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address")
	rootCmd.AddCommand(serveCmd)
}
