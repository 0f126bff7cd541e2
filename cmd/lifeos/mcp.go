// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs the stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/lifeos/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.
The server communicates via stdin/stdout.

CONFIGURATION:

  {
    "mcpServers": {
      "lifeos": {
        "command": "lifeos",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  get_latest           Most recent value of one or more metrics
  get_trend            Samples of a metric over a trailing window
  get_average          Mean of a metric between two instants
  get_scores           Readiness, recovery and nutrition scores
  add_metric           Log a metric sample
  habit_stats          Scientific aggregation of active habits
  habits_today         Habits scheduled for today
  list_flow_sessions   Recent focus sessions and today's goal progress

AVAILABLE RESOURCES:

  lifeos://summary     Scores, latest vitals, today's habits and focus
  lifeos://registry    Metric catalog`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(svc)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("lifeos " + mcp.Version)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd, versionCmd)
}
