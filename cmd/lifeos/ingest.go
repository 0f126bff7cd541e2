// ABOUTME: CLI commands for importing Health Auto Export payloads.
// ABOUTME: Reads a file or stdin and upserts samples through the ingester.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/lifeos/internal/ingest"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file|->",
	Short: "Import a Health Auto Export JSON payload",
	Long: `Import a Health Auto Export JSON payload from a file, or from stdin with "-".

Samples are upserted on (metric, timestamp, source), so re-importing the same
export is harmless. Points with unparsable dates, no value, or a value outside
the catalog bounds are skipped and counted.

EXAMPLES:

  lifeos ingest HealthAutoExport-2025-06-14.json
  cat export.json | lifeos ingest -
  lifeos ingest schema > payload.schema.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()
			r = f
		}

		res, err := svc.Ingester().IngestReader(cmd.Context(), r)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}

		color.Green("✓ Ingested %d samples", res.Ingested)
		if res.Skipped > 0 {
			faint := color.New(color.Faint)
			fmt.Println(faint.Sprintf("  skipped %d (bad date %d, no value %d, out of bounds %d)",
				res.Skipped, res.Stats.BadDate, res.Stats.NoValue, res.Stats.OutOfBounds))
		}
		return nil
	},
}

var ingestSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the ingest payload",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := ingest.SchemaJSON()
		if err != nil {
			return fmt.Errorf("failed to build schema: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	ingestCmd.AddCommand(ingestSchemaCmd)
	rootCmd.AddCommand(ingestCmd)
}
