// ABOUTME: CLI commands for exporting and importing lifeos data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportMetric string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export samples and habits",
	Long: `Export samples and habits in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export grouped by metric (human-readable)
  markdown   Markdown tables (for documentation/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --metric, -m   Filter by metric (markdown only)
  --since        Only include data since this date (YYYY-MM-DD, markdown only)

EXAMPLES:

  lifeos export json -o backup.json
  lifeos export yaml
  lifeos export markdown --metric weight_body_mass --since 2025-01-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var (
			data []byte
			err  error
		)

		switch args[0] {
		case "json":
			data, err = db.ExportJSON(ctx)
		case "yaml":
			data, err = db.ExportYAML(ctx)
		case "markdown":
			var name *string
			if exportMetric != "" {
				name = &exportMetric
			}
			var since *time.Time
			if exportSince != "" {
				t, perr := time.ParseInLocation("2006-01-02", exportSince, time.Local)
				if perr != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			var md string
			md, err = db.ExportMarkdown(ctx, name, since)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON backup",
	Long: `Import samples and habits from a JSON file written by 'lifeos export json'.

Samples are upserted, so importing the same backup twice is harmless.
Habits whose ID already exists are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if err := db.ImportJSON(cmd.Context(), data); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		color.Green("✓ Imported from %s", args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportMetric, "metric", "m", "", "filter by metric (markdown only)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include data since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd, importCmd)
}
