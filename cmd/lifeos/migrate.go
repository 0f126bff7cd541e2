// ABOUTME: CLI command for copying data from another lifeos database.
// ABOUTME: Used when moving data_dir or merging a second machine's database.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/lifeos/internal/config"
	"github.com/harperreed/lifeos/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateFrom   string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate --from <path>",
	Short: "Copy samples and habits from another lifeos database",
	Long: `Copy samples and habits from another lifeos SQLite database into the
current one. Samples are upserted and existing habits are skipped, so the
migration can be re-run safely.

USAGE:

  lifeos migrate --from ~/old/lifeos.db --dry-run   # Preview
  lifeos migrate --from ~/old/lifeos.db             # Copy

Preferences (weights, flow sessions) are not copied; use 'lifeos prefs'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == "" {
			return fmt.Errorf("--from is required")
		}
		path := config.ExpandPath(migrateFrom)
		if path == db.Path() {
			return fmt.Errorf("source and destination are the same database")
		}

		src, err := storage.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open source: %w", err)
		}
		defer src.Close()

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			data, err := src.GetAllData(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read source: %w", err)
			}
			fmt.Printf("Would copy %d samples and %d habits from %s\n",
				len(data.Samples), len(data.Habits), path)
			return nil
		}

		sum, err := storage.MigrateData(cmd.Context(), src, db)
		if err != nil {
			return err
		}
		color.Green("✓ Copied %d samples and %d habits", sum.Samples, sum.Habits)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "source database path")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
