// ABOUTME: CLI commands for logging and reading raw metric samples.
// ABOUTME: add, list, delete, latest, trend, average and the metric catalog.
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/lifeos/internal/metrics"
	"github.com/harperreed/lifeos/internal/models"
	"github.com/harperreed/lifeos/internal/registry"
	"github.com/harperreed/lifeos/internal/service"
	"github.com/harperreed/lifeos/internal/tui"
	"github.com/spf13/cobra"
)

var (
	addAt     string
	addUnit   string
	listName  string
	listLimit int

	trendDays  int
	trendChart bool

	avgStart string
	avgEnd   string
)

var addCmd = &cobra.Command{
	Use:     "add <metric> <value>",
	Aliases: []string{"a"},
	Short:   "Log a metric sample by hand",
	Long: `Log a raw metric sample. The metric must be a raw entry in the catalog
(see 'lifeos metrics') and the value must be inside its bounds.

Examples:
  lifeos add weight_body_mass 82.5
  lifeos add heart_rate_variability 48 --at "2025-06-14 07:00"
  lifeos add dietary_water 500 --unit mL`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		def, ok := registry.Lookup(name)
		if !ok || def.Kind != registry.KindRaw {
			return fmt.Errorf("unknown raw metric: %s (see 'lifeos metrics')", name)
		}

		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value: %s", args[1])
		}
		if !registry.Validate(name, value) {
			return fmt.Errorf("value %v out of bounds for %s", value, name)
		}

		unit := addUnit
		if unit == "" {
			unit = def.Unit
		}
		s := models.NewSample(name, value, unit)
		if addAt != "" {
			t, err := parseTime(addAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", addAt)
			}
			s.WithRecordedAt(t)
		}

		if _, err := db.UpsertSamples(cmd.Context(), []*models.MetricSample{s}); err != nil {
			return fmt.Errorf("failed to add sample: %w", err)
		}

		color.Green("✓ Added %s", name)
		fmt.Printf("  %s %.2f %s\n",
			color.New(color.Faint).Sprint(s.ID.String()[:8]),
			s.Value, s.Unit)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List recent samples",
	Long: `List recent metric samples, newest first.

OUTPUT FORMAT:

  Each line shows: ID  TIMESTAMP  METRIC  VALUE  UNIT  SOURCE

  The ID is an 8-character prefix you can use with 'lifeos delete'.

EXAMPLES:

  lifeos list                                  # Last 20 samples
  lifeos list --metric weight_body_mass        # Only weight
  lifeos list -m step_count -n 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var name *string
		if listName != "" {
			name = &listName
		}

		samples, err := db.ListSamples(cmd.Context(), name, listLimit)
		if err != nil {
			return fmt.Errorf("failed to list samples: %w", err)
		}
		if len(samples) == 0 {
			fmt.Println("No samples found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, s := range samples {
			fmt.Printf("%s %s %s %.2f %s %s\n",
				faint.Sprint(s.ID.String()[:8]),
				faint.Sprint(s.RecordedAt.Local().Format("2006-01-02 15:04")),
				padRight(s.MetricName, 24),
				s.Value,
				s.Unit,
				faint.Sprint(truncate(s.Source, 24)))
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a sample",
	Long: `Delete a metric sample by its ID or ID prefix.

The ID prefix is shown in the first column of 'lifeos list' output.
If the prefix matches more than one sample an error is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.DeleteSample(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete sample: %w", err)
		}
		color.Yellow("✗ Deleted %s", args[0])
		return nil
	},
}

var latestCmd = &cobra.Command{
	Use:   "latest [metric...]",
	Short: "Show the most recent value of metrics",
	Long: `Show the most recent sample of each metric. With no arguments the
headline metrics (sleep, HRV, resting heart rate, steps, weight) are shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := args
		if len(ids) == 0 {
			ids = service.SummaryMetrics
		}

		faint := color.New(color.Faint)
		for _, id := range ids {
			res := svc.Metrics().GetLatest(cmd.Context(), id)
			switch res.Status {
			case metrics.StatusFound:
				v := res.Value
				fmt.Printf("%s %.2f %s %s\n",
					padRight(id, 24), v.Value, v.Unit,
					faint.Sprint(v.RecordedAt.Local().Format("2006-01-02 15:04")))
			case metrics.StatusFailed:
				return fmt.Errorf("failed to read %s: %w", id, res.Err)
			default:
				fmt.Printf("%s %s\n", padRight(id, 24), faint.Sprint("no data"))
			}
		}
		return nil
	},
}

var trendCmd = &cobra.Command{
	Use:   "trend <metric>",
	Short: "Show samples of a metric over a trailing window",
	Long: `Show every sample of a raw metric recorded in the last --days days,
oldest first. --chart draws daily means as a bar chart.

EXAMPLES:

  lifeos trend heart_rate_variability
  lifeos trend sleep_analysis --days 30 --chart`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		res := svc.Metrics().GetTrend(cmd.Context(), id, trendDays)
		switch res.Status {
		case metrics.StatusFailed:
			return fmt.Errorf("failed to read %s: %w", id, res.Err)
		case metrics.StatusEmpty:
			fmt.Printf("No %s samples in the last %d days.\n", id, trendDays)
			return nil
		}

		if trendChart {
			fmt.Println(tui.TrendChart(res.Value, 72, 14))
			return nil
		}

		faint := color.New(color.Faint)
		for _, p := range res.Value {
			fmt.Printf("%s %.2f %s\n",
				faint.Sprint(p.RecordedAt.Local().Format("2006-01-02 15:04")),
				p.Value,
				faint.Sprint(p.Source))
		}
		return nil
	},
}

var averageCmd = &cobra.Command{
	Use:     "average <metric>",
	Aliases: []string{"avg"},
	Short:   "Mean of a metric between two instants",
	Long: `Mean of a raw metric's samples recorded between --start and --end.
Both default to the trailing seven days.

EXAMPLES:

  lifeos average resting_heart_rate
  lifeos avg step_count --start 2025-06-01 --end 2025-06-30`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		end := time.Now()
		start := end.AddDate(0, 0, -7)
		if avgStart != "" {
			t, err := parseTime(avgStart)
			if err != nil {
				return fmt.Errorf("invalid --start: %s", avgStart)
			}
			start = t
		}
		if avgEnd != "" {
			t, err := parseTime(avgEnd)
			if err != nil {
				return fmt.Errorf("invalid --end: %s", avgEnd)
			}
			end = t
		}

		res := svc.Metrics().GetAverage(cmd.Context(), id, start, end)
		switch res.Status {
		case metrics.StatusFailed:
			return fmt.Errorf("failed to read %s: %w", id, res.Err)
		case metrics.StatusEmpty:
			fmt.Printf("No %s samples in range.\n", id)
			return nil
		}

		unit := ""
		if def, ok := registry.Lookup(id); ok {
			unit = def.Unit
		}
		fmt.Printf("%s %.2f %s\n", padRight(id, 24), res.Value, unit)
		return nil
	},
}

var catalogCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List the metric catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		faint := color.New(color.Faint)
		for _, d := range registry.All() {
			fmt.Printf("%s %s %s %s\n",
				padRight(d.ID, 24),
				padRight(string(d.Kind), 10),
				padRight(d.Unit, 10),
				faint.Sprint(d.Name))
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	addCmd.Flags().StringVar(&addUnit, "unit", "", "unit (defaults to the catalog unit)")

	listCmd.Flags().StringVarP(&listName, "metric", "m", "", "filter by metric")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results")

	trendCmd.Flags().IntVarP(&trendDays, "days", "d", 7, "trailing window in days")
	trendCmd.Flags().BoolVar(&trendChart, "chart", false, "draw daily means as a bar chart")

	averageCmd.Flags().StringVar(&avgStart, "start", "", "start of range")
	averageCmd.Flags().StringVar(&avgEnd, "end", "", "end of range")

	rootCmd.AddCommand(addCmd, listCmd, deleteCmd, latestCmd, trendCmd, averageCmd, catalogCmd)
}
