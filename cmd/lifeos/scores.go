// ABOUTME: CLI command printing the readiness, recovery and nutrition scores.
// ABOUTME: Shows each score's inputs so mocked and missing components are visible.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/lifeos/internal/scores"
	"github.com/spf13/cobra"
)

var (
	scoresDays int
	scoresJSON bool
	scoresWide bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Compute readiness, recovery and nutrition scores",
	Long: `Compute the composite scores from trailing averages of raw metrics,
weighted by your scientific weights ('lifeos weights show').

Missing inputs fall back to neutral defaults unless strict mode is on
('lifeos prefs set strict_mode true'), in which case a score with any
missing input is shown as STALE DATA.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := svc.Scores(cmd.Context(), scoresDays)
		if err != nil {
			return err
		}

		if scoresJSON {
			data, err := json.MarshalIndent(sc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		faint := color.New(color.Faint)
		fmt.Println(faint.Sprintf("window %d days, strict %v", sc.WindowDays, sc.Strict))
		for _, s := range []scores.Score{sc.Readiness, sc.Recovery, sc.Nutrition} {
			printScore(s)
			if scoresWide {
				for _, in := range s.Inputs {
					note := ""
					switch {
					case in.Missing:
						note = " missing"
					case in.Mocked:
						note = " default"
					}
					fmt.Println(faint.Sprintf("    %s w=%.2f raw=%.2f norm=%.2f%s",
						padRight(in.Metric, 24), in.Weight, in.Raw, in.Normalized, note))
				}
			}
		}
		return nil
	},
}

func printScore(s scores.Score) {
	name := s.ID
	if def, ok := scores.Definition(s.ID); ok {
		name = def.Name
	}
	value := s.Display()
	switch {
	case s.Stale:
		value = color.YellowString(value)
	case s.Value >= 70:
		value = color.GreenString(value)
	case s.Value < 40:
		value = color.RedString(value)
	}
	fmt.Printf("%s %s\n", padRight(name, 20), value)
}

func init() {
	scoresCmd.Flags().IntVarP(&scoresDays, "days", "d", 0, "averaging window in days (default 7)")
	scoresCmd.Flags().BoolVar(&scoresJSON, "json", false, "print as JSON")
	scoresCmd.Flags().BoolVarP(&scoresWide, "wide", "w", false, "show score inputs")
	rootCmd.AddCommand(scoresCmd)
}
