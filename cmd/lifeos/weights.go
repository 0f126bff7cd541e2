// ABOUTME: CLI commands for the scientific weights used by the scores.
// ABOUTME: show, set and reset persist through the preference store.
package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/lifeos/internal/weights"
	"github.com/spf13/cobra"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Inspect and tune score weights",
	Long: `Scientific weights are the coefficients each score uses for its inputs.
Keys are namespaced by score, e.g. readiness_sleep or nutrition_protein.`,
}

var weightsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := svc.Weights()
		if err != nil {
			return fmt.Errorf("failed to load weights: %w", err)
		}
		defaults := weights.Defaults()
		current := m.Weights()
		faint := color.New(color.Faint)
		for _, k := range weights.Keys() {
			line := fmt.Sprintf("%s %.3f", padRight(k, 22), current[k])
			if current[k] != defaults[k] {
				line += faint.Sprintf("  (default %.3f)", defaults[k])
			}
			fmt.Println(line)
		}
		return nil
	},
}

var weightsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one weight",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value: %s", args[1])
		}
		m, err := svc.Weights()
		if err != nil {
			return fmt.Errorf("failed to load weights: %w", err)
		}
		if err := m.UpdateWeight(args[0], v); err != nil {
			if errors.Is(err, weights.ErrUnknownWeight) {
				return fmt.Errorf("unknown weight %q (see 'lifeos weights show')", args[0])
			}
			return fmt.Errorf("failed to save weight: %w", err)
		}
		color.Green("✓ %s = %.3f", args[0], v)
		return nil
	},
}

var weightsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := svc.Weights()
		if err != nil {
			return fmt.Errorf("failed to load weights: %w", err)
		}
		if err := m.ResetWeights(); err != nil {
			return fmt.Errorf("failed to reset weights: %w", err)
		}
		color.Green("✓ Weights reset to defaults")
		return nil
	},
}

func init() {
	weightsCmd.AddCommand(weightsShowCmd, weightsSetCmd, weightsResetCmd)
	rootCmd.AddCommand(weightsCmd)
}
