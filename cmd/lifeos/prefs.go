// ABOUTME: CLI commands for raw preference access.
// ABOUTME: Values are JSON; a value that is not valid JSON is stored as a string.
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/lifeos/internal/prefs"
	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Read and write preferences",
	Long: `Read and write preference blobs in the configured backend.

KEYS:

  scientific_weights  focus_goals  flow_sessions  strict_mode
  layout_locked       lens         settings_cache

EXAMPLES:

  lifeos prefs get focus_goals
  lifeos prefs set strict_mode true
  lifeos prefs set lens '"recovery"'
  lifeos prefs clear lens`,
}

func prefKey(s string) (prefs.Key, error) {
	if !prefs.IsValidKey(s) {
		names := make([]string, len(prefs.AllKeys))
		for i, k := range prefs.AllKeys {
			names[i] = string(k)
		}
		return "", fmt.Errorf("unknown key %q (valid: %s)", s, strings.Join(names, ", "))
	}
	return prefs.Key(s), nil
}

var prefsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a preference as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := prefKey(args[0])
		if err != nil {
			return err
		}
		var raw json.RawMessage
		ok, err := store.Get(key, &raw)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		if !ok {
			fmt.Println(color.New(color.Faint).Sprint("(unset)"))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <key> <json>",
	Short: "Store a preference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := prefKey(args[0])
		if err != nil {
			return err
		}
		var value any = args[1]
		if json.Valid([]byte(args[1])) {
			value = json.RawMessage(args[1])
		}
		if err := store.Set(key, value); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
		color.Green("✓ Set %s", key)
		return nil
	},
}

var prefsClearCmd = &cobra.Command{
	Use:   "clear <key>",
	Short: "Remove a preference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := prefKey(args[0])
		if err != nil {
			return err
		}
		if err := store.Clear(key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
		color.Yellow("✗ Cleared %s", key)
		return nil
	},
}

func init() {
	prefsCmd.AddCommand(prefsGetCmd, prefsSetCmd, prefsClearCmd)
	rootCmd.AddCommand(prefsCmd)
}
