// ABOUTME: Root Cobra command for the lifeos CLI.
// ABOUTME: Opens storage, preferences and the service in PersistentPreRunE and closes them after.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/lifeos/internal/config"
	"github.com/harperreed/lifeos/internal/prefs"
	"github.com/harperreed/lifeos/internal/service"
	"github.com/harperreed/lifeos/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	db     *storage.DB
	store  prefs.Store
	svc    *service.Service
	logger *log.Logger

	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "lifeos",
	Short: "Personal biometrics, habits and focus tracker",
	Long: `lifeos turns raw health exports into readiness, recovery and nutrition
scores, tracks habits with their physiological profile, and runs 90 minute
ultradian focus sessions.

QUICK START:

  $ lifeos ingest export.json          # Import a Health Auto Export payload
  $ lifeos add weight_body_mass 82.5   # Log a sample by hand
  $ lifeos scores                      # Readiness, recovery, nutrition
  $ lifeos trend heart_rate_variability --days 14 --chart
  $ lifeos habit add "Cold shower" --driver dopamine --state -4
  $ lifeos flow                        # Start a focus session

SERVERS:

  $ lifeos serve    # HTTP API, including POST /api/ingest for Health Auto Export
  $ lifeos mcp      # Model Context Protocol server over stdio

DATA STORAGE:

  Samples and habits live in SQLite at ~/.local/share/lifeos/lifeos.db.
  Preferences (weights, strict mode, flow sessions) use the backend set by
  prefs_backend in ~/.config/lifeos/config.json: sqlite, badger, or charm.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(logLevel)
		if skipStorage(cmd) {
			return nil
		}
		return openApp()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

// skipStorage reports whether cmd runs without opening the database.
func skipStorage(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "schema", "install-skill", "completion":
		return true
	}
	return false
}

func newLogger(level string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "lifeos",
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.WarnLevel
	}
	l.SetLevel(lvl)
	return l
}

func openApp() error {
	// A failed previous run skips PersistentPostRunE.
	_ = closeApp()

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err = cfg.OpenStorage()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	store, err = cfg.OpenPrefs(db)
	if err != nil {
		_ = db.Close()
		db = nil
		return fmt.Errorf("failed to open preferences: %w", err)
	}

	svc = service.New(db, store, cfg.GetOwner(), service.WithLogger(logger))
	logger.Debug("opened storage", "db", db.Path(), "prefs", cfg.GetPrefsBackend())
	return nil
}

func closeApp() error {
	var errs []string
	if store != nil {
		if err := store.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		store = nil
	}
	if db != nil {
		if err := db.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		db = nil
	}
	svc = nil
	if len(errs) > 0 {
		return fmt.Errorf("close: %s", strings.Join(errs, "; "))
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}
