// ABOUTME: lifeos configuration with storage and preference backend selection.
// ABOUTME: Handles the JSON config file, defaults, ~ expansion, and backend factory functions.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/lifeos/internal/prefs"
	"github.com/harperreed/lifeos/internal/storage"
)

// Preference backends.
const (
	PrefsSQLite = "sqlite"
	PrefsBadger = "badger"
	PrefsCharm  = "charm"
	PrefsMemory = "memory"
)

// DefaultListenAddr is the HTTP address used by serve.
const DefaultListenAddr = "127.0.0.1:8787"

// Config stores lifeos configuration.
type Config struct {
	// DataDir is the root directory for lifeos.db and the badger prefs
	// directory. Supports ~ expansion. Defaults to ~/.local/share/lifeos.
	DataDir string `json:"data_dir,omitempty"`

	// PrefsBackend selects where preferences live: "sqlite" (default),
	// "badger", "charm", or "memory".
	PrefsBackend string `json:"prefs_backend,omitempty"`

	// CharmHost overrides the Charm server for the charm backend.
	CharmHost string `json:"charm_host,omitempty"`

	ListenAddr string `json:"listen_addr,omitempty"`

	// Owner is the user id habits and settings are filed under.
	Owner string `json:"owner,omitempty"`
}

// GetPrefsBackend returns the configured preference backend, defaulting to sqlite.
func (c *Config) GetPrefsBackend() string {
	if c.PrefsBackend == "" {
		return PrefsSQLite
	}
	return c.PrefsBackend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetListenAddr returns the HTTP listen address.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// GetOwner returns the configured owner, falling back to $USER.
func (c *Config) GetOwner() string {
	if c.Owner != "" {
		return c.Owner
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "me"
}

// DBPath is the SQLite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "lifeos.db")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage opens the SQLite data store.
func (c *Config) OpenStorage() (*storage.DB, error) {
	return storage.Open(c.DBPath())
}

// OpenPrefs opens the configured preference store. The sqlite backend
// shares db.
func (c *Config) OpenPrefs(db *storage.DB) (prefs.Store, error) {
	switch backend := c.GetPrefsBackend(); backend {
	case PrefsSQLite:
		if db == nil {
			return nil, fmt.Errorf("sqlite prefs backend needs an open database")
		}
		return prefs.NewSQLite(db), nil
	case PrefsBadger:
		return prefs.OpenBadger(filepath.Join(c.GetDataDir(), "prefs"))
	case PrefsCharm:
		return prefs.OpenCharm(c.CharmHost)
	case PrefsMemory:
		return prefs.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown prefs backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "lifeos", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
