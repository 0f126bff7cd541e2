// ABOUTME: User settings rows and local preference key/value storage.
// ABOUTME: Settings hold the dashboard layout and a free-form settings bag per user.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// UserSettings is the per-user settings row.
type UserSettings struct {
	UserID          string          `json:"user_id" yaml:"user_id"`
	DashboardLayout json.RawMessage `json:"dashboard_layout" yaml:"-"`
	Settings        map[string]any  `json:"settings" yaml:"settings"`
	UpdatedAt       time.Time       `json:"updated_at" yaml:"updated_at"`
}

// GetUserSettings returns the settings row for userID, or an empty row if none exists.
func (d *DB) GetUserSettings(ctx context.Context, userID string) (*UserSettings, error) {
	var layout, bag, updatedAt string
	err := d.db.QueryRowContext(ctx,
		`SELECT dashboard_layout, settings, updated_at FROM user_settings WHERE user_id = ?`, userID,
	).Scan(&layout, &bag, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &UserSettings{UserID: userID, Settings: map[string]any{}}, nil
		}
		return nil, fmt.Errorf("get user settings: %w", err)
	}

	s := &UserSettings{
		UserID:          userID,
		DashboardLayout: json.RawMessage(layout),
		Settings:        map[string]any{},
		UpdatedAt:       parseTime(updatedAt),
	}
	if err := json.Unmarshal([]byte(bag), &s.Settings); err != nil {
		return nil, fmt.Errorf("decode user settings: %w", err)
	}
	return s, nil
}

// SaveUserSettings upserts the settings row.
func (d *DB) SaveUserSettings(ctx context.Context, s *UserSettings) error {
	layout := s.DashboardLayout
	if len(layout) == 0 {
		layout = json.RawMessage("null")
	}
	bag, err := json.Marshal(s.Settings)
	if err != nil {
		return fmt.Errorf("encode user settings: %w", err)
	}
	s.UpdatedAt = time.Now()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, dashboard_layout, settings, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			dashboard_layout = excluded.dashboard_layout,
			settings = excluded.settings,
			updated_at = excluded.updated_at
	`, s.UserID, string(layout), string(bag), formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save user settings: %w", err)
	}
	return nil
}

// GetPref returns the raw value stored under key.
func (d *DB) GetPref(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get pref %q: %w", key, err)
	}
	return value, true, nil
}

// SetPref stores value under key.
func (d *DB) SetPref(ctx context.Context, key, value string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO prefs (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set pref %q: %w", key, err)
	}
	return nil
}

// DeletePref removes key. Missing keys are not an error.
func (d *DB) DeletePref(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM prefs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete pref %q: %w", key, err)
	}
	return nil
}
