// ABOUTME: Typed key/value persistence for local preferences and small state blobs.
// ABOUTME: Values are JSON-encoded; each key is an independent blob with no cross-key transactions.
package prefs

import (
	"encoding/json"
	"fmt"
)

// Key names one persisted blob.
type Key string

const (
	KeyScientificWeights Key = "scientific_weights"
	KeyStrictMode        Key = "strict_mode"
	KeyFocusGoals        Key = "focus_goals"
	KeyFlowSessions      Key = "flow_sessions"
	KeyLayoutLocked      Key = "layout_locked"
	KeyLens              Key = "lens"
	KeySettingsCache     Key = "settings_cache"
)

// AllKeys lists every known key.
var AllKeys = []Key{
	KeyScientificWeights, KeyStrictMode, KeyFocusGoals, KeyFlowSessions,
	KeyLayoutLocked, KeyLens, KeySettingsCache,
}

// IsValidKey checks if a string names a known key.
func IsValidKey(s string) bool {
	for _, k := range AllKeys {
		if string(k) == s {
			return true
		}
	}
	return false
}

// Store persists JSON values by key.
type Store interface {
	// Get decodes the value under key into dst. It reports false when the
	// key has never been set.
	Get(key Key, dst any) (bool, error)
	Set(key Key, value any) error
	Clear(key Key) error
	Close() error
}

// backend is the raw byte surface each storage engine provides.
type backend interface {
	get(key string) ([]byte, bool, error)
	set(key string, value []byte) error
	del(key string) error
	close() error
}

// jsonStore adapts a backend to Store.
type jsonStore struct {
	b backend
}

func (s *jsonStore) Get(key Key, dst any) (bool, error) {
	raw, ok, err := s.b.get(string(key))
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *jsonStore) Set(key Key, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.b.set(string(key), raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *jsonStore) Clear(key Key) error {
	if err := s.b.del(string(key)); err != nil {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}

func (s *jsonStore) Close() error {
	return s.b.close()
}

// Bool reads a boolean flag, returning def when unset or unreadable.
func Bool(s Store, key Key, def bool) bool {
	var v bool
	ok, err := s.Get(key, &v)
	if err != nil || !ok {
		return def
	}
	return v
}

// String reads a string preference, returning def when unset or unreadable.
func String(s Store, key Key, def string) string {
	var v string
	ok, err := s.Get(key, &v)
	if err != nil || !ok {
		return def
	}
	return v
}
