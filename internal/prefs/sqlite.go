// ABOUTME: SQLite preference backend using the prefs table of the app database.
// ABOUTME: The database handle is owned by the caller and is not closed here.
package prefs

import (
	"context"

	"github.com/harperreed/lifeos/internal/storage"
)

type sqliteBackend struct {
	db *storage.DB
}

// NewSQLite returns a Store backed by db's prefs table.
func NewSQLite(db *storage.DB) Store {
	return &jsonStore{b: &sqliteBackend{db: db}}
}

func (s *sqliteBackend) get(key string) ([]byte, bool, error) {
	v, ok, err := s.db.GetPref(context.Background(), key)
	if err != nil || !ok {
		return nil, ok, err
	}
	return []byte(v), true, nil
}

func (s *sqliteBackend) set(key string, value []byte) error {
	return s.db.SetPref(context.Background(), key, string(value))
}

func (s *sqliteBackend) del(key string) error {
	return s.db.DeletePref(context.Background(), key)
}

func (s *sqliteBackend) close() error { return nil }
