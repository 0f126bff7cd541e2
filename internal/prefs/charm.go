// ABOUTME: Charm KV preference backend with automatic cloud sync.
// ABOUTME: Data is E2E encrypted with the user's SSH key and synced after each write.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
)

const (
	charmDBName      = "lifeos"
	DefaultCharmHost = "charm.2389.dev"
)

type charmBackend struct {
	kv       *kv.KV
	autoSync bool
	mu       sync.RWMutex
}

// OpenCharm opens the Charm KV database against host and pulls remote data.
// When another process holds the lock the store opens read-only and writes fail.
func OpenCharm(host string) (Store, error) {
	if host == "" {
		host = DefaultCharmHost
	}
	// Set server before opening KV
	if err := os.Setenv("CHARM_HOST", host); err != nil {
		return nil, fmt.Errorf("set charm host: %w", err)
	}

	db, err := kv.OpenWithDefaultsFallback(charmDBName)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}

	if !db.IsReadOnly() {
		_ = db.Sync()
	}

	return &jsonStore{b: &charmBackend{kv: db, autoSync: true}}, nil
}

func (c *charmBackend) get(key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, err := c.kv.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (c *charmBackend) set(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return fmt.Errorf("cannot write: database is locked by another process")
	}
	if err := c.kv.Set([]byte(key), value); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

func (c *charmBackend) del(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return fmt.Errorf("cannot write: database is locked by another process")
	}
	if err := c.kv.Delete([]byte(key)); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// syncIfEnabled pushes local writes to Charm Cloud.
func (c *charmBackend) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		_ = c.kv.Sync()
	}
}

func (c *charmBackend) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Close()
}
