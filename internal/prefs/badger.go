// ABOUTME: Badger preference backend for a standalone on-disk store.
// ABOUTME: Keeps preferences out of the metrics database when configured.
package prefs

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

type badgerBackend struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger store in dir. An empty dir opens
// an in-memory store.
func OpenBadger(dir string) (Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &jsonStore{b: &badgerBackend{db: db}}, nil
}

func (b *badgerBackend) get(key string) ([]byte, bool, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (b *badgerBackend) set(key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (b *badgerBackend) del(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (b *badgerBackend) close() error {
	return b.db.Close()
}
