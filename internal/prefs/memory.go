// ABOUTME: In-memory preference backend.
// ABOUTME: Used by tests and as a throwaway store when persistence is not wanted.
package prefs

import "sync"

type memoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory Store.
func NewMemory() Store {
	return &jsonStore{b: &memoryBackend{data: make(map[string][]byte)}}
}

func (m *memoryBackend) get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *memoryBackend) set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryBackend) del(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryBackend) close() error { return nil }
