// ABOUTME: Tests for preference stores.
// ABOUTME: Runs the same contract against memory, SQLite, and Badger backends.
package prefs

import (
	"path/filepath"
	"testing"

	"github.com/harperreed/lifeos/internal/storage"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "lifeos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	bdg, err := OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdg.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": NewSQLite(db),
		"badger": bdg,
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var lens string
			ok, err := s.Get(KeyLens, &lens)
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Set(KeyLens, "scientific"))
			ok, err = s.Get(KeyLens, &lens)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "scientific", lens)

			weights := map[string]float64{"readiness_sleep": 0.5}
			require.NoError(t, s.Set(KeyScientificWeights, weights))
			var got map[string]float64
			ok, err = s.Get(KeyScientificWeights, &got)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, weights, got)

			require.NoError(t, s.Clear(KeyLens))
			ok, err = s.Get(KeyLens, &lens)
			require.NoError(t, err)
			require.False(t, ok)

			// Clearing a missing key is not an error.
			require.NoError(t, s.Clear(KeyLens))
		})
	}
}

func TestKeysAreIndependent(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Set(KeyStrictMode, true))
	require.NoError(t, s.Set(KeyLayoutLocked, false))
	require.NoError(t, s.Clear(KeyLayoutLocked))

	require.True(t, Bool(s, KeyStrictMode, false))
	require.True(t, Bool(s, KeyLayoutLocked, true))
}

func TestGetDecodeError(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Set(KeyLens, "simple"))

	var n int
	_, err := s.Get(KeyLens, &n)
	require.Error(t, err)
	require.Equal(t, "fallback", String(NewMemory(), KeyLens, "fallback"))
	require.Equal(t, 0, n)
}

func TestIsValidKey(t *testing.T) {
	require.True(t, IsValidKey("strict_mode"))
	require.False(t, IsValidKey("nope"))
}
