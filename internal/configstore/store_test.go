// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package configstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigbench/internal/model"
)

// =============================================================================
// STORE IMPLEMENTATION TESTS
// =============================================================================

// Both implementations must satisfy the same contract.
func TestStore_Contract(t *testing.T) {
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("missing")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, store.Set("b", "2"))
			require.NoError(t, store.Set("a", "1"))
			require.NoError(t, store.Set("a", "replaced"))

			v, err := store.Get("a")
			require.NoError(t, err)
			assert.Equal(t, "replaced", v)

			keys, err := store.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, keys)

			require.NoError(t, store.Delete("a"))
			require.NoError(t, store.Delete("a")) // idempotent
			_, err = store.Get("a")
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("endpoint", "http://127.0.0.1:8000/v1"))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	v, err := reopened.Get("endpoint")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000/v1", v)
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestSnapshot_RoundTrip(t *testing.T) {
	store := NewMemoryStore()

	snap := Snapshot{
		Endpoint:   "http://127.0.0.1:8000/v1",
		Model:      "qwen2.5:7b",
		ActiveMode: model.ModeConcurrencyStep,
		StepRanges: map[string]model.StepRange{
			string(model.ModeConcurrencyStep): {Start: 1, End: 8, Step: 1},
			string(model.ModeInputStep):       {Start: 128, End: 1024, Step: 128},
		},
		Rounds: map[string]int{string(model.ModeNormal): 3},
	}

	require.NoError(t, SaveSnapshot(store, snap))

	restored, err := LoadSnapshot(store)
	require.NoError(t, err)
	assert.Equal(t, snap, restored)
}

func TestSnapshot_MissingIsZero(t *testing.T) {
	restored, err := LoadSnapshot(NewMemoryStore())
	require.NoError(t, err)
	assert.Equal(t, Snapshot{}, restored)
}

func TestSnapshot_CorruptValue(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set("session.snapshot", "{broken"))

	_, err := LoadSnapshot(store)
	assert.Error(t, err)
}
