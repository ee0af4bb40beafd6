// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package configstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jeranaias/rigbench/internal/model"
)

// snapshotKey is where the session snapshot lives in the store.
const snapshotKey = "session.snapshot"

// =============================================================================
// SESSION SNAPSHOT
// =============================================================================

// Snapshot is the session state restored across restarts: the last-used
// connection parameters and the per-mode step configurations. It is
// stored as one opaque JSON value with no schema beyond the
// RunConfiguration shape.
type Snapshot struct {
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"api_key,omitempty"`
	Model    string `json:"model"`

	ActiveMode model.RunMode `json:"active_mode"`

	// Per-mode step ranges, keyed by mode name, so switching modes
	// restores each mode's last-used sweep.
	StepRanges map[string]model.StepRange `json:"step_ranges,omitempty"`

	// Per-mode round counts.
	Rounds map[string]int `json:"rounds,omitempty"`
}

// SaveSnapshot serializes the snapshot into the store.
func SaveSnapshot(store Store, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return store.Set(snapshotKey, string(data))
}

// LoadSnapshot restores the snapshot from the store. A missing snapshot
// returns a zero value and no error: first launch has nothing to
// restore.
func LoadSnapshot(store Store) (Snapshot, error) {
	raw, err := store.Get(snapshotKey)
	if errors.Is(err, ErrKeyNotFound) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}
