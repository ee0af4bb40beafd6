// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history keeps finalized run batches.
//
// Two in-memory lists are maintained: the current campaign's batches,
// cleared when a new campaign starts, and a bounded global history with
// FIFO eviction. Finalized batches can additionally be persisted to a
// SQLite store and exported as JSON.
//
// Batches are immutable once appended; all accessors return deep
// copies.
//
// # Key Types
//
//   - History: Campaign-local and bounded global batch lists
//   - Store: SQLite-backed persistence for finalized batches
package history
