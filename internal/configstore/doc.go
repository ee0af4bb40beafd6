// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package configstore provides the key/value capability the controller
// uses for session-persisted state.
//
// The controller never talks to a concrete storage API: it is handed a
// Store and reads/writes opaque values. Two implementations are
// provided: a SQLite-backed store for real use and an in-memory store
// for tests.
//
// # Key Types
//
//   - Store: The get/set/delete capability
//   - SQLiteStore: Durable implementation
//   - MemoryStore: In-memory implementation for tests
//   - Snapshot: The serialized session state (mode, step ranges, last
//     endpoint/model/key) restored on startup
package configstore
