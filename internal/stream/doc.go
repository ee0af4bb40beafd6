// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream provides the bounded merge buffers and progress
// deduplication used by the run controller's polling loop.
//
// The engine delivers three incremental feeds per tick: result records,
// telemetry samples, and progress events. Buffer absorbs the first two
// with strict FIFO eviction beyond a fixed capacity; ProgressTracker
// absorbs the third, collapsing at-least-once delivery into a distinct
// completed-id count.
//
// # Key Types
//
//   - Buffer: Generic bounded append buffer with FIFO eviction
//   - ProgressTracker: Deduplicating completion-state tracker
//
// All types are safe for concurrent use; the controller writes while a
// reporting path reads.
package stream
