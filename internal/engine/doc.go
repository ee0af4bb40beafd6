// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine defines the execution-engine boundary for rigbench.
//
// The engine owns the actual request issuing against the target model
// API: it starts and stops runs, and exposes incremental progress,
// result, and telemetry feeds that the run controller polls. This
// package specifies that contract and provides an HTTP client for a
// runner daemon speaking it.
//
// # Key Types
//
//   - Engine: The start/stop/poll contract consumed by the controller
//   - Client: HTTP implementation of Engine against a runner daemon
//   - EngineError: Typed errors with a category and wrapped cause
//
// # Contract
//
// StartRun returns immediately with a run id and must not block until
// completion. PollResults and PollTelemetry are incremental: each call
// returns only items new since the previous call, and no item is ever
// returned twice. PollProgress is a snapshot with at-least-once
// delivery; the caller deduplicates by id. GetRunBatch is the
// authoritative aggregated result, fetched once at detected completion.
package engine
