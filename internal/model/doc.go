// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the shared data model for rigbench.
//
// Everything that crosses a package boundary lives here: run
// configurations, per-request result records, progress and telemetry
// events, and the finalized run batch with its aggregate summaries.
//
// # Key Types
//
//   - RunConfiguration: Immutable parameters for one benchmark run
//   - ResultRecord: Outcome of one completed request
//   - ProgressEvent: Per-request lifecycle signal from the engine
//   - TelemetrySample: Periodic system-wide throughput snapshot
//   - RunBatch: A completed run with records and summaries
//
// # Usage
//
// Create and validate a configuration:
//
//	cfg := model.DefaultRunConfiguration()
//	cfg.Model = "qwen2.5:7b"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// Expand a step campaign into per-step configurations:
//
//	cfgs, err := cfg.ExpandSteps()
package model
