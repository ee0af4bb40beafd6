// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package aggregate computes per-round and overall statistics from
// benchmark result records.
//
// Aggregation is pure and deterministic: the same record list always
// produces the same summaries, which keeps step-campaign comparisons
// reproducible.
//
// # Key Functions
//
//   - Rounds: Group records by round or step key and summarize each group
//   - Summarize: Overall min/avg/max statistics for a whole run
//
// # Grouping
//
// The grouping key is a pure function of the run mode and the record:
// round number for normal runs, actual concurrency for concurrency
// sweeps, actual prompt token count for input-size sweeps. Failed
// records count toward group totals but are excluded from rate and
// latency averages so errored requests do not depress throughput
// numbers.
package aggregate
