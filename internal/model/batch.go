// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// ROUND SUMMARY
// =============================================================================

// RoundSummary aggregates the records of one round or step bucket.
// Summaries are derived on demand from their source records and are
// never persisted independently of them.
type RoundSummary struct {
	// Key is the grouping value: round number (normal mode), actual
	// concurrency (concurrency step) or actual prompt tokens (input step).
	Key int `json:"key"`

	// Concurrency is the concurrency level in effect for this group.
	Concurrency int `json:"concurrency"`

	TotalRequests      int `json:"total_requests"`
	SuccessfulRequests int `json:"successful_requests"`
	FailedRequests     int `json:"failed_requests"`

	// Averages over successful records only.
	AvgPromptTokens     float64       `json:"avg_prompt_tokens"`
	AvgCompletionTokens float64       `json:"avg_completion_tokens"`
	AvgTTFT             time.Duration `json:"avg_ttft_ns"`
	AvgDecode           time.Duration `json:"avg_decode_ns"`
	AvgLatency          time.Duration `json:"avg_latency_ns"`
	AvgPrefillRate      float64       `json:"avg_prefill_tokens_per_sec"`
	AvgDecodeRate       float64       `json:"avg_decode_tokens_per_sec"`

	// TotalOutputRate estimates the summed concurrent output throughput
	// as AvgDecodeRate x Concurrency. This is an approximation derived
	// from the single-stream average, not a measured aggregate.
	TotalOutputRate float64 `json:"total_output_tokens_per_sec"`
}

// =============================================================================
// TEST SUMMARY
// =============================================================================

// MetricStats holds min/avg/max for one metric across a run.
type MetricStats struct {
	Min float64 `json:"min"`
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
}

// TestSummary is the overall aggregate for a completed run.
type TestSummary struct {
	TotalRequests      int     `json:"total_requests"`
	SuccessfulRequests int     `json:"successful_requests"`
	FailedRequests     int     `json:"failed_requests"`
	ErrorRate          float64 `json:"error_rate"`

	TTFTSeconds    MetricStats `json:"ttft_seconds"`
	DecodeSeconds  MetricStats `json:"decode_seconds"`
	LatencySeconds MetricStats `json:"latency_seconds"`
	PrefillRate    MetricStats `json:"prefill_tokens_per_sec"`
	DecodeRate     MetricStats `json:"decode_tokens_per_sec"`

	TotalPromptTokens     int `json:"total_prompt_tokens"`
	TotalCompletionTokens int `json:"total_completion_tokens"`
}

// =============================================================================
// RUN BATCH
// =============================================================================

// RunBatch is a completed run: the configuration it used, every result
// record in order, optional per-round summaries, and the overall
// summary. A batch is immutable once finalized and placed in history.
type RunBatch struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Config  RunConfiguration `json:"config"`
	Records []ResultRecord   `json:"records"`

	Rounds  []RoundSummary `json:"rounds,omitempty"`
	Summary TestSummary    `json:"summary"`
}

// Duration returns the wall time of the run.
func (b *RunBatch) Duration() time.Duration {
	if b.StartTime.IsZero() || b.EndTime.IsZero() {
		return 0
	}
	return b.EndTime.Sub(b.StartTime)
}

// FailedCount returns the number of failed records in the batch.
func (b *RunBatch) FailedCount() int {
	failed := 0
	for _, r := range b.Records {
		if !r.Success {
			failed++
		}
	}
	return failed
}

// Clone returns a deep copy of the batch. History hands out clones so
// callers cannot mutate a finalized batch.
func (b *RunBatch) Clone() *RunBatch {
	if b == nil {
		return nil
	}
	clone := *b
	clone.Records = append([]ResultRecord(nil), b.Records...)
	clone.Rounds = append([]RoundSummary(nil), b.Rounds...)
	return &clone
}
