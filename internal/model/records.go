// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// RESULT RECORDS
// =============================================================================

// ResultRecord is the outcome of one completed request. Records are
// produced incrementally by the execution engine and are immutable once
// emitted; ID is stable across polls.
type ResultRecord struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Token counts as reported by the endpoint.
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Latency breakdown.
	TTFT    time.Duration `json:"ttft_ns"`    // Time to first token
	Decode  time.Duration `json:"decode_ns"`  // First token to last token
	Latency time.Duration `json:"latency_ns"` // Total request latency

	// Derived rates.
	PrefillTokensPerSec float64 `json:"prefill_tokens_per_sec"`
	DecodeTokensPerSec  float64 `json:"decode_tokens_per_sec"`

	// Round is the 1-based round number this request ran in (0 = unknown).
	Round int `json:"round"`

	// IndexInRound is the request's position within its round.
	IndexInRound int `json:"index_in_round"`

	// ActualConcurrency is the concurrency level in effect when this
	// request ran (may differ from the configured level in step runs).
	ActualConcurrency int `json:"actual_concurrency"`
}

// =============================================================================
// PROGRESS EVENTS
// =============================================================================

// ProgressStatus is the lifecycle state reported for one request.
type ProgressStatus string

const (
	ProgressRunning   ProgressStatus = "running"
	ProgressCompleted ProgressStatus = "completed"
	ProgressFailed    ProgressStatus = "failed"
)

// Terminal reports whether the status ends the request's lifecycle.
func (s ProgressStatus) Terminal() bool {
	return s == ProgressCompleted || s == ProgressFailed
}

// ProgressEvent is a per-request lifecycle signal. Events are delivered
// at least once; the same ID may appear repeatedly and consumers must
// deduplicate by ID.
type ProgressEvent struct {
	ID         string         `json:"id"`
	RunID      string         `json:"run_id"`
	Status     ProgressStatus `json:"status"`
	TotalTests int            `json:"total_tests"`
}

// =============================================================================
// TELEMETRY
// =============================================================================

// TelemetrySample is a periodic system-wide snapshot emitted by the
// engine. Timestamps increase monotonically and samples are never
// reissued, so consumers append without deduplication.
type TelemetrySample struct {
	Timestamp       time.Time     `json:"timestamp"`
	Active          int           `json:"active"`
	Completed       int           `json:"completed"`
	Total           int           `json:"total"`
	GeneratedTokens int           `json:"generated_tokens"`
	TokensPerSec    float64       `json:"tokens_per_sec"`
	AvgTTFT         time.Duration `json:"avg_ttft_ns"`
	P95TTFT         time.Duration `json:"p95_ttft_ns"`
	StepIndex       int           `json:"step_index"`
	StepTotal       int           `json:"step_total"`
}
