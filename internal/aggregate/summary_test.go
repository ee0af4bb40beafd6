// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/rigbench/internal/model"
)

// =============================================================================
// SUMMARY TESTS
// =============================================================================

func TestSummarize_MinAvgMax(t *testing.T) {
	records := []model.ResultRecord{
		{Success: true, Latency: 1 * time.Second, TTFT: 100 * time.Millisecond, DecodeTokensPerSec: 40, PromptTokens: 100, CompletionTokens: 50},
		{Success: true, Latency: 2 * time.Second, TTFT: 200 * time.Millisecond, DecodeTokensPerSec: 60, PromptTokens: 100, CompletionTokens: 50},
		{Success: true, Latency: 3 * time.Second, TTFT: 300 * time.Millisecond, DecodeTokensPerSec: 80, PromptTokens: 100, CompletionTokens: 50},
	}

	s := Summarize(records)

	assert.Equal(t, 3, s.TotalRequests)
	assert.Equal(t, 3, s.SuccessfulRequests)
	assert.Zero(t, s.ErrorRate)

	assert.InDelta(t, 1.0, s.LatencySeconds.Min, 0.001)
	assert.InDelta(t, 2.0, s.LatencySeconds.Avg, 0.001)
	assert.InDelta(t, 3.0, s.LatencySeconds.Max, 0.001)

	assert.InDelta(t, 0.1, s.TTFTSeconds.Min, 0.001)
	assert.InDelta(t, 0.3, s.TTFTSeconds.Max, 0.001)

	assert.InDelta(t, 40, s.DecodeRate.Min, 0.001)
	assert.InDelta(t, 60, s.DecodeRate.Avg, 0.001)
	assert.InDelta(t, 80, s.DecodeRate.Max, 0.001)

	assert.Equal(t, 300, s.TotalPromptTokens)
	assert.Equal(t, 150, s.TotalCompletionTokens)
}

func TestSummarize_ErrorRate(t *testing.T) {
	records := []model.ResultRecord{
		{Success: true, Latency: time.Second, DecodeTokensPerSec: 50},
		{Success: false, Error: "timeout"},
		{Success: false, Error: "refused"},
		{Success: true, Latency: time.Second, DecodeTokensPerSec: 50},
	}

	s := Summarize(records)

	assert.Equal(t, 4, s.TotalRequests)
	assert.Equal(t, 2, s.FailedRequests)
	assert.InDelta(t, 0.5, s.ErrorRate, 0.001)
	// Failures are excluded from the min: the measured minimum stays 1s.
	assert.InDelta(t, 1.0, s.LatencySeconds.Min, 0.001)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Zero(t, s.TotalRequests)
	assert.Zero(t, s.ErrorRate)
	assert.Zero(t, s.LatencySeconds)
	assert.Zero(t, s.DecodeRate)
}
