// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigbench/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func okRecord(id string, round int) model.ResultRecord {
	return model.ResultRecord{
		ID:                  id,
		Success:             true,
		PromptTokens:        128,
		CompletionTokens:    64,
		TotalTokens:         192,
		TTFT:                100 * time.Millisecond,
		Decode:              900 * time.Millisecond,
		Latency:             time.Second,
		PrefillTokensPerSec: 1280,
		DecodeTokensPerSec:  71.1,
		Round:               round,
	}
}

func failedRecord(id string, round int) model.ResultRecord {
	return model.ResultRecord{ID: id, Success: false, Error: "timeout", Round: round}
}

// =============================================================================
// NORMAL MODE
// =============================================================================

// Two rounds of three concurrent requests, all successful: exactly two
// summaries of three successes each.
func TestRounds_NormalMode(t *testing.T) {
	var records []model.ResultRecord
	for round := 1; round <= 2; round++ {
		for i := 0; i < 3; i++ {
			records = append(records, okRecord(fmt.Sprintf("r%d-%d", round, i), round))
		}
	}

	summaries := Rounds(records, model.ModeNormal, 3)

	require.Len(t, summaries, 2)
	for i, s := range summaries {
		assert.Equal(t, i+1, s.Key)
		assert.Equal(t, 3, s.TotalRequests)
		assert.Equal(t, 3, s.SuccessfulRequests)
		assert.Equal(t, 0, s.FailedRequests)
	}
}

// Records without round numbers fall back to floor(index/concurrency)+1.
func TestRounds_NormalModeIndexFallback(t *testing.T) {
	var records []model.ResultRecord
	for i := 0; i < 6; i++ {
		records = append(records, okRecord(fmt.Sprintf("r%d", i), 0))
	}

	summaries := Rounds(records, model.ModeNormal, 3)

	require.Len(t, summaries, 2)
	assert.Equal(t, 1, summaries[0].Key)
	assert.Equal(t, 2, summaries[1].Key)
	assert.Equal(t, 3, summaries[0].TotalRequests)
}

func TestRounds_FailedRecordsCountButDoNotAverage(t *testing.T) {
	records := []model.ResultRecord{
		okRecord("a", 1),
		okRecord("b", 1),
		failedRecord("c", 1),
	}

	summaries := Rounds(records, model.ModeNormal, 3)

	require.Len(t, summaries, 1)
	s := summaries[0]
	assert.Equal(t, 3, s.TotalRequests)
	assert.Equal(t, 2, s.SuccessfulRequests)
	assert.Equal(t, 1, s.FailedRequests)
	// The failed record's zero latency must not drag the average down.
	assert.Equal(t, time.Second, s.AvgLatency)
	assert.InDelta(t, 71.1, s.AvgDecodeRate, 0.001)
}

func TestRounds_AllFailedGroupReportsZeroRates(t *testing.T) {
	records := []model.ResultRecord{
		failedRecord("a", 1),
		failedRecord("b", 1),
	}

	summaries := Rounds(records, model.ModeNormal, 2)

	require.Len(t, summaries, 1)
	s := summaries[0]
	assert.Equal(t, 2, s.TotalRequests)
	assert.Equal(t, 2, s.FailedRequests)
	assert.Zero(t, s.AvgDecodeRate)
	assert.Zero(t, s.TotalOutputRate)
	assert.Zero(t, s.AvgLatency)
}

// =============================================================================
// STEP MODES
// =============================================================================

func TestRounds_ConcurrencyStepGroupsAndSorts(t *testing.T) {
	var records []model.ResultRecord
	for _, conc := range []int{4, 1, 2, 4, 1, 2} {
		rec := okRecord(fmt.Sprintf("c%d-%d", conc, len(records)), 0)
		rec.ActualConcurrency = conc
		records = append(records, rec)
	}

	summaries := Rounds(records, model.ModeConcurrencyStep, 0)

	require.Len(t, summaries, 3)
	assert.Equal(t, []int{summaries[0].Key, summaries[1].Key, summaries[2].Key}, []int{1, 2, 4})
	for _, s := range summaries {
		assert.Equal(t, s.Key, s.Concurrency)
		assert.Equal(t, 2, s.TotalRequests)
	}
}

func TestRounds_ConcurrencyStepHintFallback(t *testing.T) {
	rec := okRecord("a", 0) // no actual concurrency stamped
	summaries := Rounds([]model.ResultRecord{rec}, model.ModeConcurrencyStep, 8)

	require.Len(t, summaries, 1)
	assert.Equal(t, 8, summaries[0].Key)
	assert.Equal(t, 8, summaries[0].Concurrency)
}

// Records missing both an actual concurrency and a hint cannot be keyed
// and are skipped without aborting the rest of the set.
func TestRounds_UnkeyableRecordsSkipped(t *testing.T) {
	good := okRecord("a", 0)
	good.ActualConcurrency = 2
	bad := okRecord("b", 0)

	summaries := Rounds([]model.ResultRecord{bad, good}, model.ModeConcurrencyStep, 0)

	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].Key)
	assert.Equal(t, 1, summaries[0].TotalRequests)
}

// Grouping uses the actual prompt token count, not the configured
// target: two records with the same actual size land together.
func TestRounds_InputStepUsesActualPromptTokens(t *testing.T) {
	a := okRecord("a", 0)
	a.PromptTokens = 250
	b := okRecord("b", 0)
	b.PromptTokens = 250
	c := okRecord("c", 0)
	c.PromptTokens = 500

	summaries := Rounds([]model.ResultRecord{a, b, c}, model.ModeInputStep, 4)

	require.Len(t, summaries, 2)
	assert.Equal(t, 250, summaries[0].Key)
	assert.Equal(t, 2, summaries[0].TotalRequests)
	assert.Equal(t, 500, summaries[1].Key)
}

// =============================================================================
// DETERMINISM AND THROUGHPUT
// =============================================================================

func TestRounds_Deterministic(t *testing.T) {
	var records []model.ResultRecord
	for i := 0; i < 12; i++ {
		rec := okRecord(fmt.Sprintf("r%d", i), i%3+1)
		rec.DecodeTokensPerSec = float64(40 + i)
		records = append(records, rec)
	}

	first := Rounds(records, model.ModeNormal, 4)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Rounds(records, model.ModeNormal, 4))
	}
}

func TestRounds_TotalOutputRateApproximation(t *testing.T) {
	rec := okRecord("a", 1)
	rec.DecodeTokensPerSec = 50
	rec.ActualConcurrency = 4

	summaries := Rounds([]model.ResultRecord{rec}, model.ModeNormal, 4)

	require.Len(t, summaries, 1)
	assert.Equal(t, 4, summaries[0].Concurrency)
	assert.InDelta(t, 200, summaries[0].TotalOutputRate, 0.001)
}

func TestRounds_EmptyInput(t *testing.T) {
	assert.Empty(t, Rounds(nil, model.ModeNormal, 4))
}
