// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package aggregate

import (
	"sort"
	"time"

	"github.com/jeranaias/rigbench/internal/model"
)

// =============================================================================
// GROUPING
// =============================================================================

// groupKey returns the bucket key for one record, or false if the record
// cannot be keyed in this mode. Unkeyable records are skipped rather
// than aborting the whole aggregation.
func groupKey(rec model.ResultRecord, index int, mode model.RunMode, concurrencyHint int) (int, bool) {
	switch mode {
	case model.ModeConcurrencyStep:
		// Slice by the concurrency actually in effect; fall back to the
		// configured level for engines that do not stamp it.
		if rec.ActualConcurrency > 0 {
			return rec.ActualConcurrency, true
		}
		if concurrencyHint > 0 {
			return concurrencyHint, true
		}
		return 0, false
	case model.ModeInputStep:
		// The actual prompt size, not the configured target: upstream
		// truncation and tokenization can make the two diverge, and the
		// comparison must reflect what really ran.
		if rec.PromptTokens > 0 {
			return rec.PromptTokens, true
		}
		return 0, false
	default:
		if rec.Round > 0 {
			return rec.Round, true
		}
		// Fallback for sources that do not stamp round numbers.
		if concurrencyHint > 0 {
			return index/concurrencyHint + 1, true
		}
		return 0, false
	}
}

// groupConcurrency returns the concurrency level in effect for a bucket.
func groupConcurrency(key int, mode model.RunMode, first model.ResultRecord, concurrencyHint int) int {
	if mode == model.ModeConcurrencyStep {
		return key
	}
	if first.ActualConcurrency > 0 {
		return first.ActualConcurrency
	}
	return concurrencyHint
}

// =============================================================================
// ROUND AGGREGATION
// =============================================================================

// Rounds groups records by round or step key and computes one summary
// per group, sorted ascending by key.
//
// Only successful records participate in the rate and latency averages;
// failed records still count toward the total and failure counts. A
// group with no successes reports its counts with zero-valued rates.
//
// TotalOutputRate is estimated as the single-stream decode average
// multiplied by the group's concurrency. The engine does not measure a
// summed concurrent rate per group, so this is an accepted
// approximation, not a measured aggregate.
func Rounds(records []model.ResultRecord, mode model.RunMode, concurrencyHint int) []model.RoundSummary {
	type bucket struct {
		records []model.ResultRecord
		first   model.ResultRecord
	}

	buckets := make(map[int]*bucket)
	keys := make([]int, 0)

	for i, rec := range records {
		key, ok := groupKey(rec, i, mode, concurrencyHint)
		if !ok {
			continue
		}
		b, exists := buckets[key]
		if !exists {
			b = &bucket{first: rec}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.records = append(b.records, rec)
	}

	sort.Ints(keys)

	summaries := make([]model.RoundSummary, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		s := summarizeGroup(key, b.records)
		s.Concurrency = groupConcurrency(key, mode, b.first, concurrencyHint)
		s.TotalOutputRate = s.AvgDecodeRate * float64(s.Concurrency)
		summaries = append(summaries, s)
	}
	return summaries
}

// summarizeGroup computes the per-group counts and success-only averages.
func summarizeGroup(key int, records []model.ResultRecord) model.RoundSummary {
	s := model.RoundSummary{Key: key, TotalRequests: len(records)}

	var (
		promptTokens     int
		completionTokens int
		ttft             time.Duration
		decode           time.Duration
		latency          time.Duration
		prefillRate      float64
		decodeRate       float64
	)

	for _, rec := range records {
		if !rec.Success {
			s.FailedRequests++
			continue
		}
		s.SuccessfulRequests++
		promptTokens += rec.PromptTokens
		completionTokens += rec.CompletionTokens
		ttft += rec.TTFT
		decode += rec.Decode
		latency += rec.Latency
		prefillRate += rec.PrefillTokensPerSec
		decodeRate += rec.DecodeTokensPerSec
	}

	if s.SuccessfulRequests == 0 {
		return s
	}

	n := s.SuccessfulRequests
	s.AvgPromptTokens = float64(promptTokens) / float64(n)
	s.AvgCompletionTokens = float64(completionTokens) / float64(n)
	s.AvgTTFT = ttft / time.Duration(n)
	s.AvgDecode = decode / time.Duration(n)
	s.AvgLatency = latency / time.Duration(n)
	s.AvgPrefillRate = prefillRate / float64(n)
	s.AvgDecodeRate = decodeRate / float64(n)
	return s
}
