// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package aggregate

import (
	"github.com/jeranaias/rigbench/internal/model"
)

// =============================================================================
// OVERALL SUMMARY
// =============================================================================

// statAccum accumulates min/avg/max for one metric.
type statAccum struct {
	min   float64
	max   float64
	sum   float64
	count int
}

func (a *statAccum) add(v float64) {
	if a.count == 0 || v < a.min {
		a.min = v
	}
	if a.count == 0 || v > a.max {
		a.max = v
	}
	a.sum += v
	a.count++
}

func (a *statAccum) stats() model.MetricStats {
	if a.count == 0 {
		return model.MetricStats{}
	}
	return model.MetricStats{
		Min: a.min,
		Avg: a.sum / float64(a.count),
		Max: a.max,
	}
}

// Summarize computes the overall run summary: request counts, error
// rate, token totals, and min/avg/max for every latency and rate metric.
// Latency metrics are reported in seconds. Failed records contribute to
// counts and the error rate only.
func Summarize(records []model.ResultRecord) model.TestSummary {
	s := model.TestSummary{TotalRequests: len(records)}

	var ttft, decode, latency, prefillRate, decodeRate statAccum

	for _, rec := range records {
		s.TotalPromptTokens += rec.PromptTokens
		s.TotalCompletionTokens += rec.CompletionTokens

		if !rec.Success {
			s.FailedRequests++
			continue
		}
		s.SuccessfulRequests++

		ttft.add(rec.TTFT.Seconds())
		decode.add(rec.Decode.Seconds())
		latency.add(rec.Latency.Seconds())
		prefillRate.add(rec.PrefillTokensPerSec)
		decodeRate.add(rec.DecodeTokensPerSec)
	}

	if s.TotalRequests > 0 {
		s.ErrorRate = float64(s.FailedRequests) / float64(s.TotalRequests)
	}

	s.TTFTSeconds = ttft.stats()
	s.DecodeSeconds = decode.stats()
	s.LatencySeconds = latency.stats()
	s.PrefillRate = prefillRate.stats()
	s.DecodeRate = decodeRate.stats()
	return s
}
