// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jeranaias/rigbench/internal/model"
	"github.com/jeranaias/rigbench/internal/util"
)

// =============================================================================
// RESULT OUTPUT
// =============================================================================

// printBatch renders one finished run: the header line, the per-round
// table, and the aggregate summary.
func printBatch(batch *model.RunBatch) {
	fmt.Printf("\n=== Run %s | %s | mode=%s | %s ===\n",
		batch.ID, batch.Config.Model, batch.Config.Mode,
		util.FormatDuration(batch.Duration()))

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROUND\tCONC\tOK\tFAIL\tTTFT\tLATENCY\tPREFILL\tDECODE\tTOTAL OUT")
	for _, r := range batch.Rounds {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Key, r.Concurrency, r.SuccessfulRequests, r.FailedRequests,
			util.FormatDuration(r.AvgTTFT),
			util.FormatDuration(r.AvgLatency),
			util.FormatTokensPerSec(r.AvgPrefillRate),
			util.FormatTokensPerSec(r.AvgDecodeRate),
			util.FormatTokensPerSec(r.TotalOutputRate))
	}
	w.Flush()

	s := batch.Summary
	fmt.Printf("requests=%d failed=%d error_rate=%.1f%% tokens_in=%d tokens_out=%d\n",
		s.TotalRequests, s.FailedRequests, s.ErrorRate*100,
		s.TotalPromptTokens, s.TotalCompletionTokens)
}
