// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigbench/internal/config"
	"github.com/jeranaias/rigbench/internal/engine"
	"github.com/jeranaias/rigbench/internal/util"
)

// =============================================================================
// MONITOR COMMAND
// =============================================================================

// monitorCmd tails a run started elsewhere (another rigbench process,
// or the daemon's own API) without taking ownership of it.
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Tail the progress and telemetry feeds of the active run",
	Long: `Attaches to the runner daemon and prints progress events, result
records, and telemetry samples as they arrive. The run itself is not
controlled; Ctrl-C detaches without stopping it.

Edits to the config file (e.g. poll.tick_interval_ms) are picked up
live.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		eng := engine.NewClientWithConfig(&engine.ClientConfig{
			BaseURL: cfg.Engine.BaseURL,
			Timeout: time.Duration(cfg.Engine.TimeoutSecs) * time.Second,
		})

		// Poll interval follows the config file while attached.
		intervalCh := make(chan time.Duration, 1)
		watcher, err := config.NewWatcher(500*time.Millisecond, func(c *config.Config) {
			select {
			case intervalCh <- time.Duration(c.Poll.TickIntervalMs) * time.Millisecond:
			default:
			}
		})
		if err == nil {
			if werr := watcher.Watch(); werr == nil {
				defer watcher.Close()
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		interval := time.Duration(cfg.Poll.TickIntervalMs) * time.Millisecond
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fmt.Printf("Monitoring %s (Ctrl-C to detach)\n", cfg.Engine.BaseURL)
		for {
			select {
			case <-ctx.Done():
				fmt.Println("\nDetached.")
				return nil
			case d := <-intervalCh:
				if d > 0 && d != interval {
					interval = d
					ticker.Reset(interval)
					fmt.Printf("-- poll interval now %s --\n", interval)
				}
			case <-ticker.C:
			}

			printFeeds(ctx, eng)
		}
	},
}

// printFeeds polls the three feeds once and prints what arrived. Feed
// errors are printed and tolerated; the daemon may simply be idle.
func printFeeds(ctx context.Context, eng engine.Engine) {
	events, err := eng.PollProgress(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "progress: %v\n", err)
	}
	for _, ev := range events {
		fmt.Printf("[progress] %s %s (%d expected)\n", ev.ID, ev.Status, ev.TotalTests)
	}

	records, err := eng.PollResults(ctx)
	if err == nil {
		for _, r := range records {
			status := "ok"
			if !r.Success {
				status = "FAIL"
			}
			fmt.Printf("[result] %s %s round=%d ttft=%s decode=%s\n",
				r.ID, status, r.Round,
				util.FormatDuration(r.TTFT),
				util.FormatTokensPerSec(r.DecodeTokensPerSec))
		}
	}

	samples, err := eng.PollTelemetry(ctx)
	if err == nil {
		for _, s := range samples {
			fmt.Printf("[telemetry] active=%d done=%d/%d rate=%s avg_ttft=%s\n",
				s.Active, s.Completed, s.Total,
				util.FormatTokensPerSec(s.TokensPerSec),
				util.FormatDuration(s.AvgTTFT))
		}
	}
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
