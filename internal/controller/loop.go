// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jeranaias/rigbench/internal/aggregate"
	"github.com/jeranaias/rigbench/internal/model"
)

// =============================================================================
// TICK LOOP
// =============================================================================

// run drives the polling loop for one campaign. It exits when the
// context is canceled, the campaign completes, or the run fails.
func (c *Controller) run(ctx context.Context, epoch uint64) {
	ticker := time.NewTicker(c.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// If ticks pile up behind a slow engine, skip instead of
		// issuing overlapping poll bursts.
		if !c.pollLimiter.Allow() {
			continue
		}

		complete := c.tick(ctx, epoch)
		if !complete {
			continue
		}

		if !c.finalize(ctx, epoch) {
			return
		}
		if !c.advance(ctx, epoch) {
			return
		}
	}
}

// tick performs the three independent engine reads for one poll cycle
// and applies them atomically with respect to Stop/Start. Returns true
// when run completion was detected.
func (c *Controller) tick(ctx context.Context, epoch uint64) bool {
	var (
		events  []model.ProgressEvent
		records []model.ResultRecord
		samples []model.TelemetrySample

		evErr, recErr, telErr error
	)

	// The three reads are independent; issue them concurrently but wait
	// for all before updating state so the tick's snapshot stays
	// mutually consistent.
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		events, evErr = c.engine.PollProgress(ctx)
	}()
	go func() {
		defer wg.Done()
		records, recErr = c.engine.PollResults(ctx)
	}()
	go func() {
		defer wg.Done()
		samples, telErr = c.engine.PollTelemetry(ctx)
	}()
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Stale tick: Stop or a new Start advanced the epoch while the
	// polls were in flight. Discard everything.
	if c.epoch != epoch || c.state != StatePolling {
		return false
	}

	// A failed read is a transient hiccup: skip that feed's update for
	// this tick and let the next tick retry implicitly.
	if evErr != nil {
		log.Printf("POLL_ERROR | feed=progress run=%s error=%v", c.runID, evErr)
	} else {
		c.progress.Apply(eventsForRun(events, c.runID))
	}
	if recErr != nil {
		log.Printf("POLL_ERROR | feed=results run=%s error=%v", c.runID, recErr)
	} else {
		c.results.Merge(records)
	}
	if telErr != nil {
		log.Printf("POLL_ERROR | feed=telemetry run=%s error=%v", c.runID, telErr)
	} else {
		c.telemetry.Merge(samples)
	}

	// Complete requires the dedup count to reach the total AND the
	// latest tick to carry no running heartbeats; the count alone can
	// reach the total one tick before the last in-flight request's
	// terminal event supersedes its heartbeat.
	if evErr != nil || !c.progress.Complete() {
		return false
	}

	c.setState(StateFinalizing)
	return true
}

// eventsForRun drops progress events tagged with a different run id.
// The progress feed may be a snapshot of everything since process
// start, so during a campaign the later steps see the earlier runs'
// terminal events again; counting those would complete a step before
// any of its own requests finish. Untagged events are kept.
func eventsForRun(events []model.ProgressEvent, runID string) []model.ProgressEvent {
	kept := make([]model.ProgressEvent, 0, len(events))
	for _, ev := range events {
		if ev.RunID == "" || ev.RunID == runID {
			kept = append(kept, ev)
		}
	}
	return kept
}

// =============================================================================
// FINALIZATION
// =============================================================================

// finalize fetches the authoritative batch for the completed run and
// appends it to history. Returns false if the run (and campaign) ends
// here with a failure.
func (c *Controller) finalize(ctx context.Context, epoch uint64) bool {
	c.mu.RLock()
	runID := c.runID
	cfg := c.active
	step := c.stepIndex
	stepTotal := c.stepTotal
	c.mu.RUnlock()

	// The canonical batch supersedes the locally buffered partial
	// results.
	batch, err := c.engine.GetRunBatch(ctx, runID)
	if err != nil {
		// Advancing past a failed finalization would produce a
		// misleading comparison set; abort the queue but keep whatever
		// history is already recorded.
		c.failRun(epoch, fmt.Errorf("finalization failed: %w", err))
		return false
	}

	if len(batch.Rounds) == 0 {
		batch.Rounds = aggregate.Rounds(batch.Records, cfg.Mode, cfg.Concurrency)
	}
	if batch.Summary.TotalRequests == 0 {
		batch.Summary = aggregate.Summarize(batch.Records)
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return false
	}
	if c.progress.AnyFailed() || batch.FailedCount() > 0 {
		c.anyFailed = true
	}
	c.history.Append(batch)
	c.mu.Unlock()

	if c.opts.Store != nil {
		if err := c.opts.Store.Save(ctx, batch); err != nil {
			// Persistence is best-effort; the in-memory history holds
			// the batch either way.
			log.Printf("STORE_ERROR | run=%s error=%v", runID, err)
		}
	}

	log.Printf("RUN_COMPLETE | run=%s requests=%d failed=%d duration=%s",
		runID, len(batch.Records), batch.FailedCount(), batch.Duration())
	c.notify(Notification{Type: EventRunComplete, RunID: runID, Step: step, StepTotal: stepTotal})
	return true
}

// advance pops the next queued configuration after the settling delay,
// or finishes the campaign. Returns true if the loop should continue
// polling a new run.
func (c *Controller) advance(ctx context.Context, epoch uint64) bool {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return false
	}

	if len(c.queue) == 0 {
		c.setState(StateDone)
		c.mu.Unlock()

		log.Printf("CAMPAIGN_COMPLETE | runs=%d", c.history.CampaignLen())
		c.notify(Notification{Type: EventCampaignComplete})
		return false
	}

	c.setState(StateAdvancing)
	next := c.queue[0]
	c.queue = c.queue[1:]
	c.stepIndex++
	step := c.stepIndex
	stepTotal := c.stepTotal
	c.mu.Unlock()

	// Give the engine a moment to release the previous run's resources.
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.opts.SettleDelay):
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return false
	}
	c.active = next
	c.results.Clear()
	c.telemetry.Clear()
	c.progress.Reset(next.TotalTests())
	c.mu.Unlock()

	batch, err := c.engine.StartRun(ctx, next)
	if err != nil {
		// No skipping to later steps: a partial campaign would compare
		// unlike against unlike.
		c.failRun(epoch, fmt.Errorf("start rejected at step %d/%d: %w", step, stepTotal, err))
		return false
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return false
	}
	c.runID = batch.ID
	c.setState(StatePolling)
	c.mu.Unlock()

	log.Printf("RUN_STARTED | run=%s model=%s total=%d step=%d/%d",
		batch.ID, next.Model, next.TotalTests(), step, stepTotal)
	c.notify(Notification{Type: EventRunStarted, RunID: batch.ID, Step: step, StepTotal: stepTotal})
	return true
}
