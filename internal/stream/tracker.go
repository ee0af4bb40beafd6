// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"sync"

	"github.com/jeranaias/rigbench/internal/model"
)

// =============================================================================
// PROGRESS TRACKER
// =============================================================================

// ProgressTracker derives overall completion state from a possibly
// redundant stream of progress events. The engine delivers events at
// least once, so the same request id may report completion repeatedly;
// the tracker counts distinct ids only.
type ProgressTracker struct {
	completed map[string]struct{}
	total     int

	anyFailed bool

	// hasRunningUpdates is set when the most recent Apply saw a running
	// heartbeat. Completion must not be declared while it is set, even
	// if the distinct count already matches the total: the final
	// terminal event for an in-flight request can trail its heartbeat
	// by a tick.
	hasRunningUpdates bool

	mu sync.RWMutex
}

// NewProgressTracker creates a tracker expecting total completions.
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		completed: make(map[string]struct{}),
		total:     total,
	}
}

// Reset clears all tracked state and sets a new expected total. Must be
// called at the start of every run, including each queued campaign step.
func (p *ProgressTracker) Reset(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.completed = make(map[string]struct{})
	p.total = total
	p.anyFailed = false
	p.hasRunningUpdates = false
}

// Apply folds one tick's worth of progress events into the tracker.
// Terminal events insert their id into the completed set (idempotent);
// running events only raise the per-tick heartbeat flag. The flag is
// recomputed on every call, so a tick with no running heartbeats clears
// it.
func (p *ProgressTracker) Apply(events []model.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	running := false
	for _, ev := range events {
		switch {
		case ev.Status == model.ProgressRunning:
			running = true
		case ev.Status.Terminal():
			p.completed[ev.ID] = struct{}{}
			if ev.Status == model.ProgressFailed {
				p.anyFailed = true
			}
		}
	}
	p.hasRunningUpdates = running
}

// CompletedCount returns the number of distinct requests that reached a
// terminal state, clamped to the expected total. The clamp guards
// against a backend that emits more distinct ids than it declared.
func (p *ProgressTracker) CompletedCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n := len(p.completed)
	if p.total > 0 && n > p.total {
		return p.total
	}
	return n
}

// Total returns the expected number of completions.
func (p *ProgressTracker) Total() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.total
}

// AnyFailed reports whether any request has failed this run.
func (p *ProgressTracker) AnyFailed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.anyFailed
}

// HasRunningUpdates reports whether the latest Apply saw a running
// heartbeat.
func (p *ProgressTracker) HasRunningUpdates() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hasRunningUpdates
}

// Complete reports whether the run is finished: every expected request
// reached a terminal state and the latest tick carried no running
// heartbeats.
func (p *ProgressTracker) Complete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.total <= 0 {
		return false
	}
	n := len(p.completed)
	if n > p.total {
		n = p.total
	}
	return n >= p.total && !p.hasRunningUpdates
}
