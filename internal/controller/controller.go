// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/rigbench/internal/engine"
	"github.com/jeranaias/rigbench/internal/history"
	"github.com/jeranaias/rigbench/internal/model"
	"github.com/jeranaias/rigbench/internal/stream"
)

// ErrAlreadyRunning is returned by Start while a run is active.
var ErrAlreadyRunning = errors.New("a run is already active")

// =============================================================================
// OPTIONS
// =============================================================================

// Options tunes the controller's polling and buffering behavior.
type Options struct {
	// TickInterval is how often the engine feeds are polled.
	TickInterval time.Duration

	// SettleDelay is the pause between a finalized run and the next
	// queued run, letting the engine release its resources.
	SettleDelay time.Duration

	// ResultBufferCap bounds the live result buffer (tuned for chart
	// rendering, not for the full run).
	ResultBufferCap int

	// TelemetryBufferCap bounds the telemetry buffer (tuned to a fixed
	// time window at the engine's sampling interval).
	TelemetryBufferCap int

	// HistoryCapacity bounds the global run history.
	HistoryCapacity int

	// Store, when set, persists every finalized batch.
	Store *history.Store
}

// DefaultOptions returns the standard controller tuning.
func DefaultOptions() Options {
	return Options{
		TickInterval:       500 * time.Millisecond,
		SettleDelay:        1 * time.Second,
		ResultBufferCap:    1000,
		TelemetryBufferCap: 600,
		HistoryCapacity:    history.DefaultGlobalCapacity,
	}
}

func (o *Options) fillDefaults() {
	def := DefaultOptions()
	if o.TickInterval <= 0 {
		o.TickInterval = def.TickInterval
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = def.SettleDelay
	}
	if o.ResultBufferCap <= 0 {
		o.ResultBufferCap = def.ResultBufferCap
	}
	if o.TelemetryBufferCap <= 0 {
		o.TelemetryBufferCap = def.TelemetryBufferCap
	}
	if o.HistoryCapacity <= 0 {
		o.HistoryCapacity = def.HistoryCapacity
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the benchmark run state machine. It owns the stream
// buffers, the progress tracker, the run queue, and the history lists;
// the execution engine is injected and never constructed here.
type Controller struct {
	engine  engine.Engine
	opts    Options
	history *history.History

	results   *stream.Buffer[model.ResultRecord]
	telemetry *stream.Buffer[model.TelemetrySample]
	progress  *stream.ProgressTracker

	// pollLimiter caps how fast feed polls can be issued even if ticks
	// pile up behind a slow engine.
	pollLimiter *rate.Limiter

	// epoch advances on every Start and Stop. Ticks capture it before
	// polling and discard their responses if it moved.
	epoch uint64

	state      State
	runID      string
	active     model.RunConfiguration
	queue      []model.RunConfiguration
	stepIndex  int
	stepTotal  int
	anyFailed  bool
	runErr     error
	cancel     context.CancelFunc

	notifyChan chan Notification

	mu sync.RWMutex
}

// New creates a controller driving the given engine.
func New(eng engine.Engine, opts Options) *Controller {
	opts.fillDefaults()

	return &Controller{
		engine:      eng,
		opts:        opts,
		history:     history.New(opts.HistoryCapacity),
		results:     stream.NewBuffer[model.ResultRecord](opts.ResultBufferCap),
		telemetry:   stream.NewBuffer[model.TelemetrySample](opts.TelemetryBufferCap),
		progress:    stream.NewProgressTracker(0),
		pollLimiter: rate.NewLimiter(rate.Every(opts.TickInterval/2), 1),
		state:       StateIdle,
		notifyChan:  make(chan Notification, 100),
	}
}

// =============================================================================
// PUBLIC OPERATIONS
// =============================================================================

// Start begins a run, or a campaign when more than one configuration is
// given: the first runs immediately and the rest queue behind it. It
// returns ErrAlreadyRunning while a run is active, a ValidateErrors for
// a malformed configuration, and the engine's error when the first
// StartRun is rejected (which aborts the whole campaign).
func (c *Controller) Start(cfgs ...model.RunConfiguration) error {
	if len(cfgs) == 0 {
		return errors.New("no run configuration given")
	}
	for _, cfg := range cfgs {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	c.mu.Lock()
	if c.state.Active() {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}

	c.epoch++
	epoch := c.epoch
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	first := cfgs[0]
	c.active = first
	c.queue = append([]model.RunConfiguration(nil), cfgs[1:]...)
	c.stepIndex = 1
	c.stepTotal = len(cfgs)
	c.anyFailed = false
	c.runErr = nil
	c.runID = ""
	c.setState(StateStarting)

	c.results.Clear()
	c.telemetry.Clear()
	c.progress.Reset(first.TotalTests())
	c.history.BeginCampaign()
	c.mu.Unlock()

	batch, err := c.engine.StartRun(ctx, first)
	if err != nil {
		cancel()
		c.failRun(epoch, fmt.Errorf("start rejected: %w", err))
		return err
	}

	c.mu.Lock()
	if c.epoch != epoch {
		// Stop raced the start; the engine run is abandoned best-effort.
		c.mu.Unlock()
		cancel()
		return nil
	}
	c.runID = batch.ID
	c.setState(StatePolling)
	c.mu.Unlock()

	log.Printf("RUN_STARTED | run=%s model=%s total=%d step=%d/%d",
		batch.ID, first.Model, first.TotalTests(), 1, len(cfgs))
	c.notify(Notification{Type: EventRunStarted, RunID: batch.ID, Step: 1, StepTotal: len(cfgs)})

	go c.run(ctx, epoch)
	return nil
}

// StartCampaign expands a step-mode configuration and starts the
// resulting queue.
func (c *Controller) StartCampaign(cfg model.RunConfiguration) error {
	cfgs, err := cfg.ExpandSteps()
	if err != nil {
		return err
	}
	return c.Start(cfgs...)
}

// Stop cancels the active run. The queue is dropped, buffers are
// cleared, and any tick still in flight discards its responses. Calling
// Stop with no active run is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.state.Active() {
		c.mu.Unlock()
		return
	}

	c.epoch++
	if c.cancel != nil {
		c.cancel()
	}
	runID := c.runID
	c.setState(StateStopped)
	c.queue = nil
	c.results.Clear()
	c.telemetry.Clear()
	c.mu.Unlock()

	if runID != "" {
		// Best-effort cancellation; completed requests are not rolled back.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.engine.StopRun(ctx, runID); err != nil {
			log.Printf("STOP_ERROR | run=%s error=%v", runID, err)
		}
	}

	log.Printf("RUN_STOPPED | run=%s", runID)
	c.notify(Notification{Type: EventStopped, RunID: runID})
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// RunID returns the active (or last) engine run id.
func (c *Controller) RunID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runID
}

// Err returns the error that moved the controller to StateFailed.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runErr
}

// Results returns the buffered live result records, oldest first.
func (c *Controller) Results() []model.ResultRecord {
	return c.results.Items()
}

// Telemetry returns the buffered telemetry window, oldest first.
func (c *Controller) Telemetry() []model.TelemetrySample {
	return c.telemetry.Items()
}

// Progress returns the deduplicated completed count and the expected
// total for the active run.
func (c *Controller) Progress() (completed, total int) {
	return c.progress.CompletedCount(), c.progress.Total()
}

// History returns the controller's run history.
func (c *Controller) History() *history.History {
	return c.history
}

// Notifications returns the lifecycle event channel. Events are dropped
// rather than blocking the controller when the consumer lags.
func (c *Controller) Notifications() <-chan Notification {
	return c.notifyChan
}

// StatusText derives the user-facing status line from the current
// state; nothing here is stored redundantly.
func (c *Controller) StatusText() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	anyFailed := c.anyFailed || c.progress.AnyFailed()

	var text string
	switch {
	case c.state.Active():
		if anyFailed {
			text = "in progress (some failed)"
		} else {
			text = "in progress"
		}
	case c.state == StateDone:
		if anyFailed {
			text = "completed with failures"
		} else {
			text = "completed"
		}
	case c.state == StateFailed:
		text = "failed"
	case c.state == StateStopped:
		text = "stopped"
	default:
		text = "idle"
	}

	if c.stepTotal > 1 && (c.state.Active() || c.state == StateDone) {
		text += fmt.Sprintf(" (step %d/%d)", c.stepIndex, c.stepTotal)
	}
	return text
}

// setState advances the lifecycle. Callers hold mu. An invalid
// transition is a bug in the tick loop, not a recoverable condition;
// it is logged and applied so the controller cannot wedge.
func (c *Controller) setState(to State) {
	if !isValidTransition(c.state, to) {
		log.Printf("WARNING | invalid state transition %s -> %s", c.state, to)
	}
	c.state = to
}

// notify sends a notification without ever blocking the control path.
func (c *Controller) notify(n Notification) {
	select {
	case c.notifyChan <- n:
	default:
		log.Printf("WARNING | notification channel full, dropped %s for run %s", n.Type, n.RunID)
	}
}

// failRun moves the controller to StateFailed, drops the queue, and
// surfaces err. History already recorded stays recorded.
func (c *Controller) failRun(epoch uint64, err error) {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.setState(StateFailed)
	c.runErr = err
	c.queue = nil
	runID := c.runID
	c.mu.Unlock()

	log.Printf("RUN_FAILED | run=%s error=%v", runID, err)
	c.notify(Notification{Type: EventRunFailed, RunID: runID, Error: err.Error()})
}
