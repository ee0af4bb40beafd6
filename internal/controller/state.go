// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

// =============================================================================
// RUN STATE
// =============================================================================

// State is the controller's position in the run lifecycle.
type State string

const (
	// StateIdle indicates no run has been started yet.
	StateIdle State = "Idle"

	// StateStarting indicates StartRun has been issued but not acknowledged.
	StateStarting State = "Starting"

	// StatePolling indicates the tick loop is polling the engine feeds.
	StatePolling State = "Polling"

	// StateFinalizing indicates completion was detected and the
	// authoritative batch is being fetched.
	StateFinalizing State = "Finalizing"

	// StateAdvancing indicates the campaign is settling before the next
	// queued run starts.
	StateAdvancing State = "Advancing"

	// StateDone indicates the run (and any queue behind it) finished.
	StateDone State = "Done"

	// StateFailed indicates an unrecoverable start or finalization error.
	StateFailed State = "Failed"

	// StateStopped indicates the user canceled the run.
	StateStopped State = "Stopped"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Active reports whether a run is in flight. Start is only accepted
// while no run is active.
func (s State) Active() bool {
	switch s {
	case StateStarting, StatePolling, StateFinalizing, StateAdvancing:
		return true
	default:
		return false
	}
}

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateStopped
}

// isValidTransition checks if a lifecycle transition is valid.
func isValidTransition(from, to State) bool {
	// Allow setting the same state (idempotent)
	if from == to {
		return true
	}

	// Failure and user cancellation can interrupt any active state.
	if to == StateFailed || to == StateStopped {
		return from.Active()
	}

	switch from {
	case StateIdle, StateDone, StateFailed, StateStopped:
		// A new run starts from idle or any terminal state.
		return to == StateStarting
	case StateStarting:
		return to == StatePolling
	case StatePolling:
		return to == StateFinalizing
	case StateFinalizing:
		return to == StateAdvancing || to == StateDone
	case StateAdvancing:
		return to == StatePolling
	default:
		return false
	}
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// EventType identifies a lifecycle notification.
type EventType string

const (
	// EventRunStarted fires when a run (initial or queued) starts polling.
	EventRunStarted EventType = "run_started"

	// EventRunComplete fires when a run's batch has been finalized.
	EventRunComplete EventType = "run_complete"

	// EventRunFailed fires when a run fails to start or finalize.
	EventRunFailed EventType = "run_failed"

	// EventCampaignComplete fires when the queue is exhausted.
	EventCampaignComplete EventType = "campaign_complete"

	// EventStopped fires when the user cancels a run.
	EventStopped EventType = "stopped"
)

// Notification describes one lifecycle event.
type Notification struct {
	Type      EventType
	RunID     string
	Step      int
	StepTotal int
	Error     string
}
