// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"

	"github.com/jeranaias/rigbench/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes engine errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeStart
	ErrTypePoll
	ErrTypeFinalize
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// EngineError represents an error from the execution engine.
type EngineError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *EngineError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrRunNotFound = errors.New("run not found")
	ErrNotRunning  = &EngineError{Type: ErrTypeConnection, Message: "runner daemon is not reachable"}
)

// IsTransient reports whether an error from a poll call should be
// treated as a transient hiccup: the tick is skipped and polling
// continues, rather than failing the run.
func IsTransient(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Type == ErrTypePoll || ee.Type == ErrTypeConnection
	}
	return false
}

// =============================================================================
// ENGINE CONTRACT
// =============================================================================

// Engine is the execution boundary the run controller drives. All
// operations are blocking and honor their context; implementations may
// be concurrent internally.
type Engine interface {
	// StartRun begins executing a run and returns a batch stub carrying
	// at least the assigned run id. It must not block until completion.
	StartRun(ctx context.Context, cfg model.RunConfiguration) (*model.RunBatch, error)

	// StopRun requests best-effort cancellation of the identified run.
	// Already-completed requests are not rolled back.
	StopRun(ctx context.Context, runID string) error

	// PollProgress returns the progress-event snapshot for the current
	// run. Delivery is at least once; callers deduplicate by id.
	PollProgress(ctx context.Context) ([]model.ProgressEvent, error)

	// PollResults returns result records new since the previous call.
	PollResults(ctx context.Context) ([]model.ResultRecord, error)

	// PollTelemetry returns telemetry samples new since the previous
	// call, ordered by timestamp.
	PollTelemetry(ctx context.Context) ([]model.TelemetrySample, error)

	// GetRunBatch returns the authoritative, fully aggregated batch for
	// a finished run, or ErrRunNotFound.
	GetRunBatch(ctx context.Context, runID string) (*model.RunBatch, error)
}
