// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Classification(t *testing.T) {
	for _, s := range []State{StateStarting, StatePolling, StateFinalizing, StateAdvancing} {
		assert.True(t, s.Active(), "%s should be active", s)
		assert.False(t, s.Terminal(), "%s should not be terminal", s)
	}
	for _, s := range []State{StateDone, StateFailed, StateStopped} {
		assert.False(t, s.Active(), "%s should not be active", s)
		assert.True(t, s.Terminal(), "%s should be terminal", s)
	}
	assert.False(t, StateIdle.Active())
	assert.False(t, StateIdle.Terminal())
}

func TestState_Transitions(t *testing.T) {
	valid := []struct{ from, to State }{
		{StateIdle, StateStarting},
		{StateDone, StateStarting},
		{StateFailed, StateStarting},
		{StateStopped, StateStarting},
		{StateStarting, StatePolling},
		{StatePolling, StateFinalizing},
		{StateFinalizing, StateAdvancing},
		{StateFinalizing, StateDone},
		{StateAdvancing, StatePolling},
		{StatePolling, StateStopped},
		{StateStarting, StateFailed},
		{StatePolling, StatePolling},
	}
	for _, tt := range valid {
		assert.True(t, isValidTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}

	invalid := []struct{ from, to State }{
		{StateIdle, StatePolling},
		{StateIdle, StateStopped},
		{StateDone, StateFailed},
		{StatePolling, StateDone},
		{StateFinalizing, StatePolling},
		{StateStopped, StateStopped + "x"},
	}
	for _, tt := range invalid {
		assert.False(t, isValidTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
