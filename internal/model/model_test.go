// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestRunConfiguration_ValidateDefaults(t *testing.T) {
	cfg := DefaultRunConfiguration()
	cfg.Model = "qwen2.5:7b"

	require.NoError(t, cfg.Validate())
}

func TestRunConfiguration_ValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RunConfiguration)
		field  string
	}{
		{
			name:   "missing model",
			mutate: func(c *RunConfiguration) { c.Model = "" },
			field:  "model",
		},
		{
			name:   "empty endpoint",
			mutate: func(c *RunConfiguration) { c.Endpoint = "" },
			field:  "endpoint",
		},
		{
			name:   "relative endpoint",
			mutate: func(c *RunConfiguration) { c.Endpoint = "localhost:8000" },
			field:  "endpoint",
		},
		{
			name:   "zero rounds",
			mutate: func(c *RunConfiguration) { c.Rounds = 0 },
			field:  "rounds",
		},
		{
			name:   "negative concurrency",
			mutate: func(c *RunConfiguration) { c.Concurrency = -1 },
			field:  "concurrency",
		},
		{
			name:   "temperature out of range",
			mutate: func(c *RunConfiguration) { c.Temperature = 3.5 },
			field:  "temperature",
		},
		{
			name:   "unknown mode",
			mutate: func(c *RunConfiguration) { c.Mode = "turbo" },
			field:  "mode",
		},
		{
			name:   "bad extra headers",
			mutate: func(c *RunConfiguration) { c.ExtraHeaders = "{not json" },
			field:  "extra_headers",
		},
		{
			name: "inverted step range",
			mutate: func(c *RunConfiguration) {
				c.Mode = ModeConcurrencyStep
				c.Steps = StepRange{Start: 8, End: 2, Step: 2}
			},
			field: "steps.end",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRunConfiguration()
			cfg.Model = "qwen2.5:7b"
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var errs ValidateErrors
			require.True(t, errors.As(err, &errs))

			found := false
			for _, ve := range errs {
				if ve.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected a validation error for field %q, got: %v", tt.field, err)
		})
	}
}

func TestRunConfiguration_ValidateCollectsAllErrors(t *testing.T) {
	cfg := RunConfiguration{} // everything wrong at once

	err := cfg.Validate()
	require.Error(t, err)

	var errs ValidateErrors
	require.True(t, errors.As(err, &errs))
	assert.GreaterOrEqual(t, len(errs), 5)
}

// =============================================================================
// STEP EXPANSION TESTS
// =============================================================================

func TestStepRange_Values(t *testing.T) {
	tests := []struct {
		name  string
		r     StepRange
		wants []int
	}{
		{"simple", StepRange{1, 8, 1}, []int{1, 2, 3, 4, 5, 6, 7, 8}},
		{"stride", StepRange{2, 8, 2}, []int{2, 4, 6, 8}},
		{"uneven tail", StepRange{1, 6, 4}, []int{1, 5}},
		{"single value", StepRange{4, 4, 2}, []int{4}},
		{"zero step", StepRange{1, 8, 0}, nil},
		{"inverted", StepRange{8, 1, 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wants, tt.r.Values())
		})
	}
}

func TestRunConfiguration_ExpandSteps(t *testing.T) {
	cfg := DefaultRunConfiguration()
	cfg.Model = "qwen2.5:7b"
	cfg.Mode = ModeConcurrencyStep
	cfg.Steps = StepRange{Start: 1, End: 4, Step: 1}

	configs, err := cfg.ExpandSteps()
	require.NoError(t, err)
	require.Len(t, configs, 4)

	for i, c := range configs {
		assert.Equal(t, i+1, c.Concurrency)
		// The campaign mode is retained so results group by step key.
		assert.Equal(t, ModeConcurrencyStep, c.Mode)
		assert.Equal(t, cfg.Model, c.Model)
	}
}

func TestRunConfiguration_ExpandStepsInputMode(t *testing.T) {
	cfg := DefaultRunConfiguration()
	cfg.Model = "qwen2.5:7b"
	cfg.Mode = ModeInputStep
	cfg.Steps = StepRange{Start: 128, End: 512, Step: 128}

	configs, err := cfg.ExpandSteps()
	require.NoError(t, err)
	require.Len(t, configs, 4)

	assert.Equal(t, 128, configs[0].PromptTokens)
	assert.Equal(t, 512, configs[3].PromptTokens)
}

func TestRunConfiguration_ExpandStepsNormalMode(t *testing.T) {
	cfg := DefaultRunConfiguration()
	cfg.Model = "qwen2.5:7b"

	configs, err := cfg.ExpandSteps()
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, cfg, configs[0])
}

// =============================================================================
// BATCH TESTS
// =============================================================================

func TestRunBatch_CloneIsolation(t *testing.T) {
	batch := &RunBatch{
		ID: "run-1",
		Records: []ResultRecord{
			{ID: "r1", Success: true},
			{ID: "r2", Success: false, Error: "timeout"},
		},
	}

	clone := batch.Clone()
	clone.Records[0].Success = false
	clone.Records = append(clone.Records, ResultRecord{ID: "r3"})

	assert.True(t, batch.Records[0].Success)
	assert.Len(t, batch.Records, 2)
	assert.Equal(t, 1, batch.FailedCount())
}
