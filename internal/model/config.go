// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// =============================================================================
// RUN MODE
// =============================================================================

// RunMode selects how a benchmark run is shaped and how its results are
// grouped afterwards.
type RunMode string

const (
	// ModeNormal runs a fixed number of rounds at a fixed concurrency.
	ModeNormal RunMode = "normal"

	// ModeConcurrencyStep sweeps the concurrency level across a step range.
	ModeConcurrencyStep RunMode = "concurrency_step"

	// ModeInputStep sweeps the prompt size across a step range.
	ModeInputStep RunMode = "input_step"
)

// String returns the string representation of the run mode.
func (m RunMode) String() string {
	return string(m)
}

// Valid reports whether the mode is one of the known variants.
func (m RunMode) Valid() bool {
	switch m {
	case ModeNormal, ModeConcurrencyStep, ModeInputStep:
		return true
	default:
		return false
	}
}

// IsStep reports whether the mode produces a multi-run campaign.
func (m RunMode) IsStep() bool {
	return m == ModeConcurrencyStep || m == ModeInputStep
}

// StepRange describes the swept parameter for step modes.
type StepRange struct {
	Start int `json:"start" toml:"start"`
	End   int `json:"end" toml:"end"`
	Step  int `json:"step" toml:"step"`
}

// Values expands the range into its individual step values (inclusive).
func (r StepRange) Values() []int {
	if r.Step <= 0 || r.End < r.Start {
		return nil
	}
	values := make([]int, 0, (r.End-r.Start)/r.Step+1)
	for v := r.Start; v <= r.End; v += r.Step {
		values = append(values, v)
	}
	return values
}

// =============================================================================
// RUN CONFIGURATION
// =============================================================================

// RunConfiguration holds the immutable parameters for one benchmark run.
// It is created and validated before a run starts and never mutated while
// the run is active.
type RunConfiguration struct {
	// Endpoint is the base URL of the target completion API.
	Endpoint string `json:"endpoint" toml:"endpoint"`

	// APIKey is the bearer token sent with each request (may be empty).
	APIKey string `json:"api_key,omitempty" toml:"api_key"`

	// Model is the model identifier requested from the endpoint.
	Model string `json:"model" toml:"model"`

	// PromptTokens is the target prompt size in tokens.
	PromptTokens int `json:"prompt_tokens" toml:"prompt_tokens"`

	// MaxTokens caps the completion length per request.
	MaxTokens int `json:"max_tokens" toml:"max_tokens"`

	// Temperature and TopP are the sampling parameters forwarded verbatim.
	Temperature float64 `json:"temperature" toml:"temperature"`
	TopP        float64 `json:"top_p" toml:"top_p"`

	// Rounds is the number of request batches issued back to back.
	Rounds int `json:"rounds" toml:"rounds"`

	// Concurrency is the number of requests issued in parallel per round.
	Concurrency int `json:"concurrency" toml:"concurrency"`

	// Timeout bounds each individual request.
	Timeout time.Duration `json:"timeout" toml:"timeout"`

	// ExtraHeaders is an optional JSON object of additional HTTP headers.
	ExtraHeaders string `json:"extra_headers,omitempty" toml:"extra_headers"`

	// Mode selects normal single-run or a stepped campaign.
	Mode RunMode `json:"mode" toml:"mode"`

	// Steps is the swept range for step modes; ignored for ModeNormal.
	Steps StepRange `json:"steps" toml:"steps"`
}

// DefaultRunConfiguration returns a configuration with workable defaults
// for a local OpenAI-compatible endpoint.
func DefaultRunConfiguration() RunConfiguration {
	return RunConfiguration{
		Endpoint:     "http://127.0.0.1:8000/v1",
		PromptTokens: 128,
		MaxTokens:    256,
		Temperature:  0.7,
		TopP:         0.9,
		Rounds:       3,
		Concurrency:  4,
		Timeout:      120 * time.Second,
		Mode:         ModeNormal,
	}
}

// TotalTests returns the expected number of requests for the run.
func (c RunConfiguration) TotalTests() int {
	return c.Rounds * c.Concurrency
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors aggregates all validation failures for a configuration.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "invalid run configuration: " + strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns a ValidateErrors listing
// every problem found, or nil if the configuration is usable.
func (c RunConfiguration) Validate() error {
	var errs ValidateErrors

	if strings.TrimSpace(c.Endpoint) == "" {
		errs = append(errs, ValidationError{"endpoint", "must not be empty"})
	} else if u, err := url.Parse(c.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{"endpoint", "must be an absolute URL"})
	}

	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, ValidationError{"model", "must not be empty"})
	}

	if c.PromptTokens <= 0 {
		errs = append(errs, ValidationError{"prompt_tokens", "must be positive"})
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, ValidationError{"max_tokens", "must be positive"})
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, ValidationError{"temperature", "must be in [0, 2]"})
	}
	if c.TopP <= 0 || c.TopP > 1 {
		errs = append(errs, ValidationError{"top_p", "must be in (0, 1]"})
	}
	if c.Rounds <= 0 {
		errs = append(errs, ValidationError{"rounds", "must be positive"})
	}
	if c.Concurrency <= 0 {
		errs = append(errs, ValidationError{"concurrency", "must be positive"})
	}
	if c.Timeout <= 0 {
		errs = append(errs, ValidationError{"timeout", "must be positive"})
	}

	if !c.Mode.Valid() {
		errs = append(errs, ValidationError{"mode", fmt.Sprintf("unknown mode %q", string(c.Mode))})
	}

	if c.Mode.IsStep() {
		if c.Steps.Step <= 0 {
			errs = append(errs, ValidationError{"steps.step", "must be positive"})
		}
		if c.Steps.Start <= 0 {
			errs = append(errs, ValidationError{"steps.start", "must be positive"})
		}
		if c.Steps.End < c.Steps.Start {
			errs = append(errs, ValidationError{"steps.end", "must be >= steps.start"})
		}
	}

	if c.ExtraHeaders != "" {
		var headers map[string]string
		if err := json.Unmarshal([]byte(c.ExtraHeaders), &headers); err != nil {
			errs = append(errs, ValidationError{"extra_headers", "must be a JSON object of strings"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// STEP EXPANSION
// =============================================================================

// ExpandSteps expands a step-mode configuration into one configuration per
// step value, in ascending step order. Each expanded configuration keeps
// the campaign mode (so results aggregate by step key) with the swept
// parameter fixed to its step value. A ModeNormal configuration expands
// to itself.
func (c RunConfiguration) ExpandSteps() ([]RunConfiguration, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if !c.Mode.IsStep() {
		return []RunConfiguration{c}, nil
	}

	values := c.Steps.Values()
	if len(values) == 0 {
		return nil, ValidateErrors{{Field: "steps", Message: "range expands to no values"}}
	}

	configs := make([]RunConfiguration, 0, len(values))
	for _, v := range values {
		step := c
		switch c.Mode {
		case ModeConcurrencyStep:
			step.Concurrency = v
		case ModeInputStep:
			step.PromptTokens = v
		}
		configs = append(configs, step)
	}
	return configs, nil
}
