// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plan provides campaign plan files: named sequences of
// benchmark runs loaded from YAML.
package plan

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/rigbench/internal/model"
)

// =============================================================================
// PLAN STRUCTURES
// =============================================================================

// StepSpec mirrors model.StepRange for plan files.
type StepSpec struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
	Step  int `yaml:"step"`
}

// RunSpec is one run entry in a plan file. Zero-valued fields inherit
// from the configured run defaults.
type RunSpec struct {
	Name         string   `yaml:"name,omitempty"`
	Model        string   `yaml:"model,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	APIKey       string   `yaml:"api_key,omitempty"`
	PromptTokens int      `yaml:"prompt_tokens,omitempty"`
	MaxTokens    int      `yaml:"max_tokens,omitempty"`
	Rounds       int      `yaml:"rounds,omitempty"`
	Concurrency  int      `yaml:"concurrency,omitempty"`
	Temperature  float64  `yaml:"temperature,omitempty"`
	TopP         float64  `yaml:"top_p,omitempty"`
	TimeoutSecs  int      `yaml:"timeout_secs,omitempty"`
	Mode         string   `yaml:"mode,omitempty"`
	Steps        StepSpec `yaml:"steps,omitempty"`
}

// Plan is a named campaign: an ordered list of benchmark runs executed
// back to back against the same engine.
type Plan struct {
	ID        string    `yaml:"id,omitempty"`
	Name      string    `yaml:"name,omitempty"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
	Runs      []RunSpec `yaml:"runs"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads a plan file. Plans without an id get one assigned, so a
// campaign can be traced through logs and history.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML plan document.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if len(p.Runs) == 0 {
		return nil, fmt.Errorf("plan has no runs")
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	return &p, nil
}

// =============================================================================
// MATERIALIZATION
// =============================================================================

// apply overlays the spec's set fields onto a run configuration.
func (s RunSpec) apply(cfg model.RunConfiguration) model.RunConfiguration {
	if s.Model != "" {
		cfg.Model = s.Model
	}
	if s.Endpoint != "" {
		cfg.Endpoint = s.Endpoint
	}
	if s.APIKey != "" {
		cfg.APIKey = s.APIKey
	}
	if s.PromptTokens > 0 {
		cfg.PromptTokens = s.PromptTokens
	}
	if s.MaxTokens > 0 {
		cfg.MaxTokens = s.MaxTokens
	}
	if s.Rounds > 0 {
		cfg.Rounds = s.Rounds
	}
	if s.Concurrency > 0 {
		cfg.Concurrency = s.Concurrency
	}
	if s.Temperature > 0 {
		cfg.Temperature = s.Temperature
	}
	if s.TopP > 0 {
		cfg.TopP = s.TopP
	}
	if s.TimeoutSecs > 0 {
		cfg.Timeout = time.Duration(s.TimeoutSecs) * time.Second
	}
	if s.Mode != "" {
		cfg.Mode = model.RunMode(s.Mode)
		cfg.Steps = model.StepRange{Start: s.Steps.Start, End: s.Steps.End, Step: s.Steps.Step}
	}
	return cfg
}

// Configurations materializes the plan into a flat run queue. Each spec
// is overlaid on the defaults, validated, and step-mode entries are
// expanded into one configuration per step.
func (p *Plan) Configurations(defaults model.RunConfiguration) ([]model.RunConfiguration, error) {
	var cfgs []model.RunConfiguration

	for i, spec := range p.Runs {
		cfg := spec.apply(defaults)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("plan run %d: %w", i+1, err)
		}

		expanded, err := cfg.ExpandSteps()
		if err != nil {
			return nil, fmt.Errorf("plan run %d: %w", i+1, err)
		}
		cfgs = append(cfgs, expanded...)
	}

	return cfgs, nil
}
