// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package plan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigbench/internal/model"
)

func defaults() model.RunConfiguration {
	cfg := model.DefaultRunConfiguration()
	cfg.Model = "qwen2.5:7b"
	return cfg
}

func TestPlan_Parse(t *testing.T) {
	p, err := Parse([]byte(`
name: nightly sweep
runs:
  - model: qwen2.5:7b
    rounds: 3
  - model: llama3.1:8b
    concurrency: 8
`))
	require.NoError(t, err)

	assert.Equal(t, "nightly sweep", p.Name)
	assert.NotEmpty(t, p.ID, "plans get an id assigned")
	assert.False(t, p.CreatedAt.IsZero())
	require.Len(t, p.Runs, 2)
	assert.Equal(t, "llama3.1:8b", p.Runs[1].Model)
}

func TestPlan_ParseKeepsExplicitID(t *testing.T) {
	p, err := Parse([]byte("id: sweep-7\nruns:\n  - model: m\n"))
	require.NoError(t, err)
	assert.Equal(t, "sweep-7", p.ID)
}

func TestPlan_ParseEmpty(t *testing.T) {
	_, err := Parse([]byte("name: hollow\n"))
	assert.ErrorContains(t, err, "no runs")
}

func TestPlan_ParseMalformed(t *testing.T) {
	_, err := Parse([]byte("runs: [}"))
	assert.Error(t, err)
}

func TestPlan_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runs:\n  - model: phi4:14b\n"), 0644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "phi4:14b", p.Runs[0].Model)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPlan_ConfigurationsInheritDefaults(t *testing.T) {
	p, err := Parse([]byte(`
runs:
  - rounds: 5
  - model: llama3.1:8b
    timeout_secs: 30
`))
	require.NoError(t, err)

	def := defaults()
	cfgs, err := p.Configurations(def)
	require.NoError(t, err)
	require.Len(t, cfgs, 2)

	// Unset fields inherit; set fields override.
	assert.Equal(t, def.Model, cfgs[0].Model)
	assert.Equal(t, 5, cfgs[0].Rounds)
	assert.Equal(t, def.Rounds, cfgs[1].Rounds)
	assert.Equal(t, "llama3.1:8b", cfgs[1].Model)
	assert.Equal(t, 30*time.Second, cfgs[1].Timeout)
}

func TestPlan_ConfigurationsExpandSteps(t *testing.T) {
	p, err := Parse([]byte(`
runs:
  - mode: concurrency_step
    steps: {start: 2, end: 8, step: 2}
  - rounds: 1
`))
	require.NoError(t, err)

	cfgs, err := p.Configurations(defaults())
	require.NoError(t, err)

	// 4 step configs then the trailing plain run.
	require.Len(t, cfgs, 5)
	assert.Equal(t, 2, cfgs[0].Concurrency)
	assert.Equal(t, 8, cfgs[3].Concurrency)
	assert.Equal(t, model.ModeConcurrencyStep, cfgs[0].Mode)
	assert.Equal(t, model.ModeNormal, cfgs[4].Mode)
}

func TestPlan_ConfigurationsRejectInvalid(t *testing.T) {
	p, err := Parse([]byte("runs:\n  - rounds: -1\n"))
	require.NoError(t, err)

	_, err = p.Configurations(defaults())
	require.Error(t, err)
	assert.ErrorContains(t, err, "plan run 1")
}
