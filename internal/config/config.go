// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for rigbench.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.rigbench/config.toml
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/rigbench/internal/model"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete rigbench configuration.
type Config struct {
	// General settings
	Version      string `toml:"version" json:"version"`
	DefaultModel string `toml:"default_model" json:"default_model"`

	// Engine holds the benchmark engine connection settings.
	Engine EngineConfig `toml:"engine" json:"engine"`

	// Run holds the default run parameters.
	Run RunConfig `toml:"run" json:"run"`

	// Poll holds the polling and buffering tuning.
	Poll PollConfig `toml:"poll" json:"poll"`

	// History holds persistence settings for finished runs.
	History HistoryConfig `toml:"history" json:"history"`
}

// EngineConfig contains benchmark engine connection settings.
type EngineConfig struct {
	// BaseURL is the engine's HTTP API address.
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds each engine request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is how many times a transient start failure is retried.
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RetryDelayMs is the pause between start retries.
	RetryDelayMs int `toml:"retry_delay_ms" json:"retry_delay_ms"`
}

// RunConfig contains the default benchmark run parameters. Anything
// set on the command line or in a campaign plan overrides these.
type RunConfig struct {
	// Endpoint is the inference server under test.
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// APIKey authenticates against the endpoint (empty for local servers).
	APIKey string `toml:"api_key" json:"api_key"`
	// PromptTokens is the target prompt size.
	PromptTokens int `toml:"prompt_tokens" json:"prompt_tokens"`
	// MaxTokens caps the generated output per request.
	MaxTokens int `toml:"max_tokens" json:"max_tokens"`
	// Rounds is the number of benchmark rounds per run.
	Rounds int `toml:"rounds" json:"rounds"`
	// Concurrency is the number of parallel requests per round.
	Concurrency int `toml:"concurrency" json:"concurrency"`
	// Temperature is the sampling temperature.
	Temperature float64 `toml:"temperature" json:"temperature"`
	// TopP is the nucleus sampling threshold.
	TopP float64 `toml:"top_p" json:"top_p"`
	// TimeoutSecs bounds each individual benchmark request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// PollConfig contains polling and stream buffer tuning.
type PollConfig struct {
	// TickIntervalMs is the feed polling period.
	TickIntervalMs int `toml:"tick_interval_ms" json:"tick_interval_ms"`
	// SettleDelayMs is the pause between queued campaign runs.
	SettleDelayMs int `toml:"settle_delay_ms" json:"settle_delay_ms"`
	// ResultBufferCap bounds the live result buffer.
	ResultBufferCap int `toml:"result_buffer_cap" json:"result_buffer_cap"`
	// TelemetryBufferCap bounds the telemetry sample buffer.
	TelemetryBufferCap int `toml:"telemetry_buffer_cap" json:"telemetry_buffer_cap"`
}

// HistoryConfig contains run history persistence settings.
type HistoryConfig struct {
	// Capacity bounds the in-memory global history.
	Capacity int `toml:"capacity" json:"capacity"`
	// DatabasePath is the SQLite file for persisted runs
	// (empty = ~/.rigbench/history.db).
	DatabasePath string `toml:"database_path" json:"database_path"`
	// ExportDir is where JSON exports land (empty = current directory).
	ExportDir string `toml:"export_dir" json:"export_dir"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version:      "1.0.0",
		DefaultModel: "qwen2.5:7b",

		Engine: EngineConfig{
			BaseURL:      "http://127.0.0.1:9090",
			TimeoutSecs:  10,
			MaxRetries:   3,
			RetryDelayMs: 1000,
		},

		Run: RunConfig{
			Endpoint:     "http://127.0.0.1:11434/v1/chat/completions",
			APIKey:       "",
			PromptTokens: 512,
			MaxTokens:    256,
			Rounds:       3,
			Concurrency:  4,
			Temperature:  0.7,
			TopP:         0.9,
			TimeoutSecs:  120,
		},

		Poll: PollConfig{
			TickIntervalMs:     500,
			SettleDelayMs:      1000,
			ResultBufferCap:    1000,
			TelemetryBufferCap: 600,
		},

		History: HistoryConfig{
			Capacity:     50,
			DatabasePath: "",
			ExportDir:    "",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the rigbench configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rigbench"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON fallback config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DatabasePath resolves the history database location.
func (c *Config) DatabasePath() (string, error) {
	if c.History.DatabasePath != "" {
		return c.History.DatabasePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s). Tries TOML first,
// then JSON, and falls back to defaults. Environment overrides are
// applied last.
func Load() (*Config, error) {
	cfg := Default()

	if path, err := ConfigPath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadFile(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	if path, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadJSON(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	return finishLoad(cfg)
}

func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile decodes a TOML config file over cfg.
func LoadFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON config file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. JSON is detected by extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	if strings.HasSuffix(path, ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadFile(cfg, path)
	}
	if err != nil {
		return nil, err
	}
	return finishLoad(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(cfg, path)
}

// SaveFile saves the configuration to a TOML file. Files are created
// 0600 because the run defaults can carry an API key.
func SaveFile(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# rigbench configuration file")
	fmt.Fprintln(file, "# Generated by rigbench - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies RIGBENCH_* environment variables over the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RIGBENCH_ENGINE_URL"); v != "" {
		c.Engine.BaseURL = v
	}
	if v := os.Getenv("RIGBENCH_ENDPOINT"); v != "" {
		c.Run.Endpoint = v
	}
	if v := os.Getenv("RIGBENCH_API_KEY"); v != "" {
		c.Run.APIKey = v
	}
	if v := os.Getenv("RIGBENCH_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("RIGBENCH_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Run.Rounds = n
		}
	}
	if v := os.Getenv("RIGBENCH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Run.Concurrency = n
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs model.ValidateErrors

	if u, err := url.Parse(c.Engine.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, model.ValidationError{
			Field: "engine.base_url", Message: "must be a valid http(s) URL",
		})
	}
	if c.Engine.TimeoutSecs <= 0 {
		errs = append(errs, model.ValidationError{
			Field: "engine.timeout_secs", Message: "must be positive",
		})
	}
	if c.Engine.MaxRetries < 0 {
		errs = append(errs, model.ValidationError{
			Field: "engine.max_retries", Message: "must not be negative",
		})
	}
	if c.Poll.TickIntervalMs <= 0 {
		errs = append(errs, model.ValidationError{
			Field: "poll.tick_interval_ms", Message: "must be positive",
		})
	}
	if c.Poll.SettleDelayMs < 0 {
		errs = append(errs, model.ValidationError{
			Field: "poll.settle_delay_ms", Message: "must not be negative",
		})
	}
	if c.Poll.ResultBufferCap <= 0 {
		errs = append(errs, model.ValidationError{
			Field: "poll.result_buffer_cap", Message: "must be positive",
		})
	}
	if c.Poll.TelemetryBufferCap <= 0 {
		errs = append(errs, model.ValidationError{
			Field: "poll.telemetry_buffer_cap", Message: "must be positive",
		})
	}
	if c.History.Capacity <= 0 {
		errs = append(errs, model.ValidationError{
			Field: "history.capacity", Message: "must be positive",
		})
	}

	// The run section only has to validate as actual run parameters;
	// model.RunConfiguration owns those rules.
	run := c.RunConfiguration()
	var runErrs model.ValidateErrors
	if err := run.Validate(); errors.As(err, &runErrs) {
		for _, e := range runErrs {
			if e.Field == "model" && strings.TrimSpace(c.DefaultModel) == "" {
				// An empty default model is fine; runs name one explicitly.
				continue
			}
			errs = append(errs, model.ValidationError{
				Field: "run." + e.Field, Message: e.Message,
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// RunConfiguration builds a run configuration from the config defaults.
func (c *Config) RunConfiguration() model.RunConfiguration {
	run := model.DefaultRunConfiguration()
	run.Endpoint = c.Run.Endpoint
	run.APIKey = c.Run.APIKey
	run.Model = c.DefaultModel
	run.PromptTokens = c.Run.PromptTokens
	run.MaxTokens = c.Run.MaxTokens
	run.Rounds = c.Run.Rounds
	run.Concurrency = c.Run.Concurrency
	run.Temperature = c.Run.Temperature
	run.TopP = c.Run.TopP
	run.Timeout = time.Duration(c.Run.TimeoutSecs) * time.Second
	return run
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// =============================================================================
// GLOBAL CONFIG ACCESS
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration, loading it on first use.
// Load failures fall back to defaults so callers always get a usable
// config.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the global configuration.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}

// ReloadGlobal reloads the global configuration from disk.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}
