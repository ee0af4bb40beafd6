// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/jeranaias/rigbench/internal/model"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the runner daemon client.
type ClientConfig struct {
	// BaseURL is the runner daemon base URL (default: http://127.0.0.1:9090)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6
	// resolution issues on Windows
	BaseURL string

	// Timeout for poll and control requests (default: 10s)
	Timeout time.Duration

	// MaxRetries for transient start failures (default: 3)
	MaxRetries int

	// RetryDelay between retries (default: 1s)
	RetryDelay time.Duration
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:    "http://127.0.0.1:9090",
		Timeout:    10 * time.Second,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the HTTP implementation of Engine against a local runner
// daemon. The daemon owns the request worker pool and timing; Client
// only speaks the six control and feed endpoints.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultClientConfig())
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:9090"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 1 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// =============================================================================
// CONTROL OPERATIONS
// =============================================================================

// StartRun submits a run configuration and returns the batch stub with
// the assigned run id. Transient connection failures are retried.
func (c *Client) StartRun(ctx context.Context, cfg model.RunConfiguration) (*model.RunBatch, error) {
	body, err := json.Marshal(cfg)
	if err != nil {
		return nil, &EngineError{Type: ErrTypeStart, Message: "failed to marshal run configuration", Cause: err}
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		var batch model.RunBatch
		err := c.postJSON(ctx, "/api/runs", bytes.NewReader(body), &batch)
		if err == nil {
			if batch.ID == "" {
				return nil, &EngineError{Type: ErrTypeInvalidResponse, Message: "daemon returned a run without an id"}
			}
			return &batch, nil
		}
		lastErr = err
		if !IsTransient(err) {
			break
		}
	}
	return nil, &EngineError{Type: ErrTypeStart, Message: "failed to start run", Cause: lastErr}
}

// StopRun requests cancellation of a run.
func (c *Client) StopRun(ctx context.Context, runID string) error {
	return c.postJSON(ctx, "/api/runs/"+runID+"/stop", nil, nil)
}

// =============================================================================
// FEED OPERATIONS
// =============================================================================

// PollProgress returns the current progress-event snapshot.
func (c *Client) PollProgress(ctx context.Context) ([]model.ProgressEvent, error) {
	var events []model.ProgressEvent
	if err := c.getJSON(ctx, "/api/feed/progress", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// PollResults returns result records new since the previous call.
func (c *Client) PollResults(ctx context.Context) ([]model.ResultRecord, error) {
	var records []model.ResultRecord
	if err := c.getJSON(ctx, "/api/feed/results", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// PollTelemetry returns telemetry samples new since the previous call.
func (c *Client) PollTelemetry(ctx context.Context) ([]model.TelemetrySample, error) {
	var samples []model.TelemetrySample
	if err := c.getJSON(ctx, "/api/feed/telemetry", &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// GetRunBatch fetches the authoritative batch for a finished run.
func (c *Client) GetRunBatch(ctx context.Context, runID string) (*model.RunBatch, error) {
	var batch model.RunBatch
	err := c.getJSON(ctx, "/api/runs/"+runID, &batch)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, &EngineError{Type: ErrTypeFinalize, Message: "failed to fetch run batch", Cause: err}
	}
	return &batch, nil
}

// =============================================================================
// HTTP HELPERS
// =============================================================================

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return &EngineError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body *bytes.Reader, out any) error {
	var reader io.Reader
	if body != nil {
		reader = body
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, reader)
	if err != nil {
		return &EngineError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &EngineError{Type: ErrTypePoll, Message: "request timed out", Cause: err}
		}
		return &EngineError{Type: ErrTypeConnection, Message: "daemon unreachable", Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &EngineError{Type: ErrTypeInvalidResponse, Message: "not found: " + req.URL.Path, Cause: ErrRunNotFound}
	case resp.StatusCode >= 500:
		return &EngineError{Type: ErrTypePoll, Message: "daemon error: " + resp.Status}
	case resp.StatusCode != http.StatusOK:
		return &EngineError{Type: ErrTypeInvalidResponse, Message: "unexpected status: " + resp.Status}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &EngineError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}
