// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package judge0 implements the code-execution collaborator over a
// Judge0-compatible sandbox API.
package judge0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Naziz2/hanibal-ai-chat/internal/model"
)

// Configuration constants.
const (
	// DefaultBaseURL is the hosted Judge0 CE endpoint.
	DefaultBaseURL = "https://judge0-ce.p.rapidapi.com"

	// requestTimeout bounds one synchronous submission round trip. The
	// sandbox enforces its own CPU/wall-clock budget per submission; this
	// only guards the transport.
	requestTimeout = 60 * time.Second

	// maxResponseSize limits response bodies to prevent memory exhaustion.
	maxResponseSize = 8 * 1024 * 1024
)

// Error variables for common sandbox failures.
var (
	// ErrNotConfigured indicates the sandbox API key is not set.
	ErrNotConfigured = errors.New("sandbox API key not configured")

	// ErrQuotaExceeded indicates the sandbox rejected the request for quota.
	ErrQuotaExceeded = errors.New("sandbox quota exceeded")
)

// Client implements collab.CodeExecutor.
type Client struct {
	baseURL    string
	apiKey     string
	cpuLimit   float64
	wallLimit  float64
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the sandbox endpoint (tests, self-hosted instances).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithLimits sets the CPU and wall-clock budgets in seconds passed to the
// sandbox with each submission.
func WithLimits(cpu, wall float64) Option {
	return func(c *Client) { c.cpuLimit, c.wallLimit = cpu, wall }
}

// New creates a sandbox client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		cpuLimit:   5,
		wallLimit:  10,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// submission is the sandbox request body.
type submission struct {
	SourceCode    string  `json:"source_code"`
	LanguageID    int     `json:"language_id"`
	Stdin         string  `json:"stdin,omitempty"`
	CPUTimeLimit  float64 `json:"cpu_time_limit"`
	WallTimeLimit float64 `json:"wall_time_limit"`
}

// Execute submits source code and waits for the sandbox verdict.
func (c *Client) Execute(ctx context.Context, source string, languageID int, stdin string) (model.ExecutionResult, error) {
	if c.apiKey == "" {
		return model.ExecutionResult{}, ErrNotConfigured
	}

	body, err := json.Marshal(submission{
		SourceCode:    source,
		LanguageID:    languageID,
		Stdin:         stdin,
		CPUTimeLimit:  c.cpuLimit,
		WallTimeLimit: c.wallLimit,
	})
	if err != nil {
		return model.ExecutionResult{}, fmt.Errorf("encode submission: %w", err)
	}

	url := c.baseURL + "/submissions?base64_encoded=false&wait=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return model.ExecutionResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.ExecutionResult{}, fmt.Errorf("sandbox request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return model.ExecutionResult{}, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return model.ExecutionResult{}, ErrQuotaExceeded
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return model.ExecutionResult{}, fmt.Errorf("sandbox returned HTTP %d: %s", resp.StatusCode, string(data))
	}

	var result model.ExecutionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return model.ExecutionResult{}, fmt.Errorf("decode result: %w", err)
	}
	return result, nil
}
