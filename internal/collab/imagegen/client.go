// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package imagegen implements the image-generation collaborator over two
// distinct HTTP backends. The selected model id decides the routing: ids
// signalling the alternate style go to the alternate backend, everything else
// to the default one. Both backends reply with JSON whose image-URL field name
// varies, so decoding runs through the ordered extraction strategies in
// package collab.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Naziz2/hanibal-ai-chat/internal/collab"
)

// Configuration constants.
const (
	// DefaultBaseURL serves the standard style backend.
	DefaultBaseURL = "https://image.pollinations.ai"

	// AlternateBaseURL serves the alternate style backend.
	AlternateBaseURL = "https://api.airforce/v1/imagine"

	// requestTimeout bounds one generation request.
	requestTimeout = 120 * time.Second

	// maxResponseSize limits response bodies to prevent memory exhaustion.
	maxResponseSize = 4 * 1024 * 1024
)

// urlFieldPaths is the ordered list of field names backends have been observed
// to use for the result image URL.
var urlFieldPaths = []string{"image_url", "url", "output", "data.0.url", "images.0"}

// Client implements collab.ImageGenerator.
type Client struct {
	defaultURL   string
	alternateURL string
	httpClient   *http.Client
}

// New creates a client over the production backends.
func New() *Client {
	return NewWithBackends(DefaultBaseURL, AlternateBaseURL)
}

// NewWithBackends creates a client over explicit backend URLs (tests).
func NewWithBackends(defaultURL, alternateURL string) *Client {
	return &Client{
		defaultURL:   defaultURL,
		alternateURL: alternateURL,
		httpClient:   &http.Client{Timeout: requestTimeout},
	}
}

// generateRequest is the request body both backends accept.
type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Generate produces one image URL for the prompt.
func (c *Client) Generate(ctx context.Context, prompt, modelID string) (string, error) {
	base := c.defaultURL
	if AlternateStyle(modelID) {
		base = c.alternateURL
	}

	body, err := json.Marshal(generateRequest{
		Prompt: prompt,
		Model:  modelID,
		Width:  1024,
		Height: 1024,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image generation request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image backend returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	url, err := collab.ExtractString(obj, urlFieldPaths...)
	if err != nil {
		return "", fmt.Errorf("image backend response: %w", err)
	}
	return url, nil
}

// AlternateStyle reports whether a model id routes to the alternate backend.
func AlternateStyle(modelID string) bool {
	return strings.Contains(strings.ToLower(modelID), "turbo")
}
