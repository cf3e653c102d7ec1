// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package openai adapts OpenAI-compatible chat-completion endpoints to the
// text-generation collaborator contract. Groq exposes the same wire protocol,
// so one adapter serves both via a BaseURL override.
package openai

import (
	"context"
	"errors"
	"fmt"

	gopenai "github.com/sashabaranov/go-openai"

	"github.com/Naziz2/hanibal-ai-chat/internal/collab"
)

// ErrEmptyResponse indicates the provider returned no choices.
var ErrEmptyResponse = errors.New("provider returned no choices")

// Client implements collab.TextGenerator over an OpenAI-compatible API.
type Client struct {
	api *gopenai.Client
}

// New creates a client for api.openai.com.
func New(apiKey string) *Client {
	return &Client{api: gopenai.NewClient(apiKey)}
}

// NewWithBaseURL creates a client for an OpenAI-compatible endpoint such as
// Groq (https://api.groq.com/openai/v1).
func NewWithBaseURL(apiKey, baseURL string) *Client {
	cfg := gopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: gopenai.NewClientWithConfig(cfg)}
}

// Generate produces one assistant reply for the given message history.
func (c *Client) Generate(ctx context.Context, messages []collab.ChatMessage, modelID string) (string, error) {
	req := gopenai.ChatCompletionRequest{
		Model:    modelID,
		Messages: make([]gopenai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, gopenai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
