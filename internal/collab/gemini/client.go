// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini adapts the Google Gemini API to the text-generation and
// file-analysis collaborator contracts.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Naziz2/hanibal-ai-chat/internal/collab"
	"github.com/Naziz2/hanibal-ai-chat/internal/util"
)

// analysisModel is the model used for file analysis regardless of the chat
// selection; flash is fast and multimodal.
const analysisModel = "gemini-1.5-flash"

// analysisPrompt asks for the structured report the transcript renders.
const analysisPrompt = "Analyze this file. Summarize its content, purpose, and any notable structure. Be concise."

// rawTextBudget caps the characters of a text file inlined into an analysis
// request when the media path is unavailable.
const rawTextBudget = 30000

// ErrEmptyResponse indicates Gemini returned no candidates.
var ErrEmptyResponse = errors.New("gemini returned no candidates")

// Client implements collab.TextGenerator and collab.FileAnalyzer.
type Client struct {
	api *genai.Client
}

// New creates a Gemini client.
func New(ctx context.Context, apiKey string) (*Client, error) {
	api, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &Client{api: api}, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.api.Close()
}

// =============================================================================
// TEXT GENERATION
// =============================================================================

// Generate produces one assistant reply for the given message history.
// Gemini models a conversation as history plus a final message, so the prior
// entries become chat history and the last user entry is sent.
func (c *Client) Generate(ctx context.Context, messages []collab.ChatMessage, modelID string) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("empty message history")
	}

	m := c.api.GenerativeModel(modelID)
	session := m.StartChat()

	last := messages[len(messages)-1]
	for _, msg := range messages[:len(messages)-1] {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return firstText(resp)
}

// =============================================================================
// FILE ANALYSIS
// =============================================================================

// Analyze produces an analysis of one file.
//
// Fallback chain, most capable first: media files Gemini accepts are attached
// as inline blobs; text-like files are inlined as (budgeted) text; anything
// else gets a degraded-but-valid descriptive string rather than an error, per
// the collaborator contract.
func (c *Client) Analyze(ctx context.Context, file collab.AnalysisInput) (collab.AnalysisOutput, error) {
	m := c.api.GenerativeModel(analysisModel)

	if mime := blobMIME(file.MIME); mime != "" {
		resp, err := m.GenerateContent(ctx,
			genai.Text(analysisPrompt),
			genai.Blob{MIMEType: mime, Data: file.Data},
		)
		if err != nil {
			return collab.AnalysisOutput{}, fmt.Errorf("gemini analyze %s: %w", file.Name, err)
		}
		text, err := firstText(resp)
		if err != nil {
			return collab.AnalysisOutput{}, err
		}
		return collab.AnalysisOutput{Analysis: text}, nil
	}

	if isTextMIME(file.MIME) {
		content := util.TruncateRunesNoEllipsis(string(file.Data), rawTextBudget)
		prompt := fmt.Sprintf("%s\n\nFile %q:\n\n%s", analysisPrompt, file.Name, content)
		resp, err := m.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return collab.AnalysisOutput{}, fmt.Errorf("gemini analyze %s: %w", file.Name, err)
		}
		text, err := firstText(resp)
		if err != nil {
			return collab.AnalysisOutput{}, err
		}
		return collab.AnalysisOutput{Analysis: text}, nil
	}

	// Unsupported type: degraded but valid, never an error.
	return collab.AnalysisOutput{
		Analysis: fmt.Sprintf("Binary file of type %s (%d bytes). Content analysis is not available for this format.", file.MIME, len(file.Data)),
	}, nil
}

// firstText extracts the first text part of a response.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// blobMIME filters to the media types Gemini accepts as inline blobs.
// Returns "" to route the file down the fallback chain.
func blobMIME(mime string) string {
	mt := strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	switch mt {
	case "image/png", "image/jpeg", "image/webp", "image/gif",
		"application/pdf",
		"video/mp4", "video/quicktime", "video/webm":
		return mt
	case "image/jpg":
		return "image/jpeg"
	default:
		return ""
	}
}

// isTextMIME reports whether the MIME type carries inline-able text.
func isTextMIME(mime string) bool {
	mt := strings.ToLower(strings.TrimSpace(mime))
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	switch {
	case strings.Contains(mt, "json"),
		strings.Contains(mt, "xml"),
		strings.Contains(mt, "yaml"),
		strings.Contains(mt, "csv"),
		strings.Contains(mt, "javascript"),
		strings.Contains(mt, "markdown"):
		return true
	}
	return false
}
