// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package collab defines the external collaborator contracts the conversation
// core consumes, plus shared response-decoding helpers. Concrete clients live
// in subpackages; the core depends only on these interfaces so tests can
// substitute doubles.
package collab

import (
	"context"

	"github.com/Naziz2/hanibal-ai-chat/internal/model"
)

// =============================================================================
// TEXT GENERATION
// =============================================================================

// ChatMessage is one entry of an outbound provider payload.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TextGenerator produces one assistant reply for a message history.
// Fails with a provider error on bad credentials, quota, or network trouble.
type TextGenerator interface {
	Generate(ctx context.Context, messages []ChatMessage, modelID string) (string, error)
}

// =============================================================================
// IMAGE GENERATION
// =============================================================================

// ImageGenerator turns a prompt into one result image URL. The model id
// selects between the default and alternate-style backends.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, modelID string) (string, error)
}

// =============================================================================
// FILE ANALYSIS
// =============================================================================

// AnalysisInput is the raw file handed to the analysis collaborator.
type AnalysisInput struct {
	Name string
	MIME string
	Data []byte
}

// AnalysisOutput is the collaborator's analysis of one file.
type AnalysisOutput struct {
	// Analysis is the formatted analysis text. For unsupported file types
	// the collaborator returns a degraded-but-valid string here rather
	// than an error.
	Analysis string

	// UploadedRef optionally identifies the file in the collaborator's
	// storage when the upload path was used.
	UploadedRef string
}

// FileAnalyzer analyzes one file's raw bytes.
type FileAnalyzer interface {
	Analyze(ctx context.Context, file AnalysisInput) (AnalysisOutput, error)
}

// =============================================================================
// WEB SEARCH
// =============================================================================

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchResponse is the web-search collaborator's reply.
// Zero results is a valid, successful response.
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results,omitempty"`
}

// WebSearcher performs one web search.
type WebSearcher interface {
	Search(ctx context.Context, query string) (SearchResponse, error)
}

// =============================================================================
// CODE EXECUTION
// =============================================================================

// CodeExecutor submits source code to the remote execution sandbox.
// The sandbox imposes its own CPU/wall-clock budget; there is no
// client-side timer beyond the request context.
type CodeExecutor interface {
	Execute(ctx context.Context, source string, languageID int, stdin string) (model.ExecutionResult, error)
}
