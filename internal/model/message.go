// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript and uploads.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// PSEUDO-CHANNEL MODEL TAGS
// =============================================================================

// Pseudo-model identifiers for assistant entries that are not produced by a
// text-generation provider. Display-only; never used for control flow.
const (
	ModelWebSearch    = "web-search"
	ModelFileAnalysis = "file-analysis"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single transcript entry.
//
// A Message is created either fully settled (user entries) or as a loading
// placeholder (assistant entries, IsLoading=true, empty content). A placeholder
// settles exactly once, to either its final content or an error-tagged content.
// Its position in the transcript is fixed at insertion time; only its fields
// mutate, so the presentation layer never has to reorder entries.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Lifecycle state
	IsLoading bool `json:"is_loading"`
	IsError   bool `json:"is_error"`

	// Model identifies the model/provider/pseudo-channel that produced or
	// will produce this entry. Display-only.
	Model string `json:"model,omitempty"`

	// Images holds result image URLs for image-generation replies.
	Images []string `json:"images,omitempty"`
}

// NewUserMessage creates a settled user message.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantPlaceholder creates a loading assistant placeholder tagged with
// the model that will resolve it.
func NewAssistantPlaceholder(modelID string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		IsLoading: true,
		Model:     modelID,
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// Settled returns true once the entry is no longer awaiting a result.
func (m *Message) Settled() bool {
	return !m.IsLoading
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
