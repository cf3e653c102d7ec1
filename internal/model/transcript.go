// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"time"
)

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the append-only message log of one chat session.
//
// Entries are appended in submission order and mutated only through
// replace-by-id resolution, never by position. That discipline is what keeps
// multiple in-flight placeholders safe: each one settles independently by id
// lookup regardless of how many other turns are outstanding. Accessors return
// copies, so no caller ever observes an entry mid-mutation.
type Transcript struct {
	mu      sync.RWMutex
	entries []*Message
	byID    map[string]*Message

	CreatedAt time.Time
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{
		entries:   make([]*Message, 0),
		byID:      make(map[string]*Message),
		CreatedAt: time.Now(),
	}
}

// =============================================================================
// APPEND AND RESOLUTION
// =============================================================================

// Append adds a message to the end of the transcript and returns its id.
func (t *Transcript) Append(msg *Message) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, msg)
	t.byID[msg.ID] = msg
	return msg.ID
}

// Resolve settles the placeholder with the given id to a successful content.
// The transition is irreversible: resolving an already-settled entry is a no-op.
// Returns false if the id is unknown or the entry was already settled.
func (t *Transcript) Resolve(id, content string) bool {
	return t.settle(id, func(m *Message) {
		m.Content = content
	})
}

// ResolveError settles the placeholder with the given id to an error state.
func (t *Transcript) ResolveError(id, content string) bool {
	return t.settle(id, func(m *Message) {
		m.Content = content
		m.IsError = true
	})
}

// ResolveImages settles the placeholder with the given id to an image-generation
// result: caption content plus an ordered list of result image URLs.
func (t *Transcript) ResolveImages(id, content string, urls []string) bool {
	return t.settle(id, func(m *Message) {
		m.Content = content
		m.Images = append([]string(nil), urls...)
	})
}

// settle applies a terminal mutation to a still-loading entry.
func (t *Transcript) settle(id string, mutate func(*Message)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg, ok := t.byID[id]
	if !ok || !msg.IsLoading {
		return false
	}

	// Copy-on-write: replace the stored entry so snapshots handed out
	// earlier never observe the mutation.
	updated := *msg
	mutate(&updated)
	updated.IsLoading = false

	for i, e := range t.entries {
		if e.ID == id {
			t.entries[i] = &updated
			break
		}
	}
	t.byID[id] = &updated
	return true
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns a snapshot copy of all transcript entries in append order.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Message, len(t.entries))
	for i, e := range t.entries {
		out[i] = *e
	}
	return out
}

// Get returns a copy of the entry with the given id.
func (t *Transcript) Get(id string) (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	msg, ok := t.byID[id]
	if !ok {
		return Message{}, false
	}
	return *msg, true
}

// Recent returns copies of the most recent n entries in append order.
func (t *Transcript) Recent(n int) []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	start := len(t.entries) - n
	if start < 0 {
		start = 0
	}
	out := make([]Message, 0, len(t.entries)-start)
	for _, e := range t.entries[start:] {
		out = append(out, *e)
	}
	return out
}

// Len returns the number of transcript entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// PendingCount returns the number of entries still awaiting resolution.
func (t *Transcript) PendingCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, e := range t.entries {
		if e.IsLoading {
			count++
		}
	}
	return count
}

// Reset removes all entries. This is the only way entries are ever deleted.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make([]*Message, 0)
	t.byID = make(map[string]*Message)
}
