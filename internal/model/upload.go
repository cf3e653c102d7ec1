// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"

	"github.com/google/uuid"
)

// =============================================================================
// ANALYSIS STATUS
// =============================================================================

// AnalysisStatus tracks a file's progress through analysis.
// Transitions are monotonic forward only: pending -> analyzing -> completed/error.
type AnalysisStatus string

const (
	AnalysisPending   AnalysisStatus = "pending"
	AnalysisAnalyzing AnalysisStatus = "analyzing"
	AnalysisCompleted AnalysisStatus = "completed"
	AnalysisError     AnalysisStatus = "error"
)

// rank orders statuses for the monotonic-progression invariant.
func (s AnalysisStatus) rank() int {
	switch s {
	case AnalysisPending:
		return 0
	case AnalysisAnalyzing:
		return 1
	case AnalysisCompleted, AnalysisError:
		return 2
	default:
		return -1
	}
}

// Terminal returns true for statuses with no further transitions.
func (s AnalysisStatus) Terminal() bool {
	return s == AnalysisCompleted || s == AnalysisError
}

// CanTransitionTo reports whether moving to next respects forward-only progression.
func (s AnalysisStatus) CanTransitionTo(next AnalysisStatus) bool {
	return next.rank() > s.rank()
}

// =============================================================================
// UPLOADED FILE TYPE
// =============================================================================

// UploadedFile is the in-memory descriptor for one user-attached file.
//
// Content holds either raw UTF-8 text (for text-like files) or a base64
// data-URL (for binary files); the encoding is chosen once at read time and
// never changes. Preview is populated only for image MIME types.
type UploadedFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`

	Content  string `json:"content"`
	IsText   bool   `json:"is_text"`
	Preview  string `json:"preview,omitempty"`
	Analysis string `json:"analysis,omitempty"`

	AnalysisStatus AnalysisStatus `json:"analysis_status"`

	// Data keeps the raw bytes for the analysis collaborator. Not serialized.
	Data []byte `json:"-"`
}

// NewFileID creates a unique file descriptor id.
func NewFileID() string {
	return "file_" + uuid.NewString()
}

// =============================================================================
// UPLOAD BATCH
// =============================================================================

// UploadBatch is the staging area for files attached to the next turn.
// Like the transcript, it is owned by the conversation orchestrator's mutation
// functions and hands out copies only.
type UploadBatch struct {
	mu    sync.Mutex
	files []*UploadedFile
}

// NewUploadBatch creates an empty staging area.
func NewUploadBatch() *UploadBatch {
	return &UploadBatch{files: make([]*UploadedFile, 0)}
}

// Add stages descriptors for the next turn.
func (b *UploadBatch) Add(files ...*UploadedFile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = append(b.files, files...)
}

// Remove unstages the descriptor with the given id.
// Returns false if no staged file matches.
func (b *UploadBatch) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, f := range b.files {
		if f.ID == id {
			b.files = append(b.files[:i], b.files[i+1:]...)
			return true
		}
	}
	return false
}

// Files returns a snapshot copy of the staged descriptors.
func (b *UploadBatch) Files() []UploadedFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]UploadedFile, len(b.files))
	for i, f := range b.files {
		out[i] = *f
	}
	return out
}

// Len returns the number of staged files.
func (b *UploadBatch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.files)
}

// Drain removes and returns all staged descriptors. The orchestrator calls
// this when a turn is submitted so the staging area is immediately free for
// the next turn while the current one is still in flight.
func (b *UploadBatch) Drain() []*UploadedFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	files := b.files
	b.files = make([]*UploadedFile, 0)
	return files
}

// Clear discards all staged descriptors.
func (b *UploadBatch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = make([]*UploadedFile, 0)
}
