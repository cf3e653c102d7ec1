// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_AppendPreservesOrder(t *testing.T) {
	tr := NewTranscript()

	first := tr.Append(NewUserMessage("one"))
	second := tr.Append(NewAssistantPlaceholder("gpt-4o"))
	third := tr.Append(NewUserMessage("two"))

	msgs := tr.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, first, msgs[0].ID)
	assert.Equal(t, second, msgs[1].ID)
	assert.Equal(t, third, msgs[2].ID)
}

func TestTranscript_ResolveByID(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewUserMessage("hello"))
	id := tr.Append(NewAssistantPlaceholder("gpt-4o"))

	ok := tr.Resolve(id, "hi there")
	require.True(t, ok)

	msg, found := tr.Get(id)
	require.True(t, found)
	assert.Equal(t, "hi there", msg.Content)
	assert.False(t, msg.IsLoading)
	assert.False(t, msg.IsError)
}

func TestTranscript_ResolveIsIrreversible(t *testing.T) {
	tr := NewTranscript()
	id := tr.Append(NewAssistantPlaceholder("gpt-4o"))

	require.True(t, tr.Resolve(id, "first"))
	assert.False(t, tr.Resolve(id, "second"), "second resolution must be a no-op")
	assert.False(t, tr.ResolveError(id, "boom"), "error after success must be a no-op")

	msg, _ := tr.Get(id)
	assert.Equal(t, "first", msg.Content)
	assert.False(t, msg.IsError)
}

func TestTranscript_ResolveUnknownID(t *testing.T) {
	tr := NewTranscript()
	assert.False(t, tr.Resolve("msg_missing", "content"))
}

func TestTranscript_ResolveError(t *testing.T) {
	tr := NewTranscript()
	id := tr.Append(NewAssistantPlaceholder(ModelWebSearch))

	require.True(t, tr.ResolveError(id, "Search failed: timeout"))

	msg, _ := tr.Get(id)
	assert.True(t, msg.IsError)
	assert.False(t, msg.IsLoading)
	assert.Equal(t, "Search failed: timeout", msg.Content)
}

func TestTranscript_ResolveImages(t *testing.T) {
	tr := NewTranscript()
	id := tr.Append(NewAssistantPlaceholder("flux"))

	require.True(t, tr.ResolveImages(id, "Generated image for: a cat", []string{"https://img.example/cat.png"}))

	msg, _ := tr.Get(id)
	assert.Equal(t, []string{"https://img.example/cat.png"}, msg.Images)
	assert.False(t, msg.IsLoading)
}

func TestTranscript_SnapshotsAreCopies(t *testing.T) {
	tr := NewTranscript()
	id := tr.Append(NewAssistantPlaceholder("gpt-4o"))

	before := tr.Messages()
	require.True(t, before[0].IsLoading)

	tr.Resolve(id, "done")

	// The earlier snapshot must not observe the mutation.
	assert.True(t, before[0].IsLoading)
	assert.Empty(t, before[0].Content)

	after := tr.Messages()
	assert.False(t, after[0].IsLoading)
	assert.Equal(t, "done", after[0].Content)
}

// Multiple in-flight placeholders resolve independently by id, regardless of
// interleaving order.
func TestTranscript_ConcurrentResolution(t *testing.T) {
	tr := NewTranscript()

	const turns = 50
	ids := make([]string, turns)
	for i := range ids {
		tr.Append(NewUserMessage(fmt.Sprintf("turn %d", i)))
		ids[i] = tr.Append(NewAssistantPlaceholder("gpt-4o"))
	}
	assert.Equal(t, turns, tr.PendingCount())

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			tr.Resolve(id, fmt.Sprintf("reply %d", i))
		}(i, id)
	}
	wg.Wait()

	assert.Equal(t, 0, tr.PendingCount())
	for i, id := range ids {
		msg, ok := tr.Get(id)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("reply %d", i), msg.Content)
	}

	// Order is still submission order.
	msgs := tr.Messages()
	require.Len(t, msgs, turns*2)
	for i := 0; i < turns; i++ {
		assert.Equal(t, RoleUser, msgs[i*2].Role)
		assert.Equal(t, RoleAssistant, msgs[i*2+1].Role)
	}
}

func TestTranscript_Recent(t *testing.T) {
	tr := NewTranscript()
	for i := 0; i < 5; i++ {
		tr.Append(NewUserMessage(fmt.Sprintf("m%d", i)))
	}

	recent := tr.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, "m2", recent[0].Content)
	assert.Equal(t, "m4", recent[2].Content)

	all := tr.Recent(100)
	assert.Len(t, all, 5)
}

func TestTranscript_Reset(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewUserMessage("hello"))
	tr.Reset()
	assert.Equal(t, 0, tr.Len())
}

// =============================================================================
// UPLOAD BATCH TESTS
// =============================================================================

func TestUploadBatch_AddRemove(t *testing.T) {
	b := NewUploadBatch()
	f := &UploadedFile{ID: NewFileID(), Name: "notes.txt", AnalysisStatus: AnalysisPending}
	b.Add(f)
	require.Equal(t, 1, b.Len())

	assert.False(t, b.Remove("file_missing"))
	assert.True(t, b.Remove(f.ID))
	assert.Equal(t, 0, b.Len())
}

func TestUploadBatch_DrainEmptiesStaging(t *testing.T) {
	b := NewUploadBatch()
	b.Add(&UploadedFile{ID: NewFileID(), Name: "a.txt"})
	b.Add(&UploadedFile{ID: NewFileID(), Name: "b.txt"})

	drained := b.Drain()
	assert.Len(t, drained, 2)
	assert.Equal(t, 0, b.Len(), "staging area must be free for the next turn")
}

// =============================================================================
// ANALYSIS STATUS TESTS
// =============================================================================

func TestAnalysisStatus_ForwardOnly(t *testing.T) {
	tests := []struct {
		from, to AnalysisStatus
		allowed  bool
	}{
		{AnalysisPending, AnalysisAnalyzing, true},
		{AnalysisPending, AnalysisCompleted, true},
		{AnalysisAnalyzing, AnalysisCompleted, true},
		{AnalysisAnalyzing, AnalysisError, true},
		{AnalysisCompleted, AnalysisAnalyzing, false},
		{AnalysisError, AnalysisPending, false},
		{AnalysisCompleted, AnalysisError, false},
	}

	for _, tc := range tests {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestExecutionResult_Accepted(t *testing.T) {
	ok := ExecutionResult{Status: ExecutionStatus{ID: 3, Description: "Accepted"}}
	assert.True(t, ok.Accepted())

	bad := ExecutionResult{Status: ExecutionStatus{ID: 11, Description: "Runtime Error (NZEC)"}}
	assert.False(t, bad.Accepted())
}
