// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Naziz2/hanibal-ai-chat/internal/collab"
	"github.com/Naziz2/hanibal-ai-chat/internal/model"
)

// fakeAnalyzer fails files listed in failFor and counts collaborator calls.
type fakeAnalyzer struct {
	calls   int
	failFor map[string]bool
}

func (f *fakeAnalyzer) Analyze(_ context.Context, in collab.AnalysisInput) (collab.AnalysisOutput, error) {
	f.calls++
	if f.failFor[in.Name] {
		return collab.AnalysisOutput{}, errors.New("provider unavailable")
	}
	return collab.AnalysisOutput{Analysis: "summary of " + in.Name}, nil
}

func pendingFile(name string) *model.UploadedFile {
	return &model.UploadedFile{
		ID:             model.NewFileID(),
		Name:           name,
		Type:           "text/plain",
		Size:           4,
		Data:           []byte("data"),
		AnalysisStatus: model.AnalysisPending,
	}
}

func TestAnalyze_HappyPath(t *testing.T) {
	fake := &fakeAnalyzer{}
	a := NewAnalyzer(fake)

	var seen []model.AnalysisStatus
	a.OnUpdate(func(f model.UploadedFile) { seen = append(seen, f.AnalysisStatus) })

	f := pendingFile("notes.txt")
	a.Analyze(context.Background(), []*model.UploadedFile{f})

	assert.Equal(t, model.AnalysisCompleted, f.AnalysisStatus)
	assert.Contains(t, f.Analysis, "File Analysis: notes.txt")
	assert.Contains(t, f.Analysis, "summary of notes.txt")
	assert.Equal(t, []model.AnalysisStatus{model.AnalysisAnalyzing, model.AnalysisCompleted}, seen)
}

func TestAnalyze_SettledFilesSkipCollaborator(t *testing.T) {
	fake := &fakeAnalyzer{}
	a := NewAnalyzer(fake)

	files := []*model.UploadedFile{pendingFile("a.txt"), pendingFile("b.txt")}
	a.Analyze(context.Background(), files)
	require.Equal(t, 2, fake.calls)

	// Re-analysis of a fully settled batch issues zero calls.
	a.Analyze(context.Background(), files)
	assert.Equal(t, 2, fake.calls)
}

func TestAnalyze_FailureIsolatedToOneFile(t *testing.T) {
	fake := &fakeAnalyzer{failFor: map[string]bool{"bad.txt": true}}
	a := NewAnalyzer(fake)

	good := pendingFile("good.txt")
	bad := pendingFile("bad.txt")
	a.Analyze(context.Background(), []*model.UploadedFile{bad, good})

	assert.Equal(t, model.AnalysisError, bad.AnalysisStatus)
	assert.Contains(t, bad.Analysis, "Analysis failed")
	assert.NotContains(t, bad.Analysis, "panic")

	assert.Equal(t, model.AnalysisCompleted, good.AnalysisStatus)
	assert.Contains(t, good.Analysis, "summary of good.txt")
}

func TestAnalyze_MixedBatchOnlyAnalyzesPending(t *testing.T) {
	fake := &fakeAnalyzer{}
	a := NewAnalyzer(fake)

	settled := pendingFile("done.txt")
	settled.AnalysisStatus = model.AnalysisCompleted
	settled.Analysis = "already here"

	fresh := pendingFile("new.txt")
	a.Analyze(context.Background(), []*model.UploadedFile{settled, fresh})

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "already here", settled.Analysis)
	assert.Equal(t, model.AnalysisCompleted, fresh.AnalysisStatus)
}
