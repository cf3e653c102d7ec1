// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"fmt"
	"log"

	"github.com/Naziz2/hanibal-ai-chat/internal/collab"
	"github.com/Naziz2/hanibal-ai-chat/internal/model"
	"github.com/Naziz2/hanibal-ai-chat/internal/util"
)

// =============================================================================
// ANALYSIS ORCHESTRATOR
// =============================================================================

// Analyzer drives the analysis collaborator over a batch of descriptors,
// tracking each file's status through pending -> analyzing -> completed/error.
type Analyzer struct {
	collaborator collab.FileAnalyzer

	// onUpdate, when set, receives a copy of each descriptor every time its
	// status changes. The presentation layer uses this for incremental
	// progress display.
	onUpdate func(model.UploadedFile)
}

// NewAnalyzer creates an analysis orchestrator over the given collaborator.
func NewAnalyzer(collaborator collab.FileAnalyzer) *Analyzer {
	return &Analyzer{collaborator: collaborator}
}

// OnUpdate registers the status-change callback.
func (a *Analyzer) OnUpdate(fn func(model.UploadedFile)) {
	a.onUpdate = fn
}

// Analyze runs the batch through the collaborator. Files already settled
// (completed or error) are skipped without any collaborator call, which makes
// re-analysis of a settled batch free. One file's failure never blocks or
// fails its siblings; every failure path settles the descriptor with a
// displayable report string. Analyze itself never fails.
func (a *Analyzer) Analyze(ctx context.Context, files []*model.UploadedFile) {
	for _, f := range files {
		if f.AnalysisStatus.Terminal() {
			continue
		}

		a.transition(f, model.AnalysisAnalyzing)

		out, err := a.collaborator.Analyze(ctx, collab.AnalysisInput{
			Name: f.Name,
			MIME: f.Type,
			Data: f.Data,
		})
		if err != nil {
			log.Printf("upload: analysis of %s failed: %v", f.Name, err)
			f.Analysis = errorReport(f, err)
			a.transition(f, model.AnalysisError)
			continue
		}

		f.Analysis = report(f, out.Analysis)
		a.transition(f, model.AnalysisCompleted)
	}
}

// transition moves a descriptor forward and notifies the callback. Backward
// transitions are refused, keeping progression monotonic.
func (a *Analyzer) transition(f *model.UploadedFile, next model.AnalysisStatus) {
	if !f.AnalysisStatus.CanTransitionTo(next) {
		return
	}
	f.AnalysisStatus = next
	if a.onUpdate != nil {
		a.onUpdate(*f)
	}
}

// report formats a completed analysis with the file header the transcript
// renders.
func report(f *model.UploadedFile, analysis string) string {
	return fmt.Sprintf("File Analysis: %s\nType: %s | Size: %s\n\n%s",
		f.Name, f.Type, util.FormatBytes(f.Size), analysis)
}

// errorReport formats a failed analysis as a displayable report rather than a
// raw error message.
func errorReport(f *model.UploadedFile, err error) string {
	return fmt.Sprintf("File Analysis: %s\nType: %s | Size: %s\n\nAnalysis failed: %v\nThe file remains attached; its raw content may still be included with your message.",
		f.Name, f.Type, util.FormatBytes(f.Size), err)
}
