// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/Naziz2/hanibal-ai-chat/internal/collab"
	"github.com/Naziz2/hanibal-ai-chat/internal/model"
	"github.com/Naziz2/hanibal-ai-chat/internal/util"
)

// =============================================================================
// PROVIDER PAYLOAD
// =============================================================================

// truncationMarker is appended to raw file content cut at the character budget.
const truncationMarker = "\n... [content truncated]"

// buildPayload assembles the outbound provider message list: bounded prior
// history, then one user message carrying the turn's text plus a rendered
// block per attached file.
func buildPayload(history []model.Message, text string, files []*model.UploadedFile, charBudget int) []collab.ChatMessage {
	payload := make([]collab.ChatMessage, 0, len(history)+1)

	for _, m := range history {
		// In-flight placeholders and error entries carry nothing a
		// provider should see.
		if m.IsLoading || m.IsError || m.Content == "" {
			continue
		}
		payload = append(payload, collab.ChatMessage{
			Role:    m.Role.String(),
			Content: m.Content,
		})
	}

	var b strings.Builder
	b.WriteString(text)
	for _, f := range files {
		b.WriteString("\n\n")
		b.WriteString(renderFileBlock(f, charBudget))
	}

	return append(payload, collab.ChatMessage{
		Role:    model.RoleUser.String(),
		Content: b.String(),
	})
}

// renderFileBlock renders one attached file for the provider: the analysis
// text when available, otherwise raw content cut at the character budget with
// an explicit marker. Failed-analysis files still contribute this way rather
// than being dropped.
func renderFileBlock(f *model.UploadedFile, charBudget int) string {
	if f.AnalysisStatus == model.AnalysisCompleted && f.Analysis != "" {
		return f.Analysis
	}

	content := f.Content
	if util.RuneLen(content) > charBudget {
		content = util.TruncateRunesNoEllipsis(content, charBudget) + truncationMarker
	}
	return fmt.Sprintf("Attached file %q (%s, %s):\n%s",
		f.Name, f.Type, util.FormatBytes(f.Size), content)
}

// fileManifest summarizes attached file names for the displayed user bubble.
// Raw file content never appears in the transcript, only in the provider
// payload.
func fileManifest(files []*model.UploadedFile) string {
	if len(files) == 0 {
		return ""
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return "\n\n[Attached: " + strings.Join(names, ", ") + "]"
}
