// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package codeblock scans assistant replies for fenced code blocks and
// separates them from the surrounding prose. The same scan serves two
// consumers: transcript rendering (prose vs highlighted block segments) and
// the execution workspace (the flat list of runnable fragments). Both run the
// one shared runnable predicate so they can never disagree about a block.
package codeblock

import (
	"regexp"
	"strings"

	"github.com/Naziz2/hanibal-ai-chat/internal/detect"
	"github.com/Naziz2/hanibal-ai-chat/internal/model"
)

// fenceRegex matches one well-formed fenced block: opening fence with an
// optional language tag, body, closing fence. Unterminated fences are left in
// the prose untouched.
var fenceRegex = regexp.MustCompile("(?ms)^```([A-Za-z0-9+#._-]*)[ \t]*\r?\n(.*?)^```[ \t]*$")

// Segment is one slice of a message: either prose or a code block.
type Segment struct {
	// Text holds prose for non-code segments.
	Text string

	// Fragment is set for code segments.
	Fragment *model.CodeFragment

	// Runnable reports whether a code segment may be offered for execution.
	Runnable bool
}

// IsCode reports whether the segment is a code block.
func (s Segment) IsCode() bool {
	return s.Fragment != nil
}

// Runnable is the shared predicate: a block is runnable when its tag names a
// known sandbox language alias, or the tag is absent (default language, run
// on a best-effort basis). Blocks tagged with anything else still display,
// but are never executed.
func Runnable(languageTag string) bool {
	return strings.TrimSpace(languageTag) == "" || detect.IsKnownAlias(languageTag)
}

// Split partitions message text into ordered prose and code segments.
// Non-runnable tagged blocks are folded back into prose with the fence
// markers stripped, so their body still reads as plain text.
func Split(text string) []Segment {
	var segments []Segment

	appendProse := func(s string) {
		if s == "" {
			return
		}
		// Merge adjacent prose, which happens when a non-runnable block
		// dissolves between two prose stretches.
		if n := len(segments); n > 0 && !segments[n-1].IsCode() {
			segments[n-1].Text += s
			return
		}
		segments = append(segments, Segment{Text: s})
	}

	last := 0
	for _, loc := range fenceRegex.FindAllStringSubmatchIndex(text, -1) {
		tag := text[loc[2]:loc[3]]
		body := text[loc[4]:loc[5]]

		if !Runnable(tag) {
			appendProse(text[last:loc[0]] + body)
			last = loc[1]
			continue
		}

		appendProse(text[last:loc[0]])
		segments = append(segments, Segment{
			Fragment: &model.CodeFragment{
				Code:     strings.TrimRight(body, "\n"),
				Language: strings.ToLower(strings.TrimSpace(tag)),
			},
			Runnable: true,
		})
		last = loc[1]
	}
	appendProse(text[last:])

	return segments
}

// Extract returns the ordered runnable fragments of the text. Order matches
// source order; repeated calls over the same text yield the same list.
func Extract(text string) []model.CodeFragment {
	var fragments []model.CodeFragment
	for _, seg := range Split(text) {
		if seg.IsCode() && seg.Runnable {
			fragments = append(fragments, *seg.Fragment)
		}
	}
	return fragments
}
