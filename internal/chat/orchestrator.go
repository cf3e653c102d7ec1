// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation orchestrator: the state machine
// that expands one submitted user turn into provider calls, file analysis,
// and transcript mutations.
//
// A turn's synchronous portion (guard, append user entry, append assistant
// placeholder, drain the staging area) completes before Submit returns; the
// collaborator calls run on a goroutine and settle the placeholder by id.
// Because placeholders resolve by id and the transcript hands out copies,
// any number of turns may be in flight at once.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/Naziz2/hanibal-ai-chat/internal/collab"
	"github.com/Naziz2/hanibal-ai-chat/internal/config"
	"github.com/Naziz2/hanibal-ai-chat/internal/model"
	"github.com/Naziz2/hanibal-ai-chat/internal/provider"
	"github.com/Naziz2/hanibal-ai-chat/internal/upload"
)

// Guard errors returned by Submit before any transcript mutation.
var (
	// ErrEmptyTurn indicates a turn with no text and no attached files.
	ErrEmptyTurn = errors.New("turn has no text and no files")

	// ErrTextRequired indicates a web-search or image turn without text.
	// Files alone cannot drive those modes.
	ErrTextRequired = errors.New("this mode requires text")
)

// Turn is one submitted user action.
type Turn struct {
	// Text is the literal input text.
	Text string

	// WebSearch routes the turn to the search collaborator when text is
	// present.
	WebSearch bool
}

// Orchestrator owns the transcript and the upload staging area and sequences
// every turn through its collaborators.
type Orchestrator struct {
	transcript *model.Transcript
	batch      *model.UploadBatch
	registry   *provider.Registry
	analyzer   *upload.Analyzer

	// generators maps provider id to its text-generation collaborator.
	// A provider without a configured key has no entry.
	generators map[string]collab.TextGenerator
	imageGen   collab.ImageGenerator
	searcher   collab.WebSearcher

	policyMu       sync.RWMutex
	policy         string
	historyLimit   int
	fileCharBudget int

	wg sync.WaitGroup
}

// Options wires an orchestrator.
type Options struct {
	Registry   *provider.Registry
	Analyzer   *upload.Analyzer
	Generators map[string]collab.TextGenerator
	ImageGen   collab.ImageGenerator
	Searcher   collab.WebSearcher

	AnalysisPolicy string
	HistoryLimit   int
	FileCharBudget int
}

// New creates an orchestrator with an empty transcript and staging area.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		transcript:     model.NewTranscript(),
		batch:          model.NewUploadBatch(),
		registry:       opts.Registry,
		analyzer:       opts.Analyzer,
		generators:     opts.Generators,
		imageGen:       opts.ImageGen,
		searcher:       opts.Searcher,
		policy:         opts.AnalysisPolicy,
		historyLimit:   opts.HistoryLimit,
		fileCharBudget: opts.FileCharBudget,
	}
}

// Transcript exposes the session transcript to the presentation layer.
func (o *Orchestrator) Transcript() *model.Transcript {
	return o.transcript
}

// Batch exposes the upload staging area to the presentation layer.
func (o *Orchestrator) Batch() *model.UploadBatch {
	return o.batch
}

// Wait blocks until every in-flight turn has settled. Shutdown and tests.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit runs one turn through the state machine. Mode dispatch is priority
// ordered, first match wins: web-search with text, then image generation when
// an image provider is selected, then chat. The returned error covers guard
// rejection only; collaborator failures settle into the transcript as
// error-tagged entries and never surface here.
func (o *Orchestrator) Submit(ctx context.Context, turn Turn) error {
	text := strings.TrimSpace(turn.Text)

	switch {
	case turn.WebSearch && text != "":
		o.submitSearch(ctx, text)
	case o.registry.ImageSelected():
		if text == "" {
			return ErrTextRequired
		}
		o.submitImage(ctx, text)
	default:
		if text == "" && o.batch.Len() == 0 {
			return ErrEmptyTurn
		}
		o.submitChat(ctx, text)
	}
	return nil
}

// =============================================================================
// CHAT PATH
// =============================================================================

func (o *Orchestrator) submitChat(ctx context.Context, text string) {
	// The caller's context dies when Submit returns (an HTTP handler's
	// request context, for one); the in-flight portion must outlive it.
	// A turn, once submitted, runs to settlement.
	ctx = context.WithoutCancel(ctx)

	// Drain the staging area now so the input surface is free for the next
	// turn while this one is still in flight.
	files := o.batch.Drain()

	// Snapshot prior history before this turn's own entries land; the
	// payload renders the current turn separately.
	history := o.transcript.Recent(o.historyLimit)

	o.transcript.Append(model.NewUserMessage(text + fileManifest(files)))

	prov, mdl := o.registry.Current()
	placeholderID := o.transcript.Append(model.NewAssistantPlaceholder(mdl.ID))

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		// Analysis strictly precedes the provider call so the payload can
		// carry analysis results.
		if len(files) > 0 && o.shouldAnalyze(text) {
			o.analyzer.Analyze(ctx, files)
		}

		gen, ok := o.generators[prov.ID]
		if !ok {
			o.transcript.ResolveError(placeholderID,
				fmt.Sprintf("%s is not configured. Add an API key for it and try again.", prov.Name))
			return
		}

		payload := buildPayload(history, text, files, o.fileCharBudget)
		reply, err := gen.Generate(ctx, payload, mdl.ID)
		if err != nil {
			log.Printf("chat: %s/%s generate failed: %v", prov.ID, mdl.ID, err)
			o.transcript.ResolveError(placeholderID,
				fmt.Sprintf("Failed to get a response from %s: %v", prov.Name, err))
			return
		}
		o.transcript.Resolve(placeholderID, reply)
	}()
}

// analysisKeywords triggers analysis under the keyword policy.
var analysisKeywords = []string{"analyze", "analyse", "summarize", "summarise", "what is in", "what's in", "explain this file", "describe this file"}

// SetAnalysisPolicy swaps the analysis policy at runtime (config reload).
func (o *Orchestrator) SetAnalysisPolicy(policy string) {
	o.policyMu.Lock()
	o.policy = policy
	o.policyMu.Unlock()
}

// shouldAnalyze applies the analysis policy to the turn text.
func (o *Orchestrator) shouldAnalyze(text string) bool {
	o.policyMu.RLock()
	policy := o.policy
	o.policyMu.RUnlock()

	switch policy {
	case config.PolicyNever:
		return false
	case config.PolicyKeyword:
		lower := strings.ToLower(text)
		for _, kw := range analysisKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// =============================================================================
// IMAGE PATH
// =============================================================================

func (o *Orchestrator) submitImage(ctx context.Context, prompt string) {
	ctx = context.WithoutCancel(ctx)

	o.transcript.Append(model.NewUserMessage(prompt))

	_, mdl := o.registry.Current()
	placeholderID := o.transcript.Append(model.NewAssistantPlaceholder(mdl.ID))

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		url, err := o.imageGen.Generate(ctx, prompt, mdl.ID)
		if err != nil {
			log.Printf("chat: image generation failed: %v", err)
			o.transcript.ResolveError(placeholderID,
				fmt.Sprintf("Image generation failed: %v", err))
			return
		}
		o.transcript.ResolveImages(placeholderID,
			fmt.Sprintf("Generated image for: %q", prompt), []string{url})
	}()
}

// =============================================================================
// WEB-SEARCH PATH
// =============================================================================

func (o *Orchestrator) submitSearch(ctx context.Context, query string) {
	ctx = context.WithoutCancel(ctx)

	o.transcript.Append(model.NewUserMessage("Search: " + query))
	placeholderID := o.transcript.Append(model.NewAssistantPlaceholder(model.ModelWebSearch))

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		resp, err := o.searcher.Search(ctx, query)
		if err != nil {
			log.Printf("chat: web search failed: %v", err)
			o.transcript.ResolveError(placeholderID,
				fmt.Sprintf("Web search failed: %v", err))
			return
		}
		o.transcript.Resolve(placeholderID, formatSearchReport(query, resp))
	}()
}

// formatSearchReport renders all results into one numbered report. Zero
// results is a successful outcome with an explicit no-results line.
func formatSearchReport(query string, resp collab.SearchResponse) string {
	if len(resp.Results) == 0 {
		return fmt.Sprintf("No results found for %q.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n", query)
	for i, r := range resp.Results {
		fmt.Fprintf(&b, "\n%d. **%s**\n", i+1, r.Title)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
		fmt.Fprintf(&b, "   Link: %s\n", r.URL)
	}
	return b.String()
}
