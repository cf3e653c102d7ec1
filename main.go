// hanibal - multi-provider AI chat core with file analysis, code execution,
// and web search.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Naziz2/hanibal-ai-chat/internal/chat"
	"github.com/Naziz2/hanibal-ai-chat/internal/collab"
	"github.com/Naziz2/hanibal-ai-chat/internal/collab/gemini"
	"github.com/Naziz2/hanibal-ai-chat/internal/collab/imagegen"
	"github.com/Naziz2/hanibal-ai-chat/internal/collab/judge0"
	"github.com/Naziz2/hanibal-ai-chat/internal/collab/openai"
	"github.com/Naziz2/hanibal-ai-chat/internal/collab/search"
	"github.com/Naziz2/hanibal-ai-chat/internal/config"
	"github.com/Naziz2/hanibal-ai-chat/internal/provider"
	"github.com/Naziz2/hanibal-ai-chat/internal/server"
	"github.com/Naziz2/hanibal-ai-chat/internal/upload"
	"github.com/Naziz2/hanibal-ai-chat/internal/workspace"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hanibal: %v\n", err)
		os.Exit(1)
	}

	log.Printf("hanibal %s (%s, built %s)", Version, GitCommit, BuildDate)

	registry := provider.NewRegistry(cfg.Providers.Default)

	// Text-generation collaborators, one per provider with a configured key.
	generators := make(map[string]collab.TextGenerator)
	if key := cfg.Providers.Groq.APIKey; key != "" {
		generators["groq"] = openai.NewWithBaseURL(key, cfg.Providers.Groq.BaseURL)
	}
	if key := cfg.Providers.OpenAI.APIKey; key != "" {
		generators["openai"] = openai.NewWithBaseURL(key, cfg.Providers.OpenAI.BaseURL)
	}

	// Gemini doubles as the file-analysis collaborator when configured.
	var analyzer collab.FileAnalyzer = localAnalyzer{}
	if key := cfg.Providers.Gemini.APIKey; key != "" {
		gem, err := gemini.New(ctx, key)
		if err != nil {
			log.Printf("gemini disabled: %v", err)
		} else {
			defer gem.Close()
			generators["gemini"] = gem
			analyzer = gem
		}
	}
	if len(generators) == 0 {
		log.Println("warning: no text provider configured; chat turns will settle with an error")
	}

	orch := chat.New(chat.Options{
		Registry:       registry,
		Analyzer:       upload.NewAnalyzer(analyzer),
		Generators:     generators,
		ImageGen:       imagegen.New(),
		Searcher:       search.New(cfg.Search.BaseURL, cfg.Search.MaxResults),
		AnalysisPolicy: cfg.Analysis.Policy,
		HistoryLimit:   cfg.Chat.HistoryLimit,
		FileCharBudget: cfg.Chat.FileCharBudget,
	})

	executor := judge0.New(cfg.Sandbox.APIKey,
		judge0.WithBaseURL(cfg.Sandbox.URL),
		judge0.WithLimits(cfg.Sandbox.CPUTimeLimit, cfg.Sandbox.WallTimeLimit),
	)
	ws := workspace.New(executor)

	// Hot-reload the analysis policy on config edits; everything else needs
	// a restart.
	watcher, err := config.Watch(config.DefaultPath(), func(next *config.Config) {
		orch.SetAnalysisPolicy(next.Analysis.Policy)
	})
	if err != nil {
		log.Printf("config watcher disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	srv := server.New(cfg, registry, orch, ws)
	if err := srv.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "hanibal: %v\n", err)
		os.Exit(1)
	}
}

// localAnalyzer stands in when no analysis-capable provider is configured.
// It never fails; files get a degraded descriptive analysis so the chat flow
// keeps working.
type localAnalyzer struct{}

func (localAnalyzer) Analyze(_ context.Context, file collab.AnalysisInput) (collab.AnalysisOutput, error) {
	return collab.AnalysisOutput{
		Analysis: fmt.Sprintf("File of type %s (%d bytes). Configure a Gemini API key to enable content analysis.", file.MIME, len(file.Data)),
	}, nil
}
