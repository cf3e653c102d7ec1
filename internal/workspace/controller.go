// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package workspace owns the run-code sub-flow: a code fragment plus optional
// stdin is submitted to the execution collaborator and the combined verdict
// is composed into one display string.
package workspace

import (
	"context"
	"log"
	"regexp"
	"strings"
	"sync"

	"github.com/Naziz2/hanibal-ai-chat/internal/collab"
	"github.com/Naziz2/hanibal-ai-chat/internal/detect"
	"github.com/Naziz2/hanibal-ai-chat/internal/model"
)

// =============================================================================
// EXECUTION STATE
// =============================================================================

// runningOutput is shown while a submission is in flight.
const runningOutput = "Executing..."

// noOutputMessage substitutes for a verdict where every section is empty.
// Success does not imply output.
const noOutputMessage = "Code executed successfully with no output."

// State is the workspace's execution-state record, handed out by copy.
type State struct {
	IsRunning bool   `json:"is_running"`
	Output    string `json:"output"`

	// InputPanelOpen asks the presentation layer to expand the stdin panel
	// when a fragment appears to need interactive input.
	InputPanelOpen bool `json:"input_panel_open"`
}

// Controller implements the execution workspace. State is read and written
// from concurrent HTTP handlers, so access goes through the mutex and State
// hands out copies.
type Controller struct {
	executor collab.CodeExecutor

	mu    sync.Mutex
	state State

	// onUpdate, when set, receives a state copy after every change.
	onUpdate func(State)
}

// New creates a workspace controller over the execution collaborator.
func New(executor collab.CodeExecutor) *Controller {
	return &Controller{executor: executor}
}

// OnUpdate registers the state-change callback.
func (c *Controller) OnUpdate(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = fn
}

// State returns a copy of the current execution state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// setState applies a mutation under the lock and notifies the callback with
// the resulting copy outside it.
func (c *Controller) setState(mutate func(*State)) {
	c.mu.Lock()
	mutate(&c.state)
	snapshot := c.state
	notify := c.onUpdate
	c.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
}

// =============================================================================
// RUN
// =============================================================================

// Run submits one fragment to the sandbox and settles the workspace output.
// IsRunning is reset on every path out.
func (c *Controller) Run(ctx context.Context, fragment model.CodeFragment, stdin string) {
	if stdin == "" && needsInput(fragment.Code) {
		c.setState(func(s *State) {
			s.Output = "This code appears to read input. Enter the input below and run again."
			s.InputPanelOpen = true
			s.IsRunning = false
		})
		return
	}

	spec := detect.Detect(fragment.Code, fragment.Language)
	source := transform(fragment.Code, spec)

	c.setState(func(s *State) {
		s.IsRunning = true
		s.Output = runningOutput
		s.InputPanelOpen = false
	})
	defer c.setState(func(s *State) { s.IsRunning = false })

	result, err := c.executor.Execute(ctx, source, spec.ID, stdin)
	if err != nil {
		log.Printf("workspace: execution failed: %v", err)
		c.setState(func(s *State) { s.Output = classifyError(err.Error()) })
		return
	}

	c.setState(func(s *State) { s.Output = composeOutput(stdin, result) })
}

// =============================================================================
// INPUT HEURISTIC
// =============================================================================

// inputMarkers are input-reading calls across the supported languages. A
// fragment containing one is assumed to block on stdin.
var inputMarkers = []string{
	"input(",       // python
	"raw_input(",   // python2
	"readline(",    // node
	"prompt(",      // browser js
	"Scanner",      // java
	"System.in",    // java
	"scanf",        // c / c++
	"cin >>",       // c++
	"gets(",        // c / ruby legacy
	"gets.chomp",   // ruby
	"Console.Read", // c#
	"fmt.Scan",     // go
	"read_line",    // rust
	"readLine(",    // kotlin / swift
}

// needsInput reports whether the code appears to read interactive input.
func needsInput(code string) bool {
	for _, marker := range inputMarkers {
		if strings.Contains(code, marker) {
			return true
		}
	}
	return false
}

// =============================================================================
// SOURCE TRANSFORMS
// =============================================================================

// python2PrintRegex matches legacy print statements (print x) that the
// sandbox's python2 still wants parenthesized consistently.
var python2PrintRegex = regexp.MustCompile(`(?m)^(\s*)print\s+([^(\s].*)$`)

// transform applies the small language-specific rewrites required before
// sandbox submission.
func transform(code string, spec detect.Spec) string {
	switch spec.Name {
	case "java":
		// The sandbox compiles a full program; bare snippets get wrapped in
		// a minimal entry-point class.
		if !strings.Contains(code, "class ") {
			return "public class Main {\n    public static void main(String[] args) {\n" +
				indent(code, "        ") +
				"\n    }\n}"
		}
	case "python2":
		return python2PrintRegex.ReplaceAllString(code, "${1}print(${2})")
	}
	return code
}

func indent(code, prefix string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// OUTPUT COMPOSITION
// =============================================================================

// composeOutput concatenates the verdict's sections in fixed order, omitting
// empty ones.
func composeOutput(stdin string, result model.ExecutionResult) string {
	var sections []string

	if strings.TrimSpace(stdin) != "" {
		sections = append(sections, "Input:\n"+strings.TrimRight(stdin, "\n"))
	}
	if strings.TrimSpace(result.Stdout) != "" {
		sections = append(sections, "Output:\n"+strings.TrimRight(result.Stdout, "\n"))
	}
	if strings.TrimSpace(result.Stderr) != "" {
		sections = append(sections, "Errors:\n"+strings.TrimRight(result.Stderr, "\n"))
	}
	if strings.TrimSpace(result.CompileOutput) != "" {
		sections = append(sections, "Compiler Output:\n"+strings.TrimRight(result.CompileOutput, "\n"))
	}
	if strings.TrimSpace(result.Message) != "" {
		sections = append(sections, result.Message)
	}

	if len(sections) == 0 {
		return noOutputMessage
	}
	return strings.Join(sections, "\n\n")
}
