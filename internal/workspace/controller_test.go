// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Naziz2/hanibal-ai-chat/internal/detect"
	"github.com/Naziz2/hanibal-ai-chat/internal/model"
)

// fakeExecutor records the submission and returns a canned verdict.
type fakeExecutor struct {
	calls      int
	source     string
	languageID int
	stdin      string

	result model.ExecutionResult
	err    error
}

func (f *fakeExecutor) Execute(_ context.Context, source string, languageID int, stdin string) (model.ExecutionResult, error) {
	f.calls++
	f.source = source
	f.languageID = languageID
	f.stdin = stdin
	return f.result, f.err
}

func TestRun_ComposesSections(t *testing.T) {
	exec := &fakeExecutor{result: model.ExecutionResult{
		Stdout: "42\n",
		Stderr: "warning: deprecated\n",
	}}
	c := New(exec)

	c.Run(context.Background(), model.CodeFragment{Code: "console.log(42)", Language: "js"}, "")

	state := c.State()
	assert.False(t, state.IsRunning)
	assert.Equal(t, "Output:\n42\n\nErrors:\nwarning: deprecated", state.Output)
	assert.Equal(t, detect.IDJavaScript, exec.languageID)
}

func TestRun_EchoesStdinFirst(t *testing.T) {
	exec := &fakeExecutor{result: model.ExecutionResult{Stdout: "Hello Ada\n"}}
	c := New(exec)

	c.Run(context.Background(), model.CodeFragment{Code: "name = input()\nprint('Hello', name)", Language: "python"}, "Ada\n")

	assert.Equal(t, "Input:\nAda\n\nOutput:\nHello Ada", c.State().Output)
	assert.Equal(t, "Ada\n", exec.stdin)
}

func TestRun_AllSectionsEmpty(t *testing.T) {
	exec := &fakeExecutor{result: model.ExecutionResult{
		Status: model.ExecutionStatus{ID: 3, Description: model.StatusAccepted},
	}}
	c := New(exec)

	c.Run(context.Background(), model.CodeFragment{Code: "x = 1", Language: "python"}, "")

	assert.Equal(t, noOutputMessage, c.State().Output)
}

func TestRun_InputHeuristicShortCircuits(t *testing.T) {
	exec := &fakeExecutor{}
	c := New(exec)

	c.Run(context.Background(), model.CodeFragment{Code: "name = input('who? ')", Language: "python"}, "")

	state := c.State()
	assert.Zero(t, exec.calls)
	assert.True(t, state.InputPanelOpen)
	assert.False(t, state.IsRunning)
	assert.Contains(t, state.Output, "input")
}

func TestRun_InputHeuristicBypassedWhenStdinSupplied(t *testing.T) {
	exec := &fakeExecutor{result: model.ExecutionResult{Stdout: "ok"}}
	c := New(exec)

	c.Run(context.Background(), model.CodeFragment{Code: "name = input()", Language: "python"}, "Ada")

	assert.Equal(t, 1, exec.calls)
}

func TestRun_ErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  string
		want string
	}{
		{"timeout", "submission failed: Time Limit Exceeded", "timed out"},
		{"memory", "container hit memory limit", "memory"},
		{"nzec", "NZEC exit code 1", "non-zero status"},
		{"compile", "Compilation Error on line 3", "Compilation error"},
		{"passthrough", "weird transport failure", "weird transport failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{err: errors.New(tt.err)}
			c := New(exec)

			c.Run(context.Background(), model.CodeFragment{Code: "1+1", Language: "js"}, "")

			state := c.State()
			assert.False(t, state.IsRunning)
			assert.Contains(t, state.Output, tt.want)
			assert.Contains(t, state.Output, "Troubleshooting suggestions")
		})
	}
}

func TestRun_TracksRunningState(t *testing.T) {
	exec := &fakeExecutor{result: model.ExecutionResult{Stdout: "hi"}}
	c := New(exec)

	var sawRunning bool
	c.OnUpdate(func(s State) {
		if s.IsRunning && s.Output == runningOutput {
			sawRunning = true
		}
	})

	c.Run(context.Background(), model.CodeFragment{Code: "console.log('hi')", Language: "js"}, "")

	assert.True(t, sawRunning)
	assert.False(t, c.State().IsRunning)
}

// gatedExecutor signals when a submission starts and holds it until released.
type gatedExecutor struct {
	started chan struct{}
	release chan struct{}
	result  model.ExecutionResult
}

func (g *gatedExecutor) Execute(context.Context, string, int, string) (model.ExecutionResult, error) {
	close(g.started)
	<-g.release
	return g.result, nil
}

func TestState_ReadableWhileRunInFlight(t *testing.T) {
	exec := &gatedExecutor{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  model.ExecutionResult{Stdout: "done"},
	}
	c := New(exec)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Run(context.Background(), model.CodeFragment{Code: "console.log(1)", Language: "js"}, "")
	}()

	<-exec.started
	require.True(t, c.State().IsRunning)
	assert.Equal(t, runningOutput, c.State().Output)

	// Concurrent polling while the run is in flight.
	var pollers sync.WaitGroup
	for i := 0; i < 4; i++ {
		pollers.Add(1)
		go func() {
			defer pollers.Done()
			for j := 0; j < 100; j++ {
				_ = c.State()
			}
		}()
	}

	close(exec.release)
	wg.Wait()
	pollers.Wait()

	state := c.State()
	require.False(t, state.IsRunning)
	assert.Contains(t, state.Output, "done")
}

func TestRun_InputPanelClosesOnNextRun(t *testing.T) {
	exec := &fakeExecutor{result: model.ExecutionResult{Stdout: "Hello Ada"}}
	c := New(exec)

	fragment := model.CodeFragment{Code: "name = input()\nprint('Hello', name)", Language: "python"}

	c.Run(context.Background(), fragment, "")
	require.True(t, c.State().InputPanelOpen)
	require.Zero(t, exec.calls)

	c.Run(context.Background(), fragment, "Ada\n")

	state := c.State()
	assert.Equal(t, 1, exec.calls)
	assert.False(t, state.InputPanelOpen)
	assert.Contains(t, state.Output, "Hello Ada")
}

func TestTransform_JavaWrap(t *testing.T) {
	spec, _ := detect.Lookup("java")

	wrapped := transform(`System.out.println("hi");`, spec)
	assert.Contains(t, wrapped, "public class Main")
	assert.Contains(t, wrapped, "public static void main(String[] args)")
	assert.Contains(t, wrapped, `System.out.println("hi");`)

	full := "public class App {\n  public static void main(String[] a) {}\n}"
	assert.Equal(t, full, transform(full, spec))
}

func TestTransform_Python2PrintRewrite(t *testing.T) {
	spec, _ := detect.Lookup("python2")

	got := transform("print 'hello'\nprint('already fine')\n  print x + 1", spec)
	assert.Equal(t, "print('hello')\nprint('already fine')\n  print(x + 1)", got)
}

func TestNeedsInput(t *testing.T) {
	assert.True(t, needsInput("x = input()"))
	assert.True(t, needsInput("Scanner sc = new Scanner(System.in);"))
	assert.True(t, needsInput(`fmt.Scan(&n)`))
	assert.False(t, needsInput("print('hello')"))
}
