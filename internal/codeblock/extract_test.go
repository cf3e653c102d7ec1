// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package codeblock

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reply = "Here is a solution:\n" +
	"```python\n" +
	"print('hi')\n" +
	"```\n" +
	"And the JS version:\n" +
	"```js\n" +
	"console.log('hi')\n" +
	"```\n" +
	"Done."

func TestExtract_OrderPreserving(t *testing.T) {
	fragments := Extract(reply)
	require.Len(t, fragments, 2)

	assert.Equal(t, "python", fragments[0].Language)
	assert.Equal(t, "print('hi')", fragments[0].Code)
	assert.Equal(t, "js", fragments[1].Language)
	assert.Equal(t, "console.log('hi')", fragments[1].Code)
}

func TestExtract_Idempotent(t *testing.T) {
	assert.Equal(t, Extract(reply), Extract(reply))
}

func TestExtract_UntaggedBlockIsRunnable(t *testing.T) {
	fragments := Extract("```\nx = 1\n```")
	require.Len(t, fragments, 1)
	assert.Empty(t, fragments[0].Language)
	assert.Equal(t, "x = 1", fragments[0].Code)
}

func TestExtract_UnknownTagNotRunnable(t *testing.T) {
	fragments := Extract("```brainfuck\n+++\n```")
	assert.Empty(t, fragments)
}

func TestSplit_NonRunnableBlockDissolvesIntoProse(t *testing.T) {
	text := "Config:\n```mermaid\ngraph TD\n```\nthe end"
	segments := Split(text)

	require.Len(t, segments, 1)
	assert.False(t, segments[0].IsCode())
	assert.Contains(t, segments[0].Text, "graph TD")
	assert.NotContains(t, segments[0].Text, "```")
}

func TestSplit_BothScansAgreeOnRunnability(t *testing.T) {
	text := reply + "\n```mermaid\ngraph TD\n```"

	var fromSplit int
	for _, seg := range Split(text) {
		if seg.IsCode() && seg.Runnable {
			fromSplit++
		}
	}
	assert.Equal(t, len(Extract(text)), fromSplit)
}

func TestSplit_UnterminatedFenceStaysProse(t *testing.T) {
	text := "broken:\n```python\nprint('hi')"
	segments := Split(text)

	require.Len(t, segments, 1)
	assert.False(t, segments[0].IsCode())
	assert.Empty(t, Extract(text))
}

func TestRunnable(t *testing.T) {
	assert.True(t, Runnable(""))
	assert.True(t, Runnable("python"))
	assert.True(t, Runnable("PY"))
	assert.True(t, Runnable("golang"))
	assert.False(t, Runnable("mermaid"))
	assert.False(t, Runnable("diff"))
}

func TestHighlight_ProducesHTML(t *testing.T) {
	out := Highlight("print('hi')", "python")
	assert.True(t, strings.Contains(out, "<"))
	assert.Contains(t, out, "print")
}

func TestRenderHTML_MixedContent(t *testing.T) {
	out := RenderHTML("intro <b>\n```python\nprint('hi')\n```")
	assert.Contains(t, out, "&lt;b&gt;")
	assert.Contains(t, out, "print")
}
