// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect_HintWinsOverCode(t *testing.T) {
	// Python-looking code with an explicit ruby hint resolves to ruby.
	spec := Detect("def greet\n  puts 'hi'\nend", "ruby")
	assert.Equal(t, "ruby", spec.Name)
	assert.Equal(t, IDRuby, spec.ID)
}

func TestDetect_HintIsCaseInsensitive(t *testing.T) {
	tests := []struct {
		hint string
		want string
	}{
		{"Python", "python"},
		{"PY", "python"},
		{"JavaScript", "javascript"},
		{"C++", "cpp"},
		{"GOLANG", "go"},
		{"  js  ", "javascript"},
	}

	for _, tc := range tests {
		t.Run(tc.hint, func(t *testing.T) {
			assert.Equal(t, tc.want, Detect("", tc.hint).Name)
		})
	}
}

func TestDetect_PythonHeuristicsBeforeJavaScript(t *testing.T) {
	// "class " is a Python marker checked before JS tokens, so code that
	// contains both resolves to Python.
	spec := Detect("class Foo:\n    const = 1", "")
	assert.Equal(t, "python", spec.Name)

	spec = Detect("import os\nprint(os.name)", "")
	assert.Equal(t, "python", spec.Name)
}

func TestDetect_JavaScriptHeuristics(t *testing.T) {
	tests := []string{
		"function add(a, b) { return a + b }",
		"const x = 1",
		"let y = 2",
		"console.log('hi')",
	}
	for _, code := range tests {
		assert.Equal(t, "javascript", Detect(code, "").Name)
	}
}

func TestDetect_FallbackIsJavaScript(t *testing.T) {
	spec := Detect("SELECT * FROM users;", "sql")
	assert.Equal(t, "javascript", spec.Name)
	assert.Equal(t, IDJavaScript, spec.ID)

	// Empty everything still yields the fallback, never a zero Spec.
	assert.Equal(t, IDJavaScript, Detect("", "").ID)
}

func TestIsKnownAlias(t *testing.T) {
	assert.True(t, IsKnownAlias("py"))
	assert.True(t, IsKnownAlias("C#"))
	assert.False(t, IsKnownAlias("sql"))
	assert.False(t, IsKnownAlias("markdown"))
	assert.False(t, IsKnownAlias(""))
}

func TestSupported_IDsAreUnique(t *testing.T) {
	seen := map[int]string{}
	for _, s := range Supported() {
		if prev, dup := seen[s.ID]; dup {
			t.Errorf("language id %d shared by %q and %q", s.ID, prev, s.Name)
		}
		seen[s.ID] = s.Name
	}
}
