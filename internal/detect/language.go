// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package detect maps code fragments and language hints to execution-sandbox
// language identifiers.
package detect

import "strings"

// =============================================================================
// LANGUAGE SPEC
// =============================================================================

// Spec describes one sandbox-supported language.
type Spec struct {
	// Name is the canonical language name used for display and transforms.
	Name string

	// ID is the sandbox's numeric language identifier.
	ID int

	// Aliases are the tag spellings that resolve to this language,
	// matched case-insensitively.
	Aliases []string
}

// Sandbox language ids.
const (
	IDJavaScript = 63
	IDTypeScript = 74
	IDPython     = 71
	IDPython2    = 70
	IDJava       = 62
	IDC          = 50
	IDCPP        = 54
	IDCSharp     = 51
	IDGo         = 60
	IDRuby       = 72
	IDRust       = 73
	IDPHP        = 68
	IDKotlin     = 78
	IDSwift      = 83
)

// specs is the catalog of sandbox-supported languages.
// JavaScript first: it doubles as the fixed fallback.
var specs = []Spec{
	{Name: "javascript", ID: IDJavaScript, Aliases: []string{"javascript", "js", "node", "nodejs"}},
	{Name: "typescript", ID: IDTypeScript, Aliases: []string{"typescript", "ts"}},
	{Name: "python", ID: IDPython, Aliases: []string{"python", "py", "python3"}},
	{Name: "python2", ID: IDPython2, Aliases: []string{"python2", "py2"}},
	{Name: "java", ID: IDJava, Aliases: []string{"java"}},
	{Name: "c", ID: IDC, Aliases: []string{"c"}},
	{Name: "cpp", ID: IDCPP, Aliases: []string{"cpp", "c++", "cxx"}},
	{Name: "csharp", ID: IDCSharp, Aliases: []string{"csharp", "c#", "cs"}},
	{Name: "go", ID: IDGo, Aliases: []string{"go", "golang"}},
	{Name: "ruby", ID: IDRuby, Aliases: []string{"ruby", "rb"}},
	{Name: "rust", ID: IDRust, Aliases: []string{"rust", "rs"}},
	{Name: "php", ID: IDPHP, Aliases: []string{"php"}},
	{Name: "kotlin", ID: IDKotlin, Aliases: []string{"kotlin", "kt"}},
	{Name: "swift", ID: IDSwift, Aliases: []string{"swift"}},
}

// aliasIndex maps lowercase alias -> spec index, built once at startup.
var aliasIndex = func() map[string]int {
	idx := make(map[string]int)
	for i, s := range specs {
		for _, a := range s.Aliases {
			idx[strings.ToLower(a)] = i
		}
	}
	return idx
}()

// =============================================================================
// DETECTION
// =============================================================================

// Fallback is the fixed default language when neither the hint nor the code
// identifies one.
func Fallback() Spec {
	return specs[0]
}

// Lookup resolves a language tag to its spec by case-insensitive alias match.
func Lookup(hint string) (Spec, bool) {
	i, ok := aliasIndex[strings.ToLower(strings.TrimSpace(hint))]
	if !ok {
		return Spec{}, false
	}
	return specs[i], true
}

// IsKnownAlias reports whether the tag resolves to a sandbox language.
func IsKnownAlias(hint string) bool {
	_, ok := Lookup(hint)
	return ok
}

// Detect maps a code fragment plus a language hint to a sandbox language spec.
//
// An exact alias match on the hint wins regardless of code content. Otherwise
// the code is inspected with ordered heuristics, Python-like prefixes before
// JavaScript-like tokens, first match wins. Detect is pure and total: with no
// match it returns the fixed JavaScript fallback, never an error.
func Detect(code, hint string) Spec {
	if spec, ok := Lookup(hint); ok {
		return spec
	}

	// Python-like prefixes checked before JavaScript-like tokens.
	pythonMarkers := []string{"def ", "import ", "print(", "class "}
	for _, marker := range pythonMarkers {
		if strings.Contains(code, marker) {
			spec, _ := Lookup("python")
			return spec
		}
	}

	jsMarkers := []string{"function", "const ", "let ", "console.log"}
	for _, marker := range jsMarkers {
		if strings.Contains(code, marker) {
			return Fallback()
		}
	}

	return Fallback()
}

// Supported returns a copy of the language catalog.
func Supported() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}
