// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package codeblock

import (
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// highlightStyle is the chroma style used for all code blocks.
const highlightStyle = "monokai"

// Highlight renders code as syntax-highlighted HTML. An unknown language tag
// falls back to plaintext tokenization; highlighting failures fall back to an
// escaped <pre> block so a render never fails outright.
func Highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return plainPre(code)
	}

	var b strings.Builder
	formatter := chromahtml.New(chromahtml.WithLineNumbers(false))
	if err := formatter.Format(&b, style, iterator); err != nil {
		return plainPre(code)
	}
	return b.String()
}

// RenderHTML renders the message's segments for transcript display: prose is
// escaped as-is, code segments are highlighted.
func RenderHTML(text string) string {
	var b strings.Builder
	for _, seg := range Split(text) {
		if seg.IsCode() {
			b.WriteString(Highlight(seg.Fragment.Code, seg.Fragment.Language))
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(seg.Text))
		b.WriteString("</p>")
	}
	return b.String()
}

func plainPre(code string) string {
	return "<pre>" + html.EscapeString(code) + "</pre>"
}
