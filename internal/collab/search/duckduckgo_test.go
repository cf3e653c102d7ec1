// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultPage = `
<div class="result results_links web-result">
  <h2 class="result__title">
    <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&amp;rut=abc">Go Documentation</a>
  </h2>
  <a class="result__snippet" href="#">Learn &amp; explore the <b>Go</b> programming language.</a>
</div>
<div class="result results_links web-result">
  <h2 class="result__title">
    <a rel="nofollow" class="result__a" href="https://pkg.go.dev/">Go Packages</a>
  </h2>
  <a class="result__snippet" href="#">Package index.</a>
</div>
`

func TestSearch_ParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang docs", r.URL.Query().Get("q"))
		w.Write([]byte(resultPage))
	}))
	defer srv.Close()

	c := New(srv.URL, 5)
	resp, err := c.Search(context.Background(), "golang docs")
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, 2, resp.TotalResults)

	assert.Equal(t, "Go Documentation", resp.Results[0].Title)
	assert.Equal(t, "https://go.dev/doc/", resp.Results[0].URL)
	assert.Equal(t, "Learn & explore the Go programming language.", resp.Results[0].Snippet)

	assert.Equal(t, "Go Packages", resp.Results[1].Title)
	assert.Equal(t, "https://pkg.go.dev/", resp.Results[1].URL)
}

func TestSearch_CapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultPage))
	}))
	defer srv.Close()

	c := New(srv.URL, 1)
	resp, err := c.Search(context.Background(), "golang")
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}

func TestSearch_EmptyPageIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>no matches here</body></html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, 5)
	resp, err := c.Search(context.Background(), "qwzxvnmasdf")
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.TotalResults)
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := New("", 5)
	_, err := c.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, 5)
	_, err := c.Search(context.Background(), "golang")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestExtractActualURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"redirect wrapper", "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage", "https://example.com/page"},
		{"direct https", "https://example.com/", "https://example.com/"},
		{"direct http", "http://example.com/", "http://example.com/"},
		{"relative garbage", "/l/?bad=1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractActualURL(tt.in))
		})
	}
}

func TestCleanHTML(t *testing.T) {
	got := cleanHTML("  <b>Bold</b> &amp; <i>spaced</i>\n\ttext  ")
	assert.Equal(t, "Bold & spaced text", got)
}
