// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search implements the web-search collaborator over the DuckDuckGo
// HTML interface. No API key is required; results are parsed out of the HTML
// with pre-compiled patterns.
package search

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Naziz2/hanibal-ai-chat/internal/collab"
)

// =============================================================================
// PERFORMANCE: Pre-compiled regex (compiled once at startup)
// =============================================================================

var (
	// DuckDuckGo HTML parsing patterns
	ddgTitleRegex   = regexp.MustCompile(`(?s)<a[^>]+class="result__a"[^>]+href="([^"]+)"[^>]*>(.+?)</a>`)
	ddgSnippetRegex = regexp.MustCompile(`(?s)<a[^>]+class="result__snippet"[^>]*>(.+?)</a>`)

	// HTML cleaning patterns
	ddgTagRegex        = regexp.MustCompile(`<[^>]*>`)
	ddgWhitespaceRegex = regexp.MustCompile(`\s+`)
)

// Configuration constants.
const (
	// DefaultBaseURL is the DuckDuckGo HTML search endpoint.
	DefaultBaseURL = "https://html.duckduckgo.com/html/"

	// defaultMaxResults caps how many results one search returns.
	defaultMaxResults = 5

	// requestTimeout bounds one search request.
	requestTimeout = 15 * time.Second

	// maxResponseSize limits response bodies to prevent memory exhaustion.
	maxResponseSize = 5 * 1024 * 1024

	// userAgent presented to DuckDuckGo; the HTML endpoint rejects bare
	// Go-http-client agents.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrEmptyQuery indicates a search was requested without a query.
var ErrEmptyQuery = errors.New("search query is empty")

// Client implements collab.WebSearcher.
type Client struct {
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// New creates a search client. An empty baseURL selects the production
// endpoint; maxResults below 1 selects the default cap.
func New(baseURL string, maxResults int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxResults < 1 {
		maxResults = defaultMaxResults
	}
	return &Client{
		baseURL:    baseURL,
		maxResults: maxResults,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
	}
}

// Search performs one DuckDuckGo search. An empty result list is a valid
// response, not an error.
func (c *Client) Search(ctx context.Context, query string) (collab.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return collab.SearchResponse{}, ErrEmptyQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return collab.SearchResponse{}, fmt.Errorf("build request: %w", err)
	}

	// Note: don't set Accept-Encoding manually; Go's http.Client negotiates
	// and decompresses gzip transparently only when the header is untouched.
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return collab.SearchResponse{}, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return collab.SearchResponse{}, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return collab.SearchResponse{}, fmt.Errorf("read response: %w", err)
	}

	results := parseHTML(string(body))
	if len(results) > c.maxResults {
		results = results[:c.maxResults]
	}
	return collab.SearchResponse{
		Results:      results,
		TotalResults: len(results),
	}, nil
}

// parseHTML extracts search results from DuckDuckGo's result page.
//
// Structure (2024+):
//
//	<h2 class="result__title">
//	  <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=URL">Title</a>
//	</h2>
//	<a class="result__snippet" href="...">Snippet text</a>
func parseHTML(page string) []collab.SearchResult {
	var results []collab.SearchResult

	titleMatches := ddgTitleRegex.FindAllStringSubmatch(page, 30)
	snippetMatches := ddgSnippetRegex.FindAllStringSubmatch(page, 30)

	for i, match := range titleMatches {
		if len(match) < 3 {
			continue
		}

		rawURL := strings.ReplaceAll(match[1], "&amp;", "&")
		actualURL := extractActualURL(rawURL)
		if actualURL == "" {
			continue
		}

		title := cleanHTML(match[2])
		if title == "" {
			continue
		}

		snippet := ""
		if i < len(snippetMatches) && len(snippetMatches[i]) >= 2 {
			snippet = cleanHTML(snippetMatches[i][1])
		}

		results = append(results, collab.SearchResult{
			Title:   title,
			URL:     actualURL,
			Snippet: snippet,
		})
	}

	return results
}

// extractActualURL unwraps DuckDuckGo's redirect format
// (//duckduckgo.com/l/?uddg=ENCODED_URL) to the destination URL.
func extractActualURL(ddgURL string) string {
	if strings.Contains(ddgURL, "uddg=") {
		if strings.HasPrefix(ddgURL, "//") {
			ddgURL = "https:" + ddgURL
		}
		parsed, err := url.Parse(ddgURL)
		if err != nil {
			return ""
		}
		if dest := parsed.Query().Get("uddg"); dest != "" {
			return dest
		}
	}

	if strings.HasPrefix(ddgURL, "http://") || strings.HasPrefix(ddgURL, "https://") {
		return ddgURL
	}

	return ""
}

// cleanHTML strips tags, decodes entities, and collapses whitespace.
func cleanHTML(s string) string {
	text := ddgTagRegex.ReplaceAllString(s, "")
	text = html.UnescapeString(text)
	text = ddgWhitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
