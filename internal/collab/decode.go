// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package collab

import (
	"fmt"
	"strconv"
	"strings"
)

// Third-party responses are not uniform: different backends name "the image
// URL" or "the results array" differently, and some nest it. Rather than ad
// hoc branching at each call site, extraction is an explicit ordered strategy
// chain: each path is tried in sequence and the first hit wins. No hit is a
// descriptive decode error, never a silent zero value.

// =============================================================================
// EXTRACTION STRATEGIES
// =============================================================================

// ExtractString walks the decoded JSON object along each dot-separated path in
// order and returns the first non-empty string found. Path segments index maps
// by key and slices by decimal position (for example "data.0.url").
func ExtractString(obj map[string]any, paths ...string) (string, error) {
	for _, path := range paths {
		if v, ok := walk(obj, path); ok {
			if s, ok := v.(string); ok && s != "" {
				return s, nil
			}
		}
	}
	return "", fmt.Errorf("no string value at any of %s", strings.Join(paths, ", "))
}

// ExtractSlice returns the first non-empty slice found along the given paths.
func ExtractSlice(obj map[string]any, paths ...string) ([]any, error) {
	for _, path := range paths {
		if v, ok := walk(obj, path); ok {
			if s, ok := v.([]any); ok && len(s) > 0 {
				return s, nil
			}
		}
	}
	return nil, fmt.Errorf("no array value at any of %s", strings.Join(paths, ", "))
}

// walk follows one dot-separated path through nested maps and slices.
func walk(obj any, path string) (any, bool) {
	current := obj
	for _, seg := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			current = node[i]
		default:
			return nil, false
		}
	}
	return current, true
}
