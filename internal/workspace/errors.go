// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import "strings"

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// errorPattern maps a substring of a collaborator failure to a user-facing
// category message.
type errorPattern struct {
	substring string
	message   string
}

// errorPatterns is checked in order, most specific first. The first matching
// pattern wins.
var errorPatterns = []errorPattern{
	{"time limit exceeded", "Execution timed out. Your code took too long to run."},
	{"timeout", "Execution timed out. Your code took too long to run."},
	{"memory limit", "Memory limit exceeded. Your code used too much memory."},
	{"out of memory", "Memory limit exceeded. Your code used too much memory."},
	{"nzec", "Runtime error. Your program exited with a non-zero status."},
	{"runtime error", "Runtime error. Your program exited with a non-zero status."},
	{"compil", "Compilation error. Check your code for syntax mistakes."},
}

// troubleshooting is appended to every classified failure.
const troubleshooting = `
Troubleshooting suggestions:
- Check your code for syntax errors
- Make sure all required input is provided
- Reduce the program's runtime or memory use
- Try running a smaller piece of the code`

// classifyError maps a raw failure message to a user-facing report. Messages
// matching no pattern pass through as-is; the troubleshooting block is
// appended either way.
func classifyError(raw string) string {
	lower := strings.ToLower(raw)
	for _, p := range errorPatterns {
		if strings.Contains(lower, p.substring) {
			return p.message + "\n" + troubleshooting
		}
	}
	return raw + "\n" + troubleshooting
}
