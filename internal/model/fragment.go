// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// CODE FRAGMENT
// =============================================================================

// CodeFragment is a runnable code block extracted from an assistant message.
// Fragments are ephemeral: recomputed from message content on demand, never
// stored independently. Multiple fragments from one message keep source order.
type CodeFragment struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// =============================================================================
// EXECUTION RESULT
// =============================================================================

// ExecutionStatus is the sandbox's verdict for one submission.
type ExecutionStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// StatusAccepted is the sandbox's description for a successful run.
// Any other description conveys a failure category.
const StatusAccepted = "Accepted"

// ExecutionResult is the execution collaborator's response shape. It is
// treated as opaque except for the status fields used to classify the verdict.
type ExecutionResult struct {
	Stdout        string          `json:"stdout"`
	Stderr        string          `json:"stderr"`
	CompileOutput string          `json:"compile_output"`
	Message       string          `json:"message"`
	Status        ExecutionStatus `json:"status"`
}

// Accepted returns true if the sandbox reported a clean run.
func (r ExecutionResult) Accepted() bool {
	return r.Status.Description == StatusAccepted
}
