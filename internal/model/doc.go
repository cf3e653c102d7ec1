// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript, staged
// uploads, and execution results.
//
// # Key Types
//
//   - Transcript: append-only message log with replace-by-id resolution
//   - Message: single transcript entry (user or assistant placeholder)
//   - UploadedFile: in-memory descriptor for one user-attached file
//   - UploadBatch: staging area for the next turn's attachments
//   - CodeFragment: runnable code block extracted from a message
//   - ExecutionResult: sandbox collaborator response shape
//
// # Usage
//
// Append a user message and an assistant placeholder, then resolve the
// placeholder by id once the provider call settles:
//
//	tr := model.NewTranscript()
//	tr.Append(model.NewUserMessage("hello"))
//	id := tr.Append(model.NewAssistantPlaceholder("gpt-4o"))
//	// ... provider call ...
//	tr.Resolve(id, "hi there")
package model
