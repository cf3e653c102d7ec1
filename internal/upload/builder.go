// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload turns user-attached files into transcript-ready descriptors
// and drives their analysis lifecycle.
package upload

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Naziz2/hanibal-ai-chat/internal/model"
)

// =============================================================================
// DESCRIPTOR BUILDER
// =============================================================================

// Incoming is one file as received from the presentation layer.
type Incoming struct {
	Name string
	MIME string
	Data []byte
}

// Rejection reports why a file was not accepted.
type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Policy bounds a batch-add.
type Policy struct {
	MaxFiles     int
	MaxSizeBytes int64
}

// textMIMEFragments is the allow-list of MIME substrings treated as text.
var textMIMEFragments = []string{"json", "csv", "markdown", "xml", "yaml", "javascript", "x-sh"}

// textExtensions is the allow-list of extensions treated as text when the
// MIME type is missing or opaque (browsers often report source files as
// application/octet-stream).
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".json": true, ".csv": true, ".xml": true,
	".yaml": true, ".yml": true, ".toml": true, ".ini": true, ".log": true,
	".js": true, ".ts": true, ".jsx": true, ".tsx": true, ".py": true,
	".go": true, ".java": true, ".c": true, ".h": true, ".cpp": true,
	".cs": true, ".rb": true, ".rs": true, ".php": true, ".kt": true,
	".swift": true, ".sh": true, ".html": true, ".css": true, ".sql": true,
}

// Build validates a batch-add against the policy and produces descriptors for
// the accepted files. It mutates nothing; the conversation orchestrator owns
// the staging area.
//
// The whole batch is rejected when it would push the staged count past
// MaxFiles. Oversized files are rejected individually and do not block their
// siblings.
func Build(files []Incoming, existingCount int, policy Policy) (accepted []*model.UploadedFile, rejected []Rejection) {
	if existingCount+len(files) > policy.MaxFiles {
		for _, f := range files {
			rejected = append(rejected, Rejection{
				Name:   f.Name,
				Reason: fmt.Sprintf("batch exceeds the %d-file limit", policy.MaxFiles),
			})
		}
		return nil, rejected
	}

	for _, f := range files {
		if int64(len(f.Data)) > policy.MaxSizeBytes {
			rejected = append(rejected, Rejection{
				Name:   f.Name,
				Reason: fmt.Sprintf("file exceeds the %d MB size limit", policy.MaxSizeBytes/(1024*1024)),
			})
			continue
		}
		accepted = append(accepted, newDescriptor(f))
	}
	return accepted, rejected
}

// newDescriptor reads one file into a descriptor, choosing the content
// encoding once: text-like files become UTF-8 strings, everything else a
// base64 data-URL.
func newDescriptor(f Incoming) *model.UploadedFile {
	d := &model.UploadedFile{
		ID:             model.NewFileID(),
		Name:           f.Name,
		Type:           f.MIME,
		Size:           int64(len(f.Data)),
		Data:           f.Data,
		AnalysisStatus: model.AnalysisPending,
	}

	if IsTextLike(f.Name, f.MIME) && utf8.Valid(f.Data) {
		d.Content = string(f.Data)
		d.IsText = true
	} else {
		d.Content = dataURL(f.MIME, f.Data)
	}

	if strings.HasPrefix(strings.ToLower(f.MIME), "image/") {
		d.Preview = dataURL(f.MIME, f.Data)
	}
	return d
}

// IsTextLike applies the explicit allow-list for text content. Files not
// matching are opaque binary, no guessing.
func IsTextLike(name, mime string) bool {
	mt := strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	for _, frag := range textMIMEFragments {
		if strings.Contains(mt, frag) {
			return true
		}
	}
	return textExtensions[strings.ToLower(filepath.Ext(name))]
}

// dataURL encodes bytes as a base64 data-URL.
func dataURL(mime string, data []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
