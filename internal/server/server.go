// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes the chat core to the browser front end as a JSON API.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Naziz2/hanibal-ai-chat/internal/chat"
	"github.com/Naziz2/hanibal-ai-chat/internal/codeblock"
	"github.com/Naziz2/hanibal-ai-chat/internal/config"
	"github.com/Naziz2/hanibal-ai-chat/internal/detect"
	"github.com/Naziz2/hanibal-ai-chat/internal/model"
	"github.com/Naziz2/hanibal-ai-chat/internal/provider"
	"github.com/Naziz2/hanibal-ai-chat/internal/upload"
	"github.com/Naziz2/hanibal-ai-chat/internal/workspace"
)

// maxUploadMemory bounds the in-memory portion of a multipart upload parse.
const maxUploadMemory = 16 << 20

// Server is the HTTP API server.
type Server struct {
	cfg       *config.Config
	registry  *provider.Registry
	orch      *chat.Orchestrator
	workspace *workspace.Controller
	router    chi.Router
}

// New creates a server over the assembled core.
func New(cfg *config.Config, registry *provider.Registry, orch *chat.Orchestrator, ws *workspace.Controller) *Server {
	s := &Server{
		cfg:       cfg,
		registry:  registry,
		orch:      orch,
		workspace: ws,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the assembled router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the context is cancelled, then shuts down gracefully and
// drains in-flight turns.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(s.cfg.Server.Port),
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("hanibal server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	s.orch.Wait()
	return nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.Get("/providers", s.handleListProviders)
		r.Put("/provider", s.handleSelectProvider)

		r.Get("/messages", s.handleListMessages)
		r.Post("/messages", s.handleSubmitTurn)
		r.Delete("/messages", s.handleResetTranscript)
		r.Get("/messages/{id}/blocks", s.handleMessageBlocks)

		r.Get("/files", s.handleListFiles)
		r.Post("/files", s.handleUploadFiles)
		r.Delete("/files", s.handleClearFiles)
		r.Delete("/files/{id}", s.handleRemoveFile)

		r.Get("/languages", s.handleListLanguages)
		r.Get("/execute", s.handleExecutionState)
		r.Post("/execute", s.handleExecute)
	})

	// Health check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return r
}

// --- Request/Response types ---

type selectProviderRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type providersResponse struct {
	Providers       []provider.Provider `json:"providers"`
	CurrentProvider string              `json:"current_provider"`
	CurrentModel    string              `json:"current_model"`
}

type submitTurnRequest struct {
	Text      string `json:"text"`
	WebSearch bool   `json:"web_search"`
}

type uploadResponse struct {
	Accepted []model.UploadedFile `json:"accepted"`
	Rejected []upload.Rejection   `json:"rejected"`
}

type messageBlocksResponse struct {
	HTML      string               `json:"html"`
	Fragments []model.CodeFragment `json:"fragments"`
}

type executeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Stdin    string `json:"stdin"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// --- Provider handlers ---

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	p, m := s.registry.Current()
	writeJSON(w, http.StatusOK, providersResponse{
		Providers:       s.registry.Providers(),
		CurrentProvider: p.ID,
		CurrentModel:    m.ID,
	})
}

func (s *Server) handleSelectProvider(w http.ResponseWriter, r *http.Request) {
	var req selectProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.registry.Select(req.Provider, req.Model); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.handleListProviders(w, r)
}

// --- Message handlers ---

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.Transcript().Messages())
}

func (s *Server) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	var req submitTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.orch.Submit(r.Context(), chat.Turn{Text: req.Text, WebSearch: req.WebSearch}); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// The turn's synchronous portion is complete: the user entry and its
	// placeholder are already visible.
	writeJSON(w, http.StatusAccepted, s.orch.Transcript().Messages())
}

func (s *Server) handleResetTranscript(w http.ResponseWriter, r *http.Request) {
	s.orch.Transcript().Reset()
	s.orch.Batch().Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMessageBlocks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	msg, ok := s.orch.Transcript().Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}

	writeJSON(w, http.StatusOK, messageBlocksResponse{
		HTML:      codeblock.RenderHTML(msg.Content),
		Fragments: codeblock.Extract(msg.Content),
	})
}

// --- File handlers ---

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.Batch().Files())
}

func (s *Server) handleUploadFiles(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var incoming []upload.Incoming
	for _, headers := range r.MultipartForm.File {
		for _, hdr := range headers {
			f, err := hdr.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "unreadable file "+hdr.Filename)
				return
			}
			data, err := io.ReadAll(io.LimitReader(f, s.cfg.Uploads.MaxSizeBytes()+1))
			f.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, "unreadable file "+hdr.Filename)
				return
			}
			incoming = append(incoming, upload.Incoming{
				Name: hdr.Filename,
				MIME: hdr.Header.Get("Content-Type"),
				Data: data,
			})
		}
	}

	accepted, rejected := upload.Build(incoming, s.orch.Batch().Len(), upload.Policy{
		MaxFiles:     s.cfg.Uploads.MaxFiles,
		MaxSizeBytes: s.cfg.Uploads.MaxSizeBytes(),
	})
	s.orch.Batch().Add(accepted...)

	resp := uploadResponse{Rejected: rejected}
	for _, f := range accepted {
		resp.Accepted = append(resp.Accepted, *f)
	}
	status := http.StatusOK
	if len(accepted) == 0 && len(rejected) > 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	if !s.orch.Batch().Remove(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearFiles(w http.ResponseWriter, r *http.Request) {
	s.orch.Batch().Clear()
	w.WriteHeader(http.StatusNoContent)
}

// --- Execution handlers ---

func (s *Server) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, detect.Supported())
}

func (s *Server) handleExecutionState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.workspace.State())
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	s.workspace.Run(r.Context(), model.CodeFragment{Code: req.Code, Language: req.Language}, req.Stdin)
	writeJSON(w, http.StatusOK, s.workspace.State())
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
