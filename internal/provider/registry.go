// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider holds the static catalog of chat providers and the
// current-selection state.
package provider

import (
	"fmt"
	"strings"
	"sync"
)

// =============================================================================
// CAPABILITY TYPE
// =============================================================================

// Capability distinguishes text-generation providers from image generation.
type Capability string

const (
	CapabilityText  Capability = "text"
	CapabilityImage Capability = "image"
)

// =============================================================================
// PROVIDER AND MODEL TYPES
// =============================================================================

// Model describes one selectable model.
type Model struct {
	// ID is the identifier used in API calls.
	ID string `json:"id"`
	// Name is the human-readable display name.
	Name string `json:"name"`
	// AlternateStyle marks image models routed to the alternate backend.
	AlternateStyle bool `json:"alternate_style,omitempty"`
}

// Provider describes one provider and its models.
// Providers are static configuration: never created or destroyed at runtime.
type Provider struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Capability Capability `json:"capability"`
	Models     []Model    `json:"models"`
}

// HasModel reports whether the provider offers the given model id.
func (p Provider) HasModel(modelID string) bool {
	for _, m := range p.Models {
		if m.ID == modelID {
			return true
		}
	}
	return false
}

// DefaultModel returns the provider's first model.
func (p Provider) DefaultModel() Model {
	return p.Models[0]
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog returns the static provider catalog.
func Catalog() []Provider {
	return []Provider{
		{
			ID:         "groq",
			Name:       "Groq",
			Capability: CapabilityText,
			Models: []Model{
				{ID: "llama-3.3-70b-versatile", Name: "Llama 3.3 70B"},
				{ID: "llama-3.1-8b-instant", Name: "Llama 3.1 8B"},
				{ID: "mixtral-8x7b-32768", Name: "Mixtral 8x7B"},
			},
		},
		{
			ID:         "openai",
			Name:       "OpenAI",
			Capability: CapabilityText,
			Models: []Model{
				{ID: "gpt-4o", Name: "GPT-4o"},
				{ID: "gpt-4o-mini", Name: "GPT-4o Mini"},
			},
		},
		{
			ID:         "gemini",
			Name:       "Google Gemini",
			Capability: CapabilityText,
			Models: []Model{
				{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash"},
				{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro"},
			},
		},
		{
			ID:         "pollinations",
			Name:       "Image Generation",
			Capability: CapabilityImage,
			Models: []Model{
				{ID: "flux", Name: "Flux"},
				{ID: "turbo", Name: "Turbo", AlternateStyle: true},
			},
		},
	}
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry exposes the catalog plus mutable selection state. The invariant it
// maintains is that the current model always belongs to the current provider.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	byID      map[string]Provider

	currentProvider string
	currentModel    string
}

// NewRegistry creates a registry over the static catalog with the given
// provider selected. An unknown default falls back to the first catalog entry.
func NewRegistry(defaultProvider string) *Registry {
	providers := Catalog()
	byID := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byID[p.ID] = p
	}

	r := &Registry{
		providers: providers,
		byID:      byID,
	}

	if _, ok := byID[defaultProvider]; !ok {
		defaultProvider = providers[0].ID
	}
	r.currentProvider = defaultProvider
	r.currentModel = byID[defaultProvider].DefaultModel().ID
	return r
}

// Providers returns a copy of the catalog.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Get returns the provider with the given id.
func (r *Registry) Get(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// Current returns the selected provider and model.
func (r *Registry) Current() (Provider, Model) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := r.byID[r.currentProvider]
	for _, m := range p.Models {
		if m.ID == r.currentModel {
			return p, m
		}
	}
	return p, p.DefaultModel()
}

// Select changes the current provider and model. An empty modelID selects the
// provider's default model. Selecting a model outside the provider's catalog
// is rejected, preserving the registry invariant.
func (r *Registry) Select(providerID, modelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[providerID]
	if !ok {
		return fmt.Errorf("unknown provider %q", providerID)
	}

	if modelID == "" {
		modelID = p.DefaultModel().ID
	} else if !p.HasModel(modelID) {
		return fmt.Errorf("model %q does not belong to provider %q", modelID, providerID)
	}

	r.currentProvider = providerID
	r.currentModel = modelID
	return nil
}

// ImageSelected reports whether the current provider generates images.
func (r *Registry) ImageSelected() bool {
	p, _ := r.Current()
	return p.Capability == CapabilityImage
}

// String renders the current selection for logging.
func (r *Registry) String() string {
	p, m := r.Current()
	return strings.Join([]string{p.ID, m.ID}, "/")
}
