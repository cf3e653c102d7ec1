// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management.
//
// Supports TOML configuration with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - path passed to LoadFrom
//   - ~/.hanibal/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Providers ProvidersConfig `toml:"providers"`
	Uploads   UploadsConfig   `toml:"uploads"`
	Analysis  AnalysisConfig  `toml:"analysis"`
	Chat      ChatConfig      `toml:"chat"`
	Sandbox   SandboxConfig   `toml:"sandbox"`
	Search    SearchConfig    `toml:"search"`
}

// ServerConfig contains the HTTP API server settings.
type ServerConfig struct {
	// Port is the listen port for the presentation API.
	Port int `toml:"port"`
}

// ProvidersConfig contains per-provider credentials and endpoints.
type ProvidersConfig struct {
	// Default is the provider selected at startup.
	Default string `toml:"default"`

	Groq   ProviderKey `toml:"groq"`
	OpenAI ProviderKey `toml:"openai"`
	Gemini ProviderKey `toml:"gemini"`
}

// ProviderKey holds one provider's credential and optional endpoint override.
type ProviderKey struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// UploadsConfig contains the file attachment policy.
type UploadsConfig struct {
	// MaxFiles is the maximum number of files staged at once.
	MaxFiles int `toml:"max_files"`
	// MaxSizeMB is the per-file size ceiling in megabytes.
	MaxSizeMB int `toml:"max_size_mb"`
}

// MaxSizeBytes returns the per-file size ceiling in bytes.
func (u UploadsConfig) MaxSizeBytes() int64 {
	return int64(u.MaxSizeMB) * 1024 * 1024
}

// AnalysisConfig controls when attached files are analyzed.
type AnalysisConfig struct {
	// Policy is one of "always", "keyword", "never".
	// "always": analyze every attached file before the provider call.
	// "keyword": analyze only when the user's text looks like an analysis request.
	// "never": skip analysis; payloads carry truncated raw content.
	Policy string `toml:"policy"`
}

// Analysis policy values.
const (
	PolicyAlways  = "always"
	PolicyKeyword = "keyword"
	PolicyNever   = "never"
)

// ChatConfig contains payload-shaping settings for the chat path.
type ChatConfig struct {
	// HistoryLimit bounds the number of prior messages sent to the provider.
	HistoryLimit int `toml:"history_limit"`
	// FileCharBudget caps the characters of raw file content rendered into
	// a provider payload before the truncation marker applies.
	FileCharBudget int `toml:"file_char_budget"`
}

// SandboxConfig contains the remote execution sandbox settings.
type SandboxConfig struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
	// CPUTimeLimit is the sandbox CPU budget in seconds per submission.
	CPUTimeLimit float64 `toml:"cpu_time_limit"`
	// WallTimeLimit is the sandbox wall-clock budget in seconds per submission.
	WallTimeLimit float64 `toml:"wall_time_limit"`
}

// SearchConfig contains web-search collaborator settings.
type SearchConfig struct {
	BaseURL    string `toml:"base_url"`
	MaxResults int    `toml:"max_results"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8790},
		Providers: ProvidersConfig{
			Default: "groq",
			Groq:    ProviderKey{BaseURL: "https://api.groq.com/openai/v1"},
		},
		Uploads: UploadsConfig{
			MaxFiles:  5,
			MaxSizeMB: 10,
		},
		Analysis: AnalysisConfig{Policy: PolicyAlways},
		Chat: ChatConfig{
			HistoryLimit:   10,
			FileCharBudget: 50000,
		},
		Sandbox: SandboxConfig{
			URL:           "https://judge0-ce.p.rapidapi.com",
			CPUTimeLimit:  5,
			WallTimeLimit: 10,
		},
		Search: SearchConfig{
			BaseURL:    "https://html.duckduckgo.com/html/",
			MaxResults: 5,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".hanibal", "config.toml")
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from the default location, falling back to
// defaults when no file exists. Environment overrides are always applied.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads configuration from the given path. A missing file is not an
// error; defaults are used. A malformed file is an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies HANIBAL_* environment variables over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("HANIBAL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("HANIBAL_GROQ_API_KEY"); v != "" {
		c.Providers.Groq.APIKey = v
	}
	if v := os.Getenv("HANIBAL_OPENAI_API_KEY"); v != "" {
		c.Providers.OpenAI.APIKey = v
	}
	if v := os.Getenv("HANIBAL_GEMINI_API_KEY"); v != "" {
		c.Providers.Gemini.APIKey = v
	}
	if v := os.Getenv("HANIBAL_SANDBOX_API_KEY"); v != "" {
		c.Sandbox.APIKey = v
	}
	if v := os.Getenv("HANIBAL_ANALYSIS_POLICY"); v != "" {
		c.Analysis.Policy = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks configuration invariants, clamping recoverable values and
// rejecting unusable ones.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	switch c.Analysis.Policy {
	case PolicyAlways, PolicyKeyword, PolicyNever:
	default:
		return fmt.Errorf("invalid analysis policy %q (want always, keyword, or never)", c.Analysis.Policy)
	}

	if c.Uploads.MaxFiles <= 0 {
		c.Uploads.MaxFiles = 5
	}
	if c.Uploads.MaxSizeMB <= 0 {
		c.Uploads.MaxSizeMB = 10
	}
	if c.Chat.HistoryLimit <= 0 {
		c.Chat.HistoryLimit = 10
	}
	if c.Chat.FileCharBudget <= 0 {
		c.Chat.FileCharBudget = 50000
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 5
	}
	if c.Sandbox.CPUTimeLimit <= 0 {
		c.Sandbox.CPUTimeLimit = 5
	}
	if c.Sandbox.WallTimeLimit <= 0 {
		c.Sandbox.WallTimeLimit = 10
	}
	return nil
}

// Save writes the configuration to the given path as TOML.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
