// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for haven.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.haven/config.toml
//   - ~/.haven/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/haven-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete haven configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Completion endpoint configuration
	Completion CompletionConfig `toml:"completion" json:"completion"`

	// Generation parameters sent with every request
	Generation GenerationConfig `toml:"generation" json:"generation"`
}

// CompletionConfig describes how to reach the completion endpoint.
type CompletionConfig struct {
	// APIKey is the bearer credential for direct mode. Never exported.
	APIKey string `toml:"api_key" json:"api_key"`
	// UseProxy selects the local relay instead of the remote endpoint.
	UseProxy bool `toml:"use_proxy" json:"use_proxy"`
	// ProxyURL is the relay base URL used when UseProxy is true.
	ProxyURL string `toml:"proxy_url" json:"proxy_url"`
	// Endpoint is the remote completion base URL used in direct mode.
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// Model is the model identifier sent with every request.
	Model string `toml:"model" json:"model"`
}

// GenerationConfig holds the sampling parameters.
// Out-of-range values are clamped on load rather than rejected.
type GenerationConfig struct {
	Temperature float64 `toml:"temperature" json:"temperature"` // 0-2
	TopP        float64 `toml:"top_p" json:"top_p"`             // 0-1
	MaxTokens   int     `toml:"max_tokens" json:"max_tokens"`   // 1-4096
}

// Parameter bounds. The endpoint rejects values outside these ranges, so the
// config layer clamps rather than letting a bad file break every send.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinTopP        = 0.0
	MaxTopP        = 1.0
	MinMaxTokens   = 1
	MaxMaxTokens   = 4096
)

// RedactedKey is the placeholder written wherever the API key would appear
// in exported or displayed configuration.
const RedactedKey = "[redacted]"

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Completion: CompletionConfig{
			APIKey:   "",
			UseProxy: false,
			ProxyURL: "http://127.0.0.1:8787",
			Endpoint: "https://api.openai.com/v1",
			Model:    "gpt-4o-mini",
		},
		Generation: GenerationConfig{
			Temperature: 0.7,
			TopP:        1.0,
			MaxTokens:   1024,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the haven configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".haven"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from disk, preferring TOML over JSON, falling
// back to defaults when neither exists. Environment overrides are applied
// last, then values are clamped.
func Load() (*Config, error) {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return nil, err
	}

	cfg := Default()

	switch {
	case fileExists(tomlPath):
		if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", tomlPath, err)
		}
	case fileExists(jsonPath):
		data, err := os.ReadFile(jsonPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", jsonPath, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", jsonPath, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.Clamp()
	return cfg, nil
}

// LoadFrom reads a config from an explicit TOML path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyEnvOverrides()
	cfg.Clamp()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
// HAVEN_API_KEY wins over the file so the key can stay out of it entirely.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("HAVEN_API_KEY"); v != "" {
		c.Completion.APIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("HAVEN_ENDPOINT"); v != "" {
		c.Completion.Endpoint = v
	}
	if v := os.Getenv("HAVEN_PROXY_URL"); v != "" {
		c.Completion.ProxyURL = v
	}
	if v := os.Getenv("HAVEN_MODEL"); v != "" {
		c.Completion.Model = v
	}
}

// Clamp forces generation parameters into their valid ranges and fills
// empty endpoint fields from defaults.
func (c *Config) Clamp() {
	def := Default()

	if c.Generation.Temperature < MinTemperature {
		c.Generation.Temperature = MinTemperature
	}
	if c.Generation.Temperature > MaxTemperature {
		c.Generation.Temperature = MaxTemperature
	}
	if c.Generation.TopP < MinTopP {
		c.Generation.TopP = MinTopP
	}
	if c.Generation.TopP > MaxTopP {
		c.Generation.TopP = MaxTopP
	}
	if c.Generation.MaxTokens < MinMaxTokens {
		c.Generation.MaxTokens = def.Generation.MaxTokens
	}
	if c.Generation.MaxTokens > MaxMaxTokens {
		c.Generation.MaxTokens = MaxMaxTokens
	}

	if c.Completion.Endpoint == "" {
		c.Completion.Endpoint = def.Completion.Endpoint
	}
	if c.Completion.ProxyURL == "" {
		c.Completion.ProxyURL = def.Completion.ProxyURL
	}
	if c.Completion.Model == "" {
		c.Completion.Model = def.Completion.Model
	}
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the TOML config file.
// SECURITY: written 0600 because the file may hold the API key.
func (c *Config) Save() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(buf.String()), 0600)
}

// =============================================================================
// REDACTION
// =============================================================================

// Redacted returns a copy of the config safe for display and export: the
// API key is replaced with a placeholder when set.
func (c *Config) Redacted() *Config {
	clone := *c
	if clone.Completion.APIKey != "" {
		clone.Completion.APIKey = RedactedKey
	}
	return &clone
}

// HasAPIKey reports whether a non-empty API key is configured.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.Completion.APIKey) != ""
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
