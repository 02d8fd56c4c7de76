// Package config loads the VM host's run defaults and capability endpoint
// settings via koanf: an optional YAML file overlaid by ATOMVM_-prefixed
// environment variables.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the VM host's full configuration: logging, default run
// budget, and capability backend endpoints.
type Config struct {
	Log   LogConfig   `koanf:"log"`
	Run   RunConfig   `koanf:"run"`
	HTTP  HTTPConfig  `koanf:"http"`
	Store StoreConfig `koanf:"store"`
	LLM   LLMConfig   `koanf:"llm"`
	Agent AgentConfig `koanf:"agent"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

// RunConfig carries the defaults vm.Run falls back to when an options
// field is unset.
type RunConfig struct {
	DefaultFuel          int `koanf:"default_fuel"`
	DefaultAtomTimeoutMs int `koanf:"default_atom_timeout_ms"`
}

// HTTPConfig configures the http.fetch capability's underlying client.
type HTTPConfig struct {
	TimeoutMs int `koanf:"timeout_ms"`
}

// StoreConfig configures the store.* capability backends: a key/value
// store and the vector search backend.
type StoreConfig struct {
	Provider         string `koanf:"provider"` // inmemory, qdrant
	QdrantAddr       string `koanf:"qdrant_addr"`
	EmbedderProvider string `koanf:"embedder_provider"` // ollama
	EmbedderBaseURL  string `koanf:"embedder_base_url"`
	EmbedderModel    string `koanf:"embedder_model"`
}

// LLMConfig configures the llm.predict/llm.embed capability backend.
type LLMConfig struct {
	Provider string `koanf:"provider"` // ollama
	Model    string `koanf:"model"`
	BaseURL  string `koanf:"base_url"`
	APIKey   string `koanf:"api_key"`
}

// AgentConfig configures the agent.run capability backend: an MCP tool
// server launched over stdio.
type AgentConfig struct {
	Provider string   `koanf:"provider"` // mcp
	Command  string   `koanf:"command"`
	Args     []string `koanf:"args"`
}

// Global k instance
var k = koanf.New(".")

// Load reads config from an optional YAML file at path, then overlays
// ATOMVM_-prefixed environment variables (e.g. ATOMVM_RUN_DEFAULT_FUEL
// overrides run.default_fuel).
func Load(path string) (*Config, error) {
	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("run.default_fuel", 1000)
	k.Set("run.default_atom_timeout_ms", 0)

	k.Set("http.timeout_ms", 30000)

	k.Set("store.provider", "inmemory")
	k.Set("store.qdrant_addr", "localhost:6334")
	k.Set("store.embedder_provider", "ollama")
	k.Set("store.embedder_base_url", "http://localhost:11434")
	k.Set("store.embedder_model", "nomic-embed-text")

	k.Set("llm.provider", "ollama")
	k.Set("llm.model", "qwen2.5-coder:7b-instruct-q5_K_M")
	k.Set("llm.base_url", "http://localhost:11434")

	k.Set("agent.provider", "")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (ATOMVM_LLM_PROVIDER -> llm.provider). Only the first
	// underscore separates section from key, so ATOMVM_RUN_DEFAULT_FUEL maps
	// to run.default_fuel.
	if err := k.Load(env.Provider("ATOMVM_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "ATOMVM_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
