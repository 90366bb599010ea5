// Package config loads process configuration from the environment. All
// variables share the REAGENT_ prefix, e.g. REAGENT_MODEL_PROVIDER or
// REAGENT_MAX_ITERATIONS.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Supported model provider selections.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// Supported memory backend selections.
const (
	MemoryBackendInMemory = "memory"
	MemoryBackendSQLite   = "sqlite"
)

// Config is the process configuration for reagent binaries.
type Config struct {
	// ModelProvider selects the model adapter: anthropic, openai or mock.
	ModelProvider string `envconfig:"MODEL_PROVIDER" default:"anthropic"`
	// ModelID overrides the provider's default model identifier.
	ModelID string `envconfig:"MODEL_ID"`
	// MaxIterations bounds reasoning rounds per invocation.
	MaxIterations int `envconfig:"MAX_ITERATIONS" default:"3"`
	// MemoryBackend selects the memory provider: memory or sqlite.
	MemoryBackend string `envconfig:"MEMORY_BACKEND" default:"memory"`
	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `envconfig:"SQLITE_PATH" default:"reagent.db"`
	// Debug augments responses with in-session reasoning history.
	Debug bool `envconfig:"DEBUG" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("reagent", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enum fields and bounds.
func (c *Config) Validate() error {
	switch c.ModelProvider {
	case ProviderAnthropic, ProviderOpenAI, ProviderMock:
	default:
		return fmt.Errorf("invalid model provider %q", c.ModelProvider)
	}
	switch c.MemoryBackend {
	case MemoryBackendInMemory, MemoryBackendSQLite:
	default:
		return fmt.Errorf("invalid memory backend %q", c.MemoryBackend)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max iterations must be positive, got %d", c.MaxIterations)
	}
	return nil
}
