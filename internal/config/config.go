package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for nucleai components. Environment
// variables are parsed from the NUCLEAI_ prefix. A Config is constructed once
// at process start and passed by reference to every component that needs it.
type Config struct {
	// SimDB Configuration
	SimDBUsername   string `envconfig:"SIMDB_USERNAME" default:""`
	SimDBPassword   string `envconfig:"SIMDB_PASSWORD" default:""`
	SimDBRemoteURL  string `envconfig:"SIMDB_REMOTE_URL" default:"https://simdb.iter.org/scenarios/api"`
	SimDBRemoteName string `envconfig:"SIMDB_REMOTE_NAME" default:"iter"`

	// Embedding Configuration (OpenAI-compatible endpoint, e.g. OpenRouter)
	EmbedAPIKey     string `envconfig:"EMBED_API_KEY" default:""`
	EmbedBaseURL    string `envconfig:"EMBED_BASE_URL" default:"https://openrouter.ai/api/v1"`
	EmbedModel      string `envconfig:"EMBED_MODEL" default:"openai/text-embedding-3-small"`
	EmbedDimensions int    `envconfig:"EMBED_DIMENSIONS" default:"1536"`

	// Search index (Weaviate, host:port without scheme)
	SearchIndexURL  string `envconfig:"SEARCH_INDEX_URL" default:"localhost:8080"`
	SearchClassName string `envconfig:"SEARCH_CLASS_NAME" default:"Simulation"`

	// HTTP behaviour
	RequestTimeoutSeconds int `envconfig:"REQUEST_TIMEOUT_SECONDS" default:"30"`
	MaxRetries            int `envconfig:"MAX_RETRIES" default:"3"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// ResolveDefaults validates settings that envconfig cannot express.
func (c *Config) ResolveDefaults() error {
	if c.EmbedDimensions <= 0 {
		return fmt.Errorf("EMBED_DIMENSIONS must be positive, got %d", c.EmbedDimensions)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.RequestTimeoutSeconds)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must be non-negative, got %d", c.MaxRetries)
	}
	return nil
}

// New creates a Config by parsing environment variables.
// Environment variables should be prefixed with NUCLEAI_
// Example: NUCLEAI_SIMDB_USERNAME, NUCLEAI_EMBED_MODEL
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("NUCLEAI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("simdb_url", cfg.SimDBRemoteURL).
		Str("simdb_remote", cfg.SimDBRemoteName).
		Str("embed_model", cfg.EmbedModel).
		Int("embed_dimensions", cfg.EmbedDimensions).
		Str("search_index_url", cfg.SearchIndexURL).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		SimDBUsername:         "test_user",
		SimDBPassword:         "test_pass",
		SimDBRemoteURL:        "http://localhost:9999/api",
		SimDBRemoteName:       "test",
		EmbedAPIKey:           "test-key",
		EmbedBaseURL:          "http://localhost:9998/v1",
		EmbedModel:            "openai/text-embedding-3-small",
		EmbedDimensions:       1536,
		SearchIndexURL:        "localhost:8082",
		SearchClassName:       "SimulationTest",
		RequestTimeoutSeconds: 5,
		MaxRetries:            1,
		LogLevel:              "debug",
	}
}

// HasSimDBCredentials reports whether both SimDB credentials are present.
func (c *Config) HasSimDBCredentials() bool {
	return c.SimDBUsername != "" && c.SimDBPassword != ""
}
