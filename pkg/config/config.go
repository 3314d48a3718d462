// Package config loads estima-engine configuration.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for estima-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values. Secrets (passwords, API
// keys) must only come from environment variables.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Database   DatabaseConfig   `yaml:"database"`
	AI         AIConfig         `yaml:"ai"`
	Estimation EstimationConfig `yaml:"estimation"`
	Extraction ExtractionConfig `yaml:"extraction"`

	// MigrationsPath is where SQL migrations live, applied at startup.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"estima"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"estima_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// AIConfig holds the text-generation endpoint used for requirement extraction
// and factor suggestions. The estimation core works without it; extraction
// endpoints fail with a descriptive error when no key is set.
type AIConfig struct {
	// Provider selects the client implementation: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	BaseURL  string `yaml:"base_url" env:"AI_BASE_URL" env-default:""`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:""`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
}

// IsConfigured returns true if an extraction model is usable.
func (c *AIConfig) IsConfigured() bool {
	return c.Model != "" && c.APIKey != ""
}

// EstimationConfig tunes the effort formula.
type EstimationConfig struct {
	// AdditiveOnEmpty controls whether flat additive parameters still
	// contribute when a requirement has no function point entries.
	// Default off: an empty requirement estimates to zero.
	AdditiveOnEmpty bool `yaml:"additive_on_empty" env:"ESTIMATION_ADDITIVE_ON_EMPTY" env-default:"false"`
}

// ExtractionConfig tunes the AI extraction pipeline.
type ExtractionConfig struct {
	// MaxConcurrent caps in-flight LLM calls while describing extracted
	// requirement titles.
	MaxConcurrent int `yaml:"max_concurrent" env:"EXTRACTION_MAX_CONCURRENT" env-default:"4"`
	// MaxRetries caps retries per LLM call on transient failures.
	MaxRetries int `yaml:"max_retries" env:"EXTRACTION_MAX_RETRIES" env-default:"3"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time. When no
// config.yaml exists, environment variables and defaults alone apply.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if cfg.Extraction.MaxConcurrent < 1 {
		cfg.Extraction.MaxConcurrent = 1
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
