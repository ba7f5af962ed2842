package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the memory-friend service.
// Environment variables are parsed from the MEMORY_FRIEND_ prefix.
type Config struct {
	// Build target selects high-level environment: local, cloud-dev, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"cloud-dev"`

	// Derived or override driver
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres Configuration (cloud targets)
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// SQLite Configuration (local target)
	SQLitePath string `envconfig:"SQLITE_PATH" default:"memory-friend.db"`

	// Managed auth/storage backend (session validation, object storage)
	BackendURL string `envconfig:"BACKEND_URL" default:""`
	BackendKey string `envconfig:"BACKEND_KEY" default:""`

	// Generative AI configuration. Models is an ordered fallback list; the
	// first entry is always tried first.
	GenerativeAPIKey  string   `envconfig:"GENERATIVE_API_KEY" default:""`
	GenerativeBaseURL string   `envconfig:"GENERATIVE_BASE_URL" default:""`
	GenerativeModels  []string `envconfig:"GENERATIVE_MODELS" default:"gpt-4o-mini,gpt-4o,gpt-4.1-mini"`

	// Elder-local timezone used for daily summary day bounds.
	SummaryTimeZone string `envconfig:"SUMMARY_TIME_ZONE" default:"Local"`

	// DevBypassAuth disables session checks entirely. Local development only.
	DevBypassAuth bool `envconfig:"DEV_BYPASS_AUTH" default:"false"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud-dev", "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	return nil
}

// AIEnabled reports whether generative calls are configured at all.
// Without a key the service runs in keyword-fallback mode only.
func (c *Config) AIEnabled() bool {
	return c.GenerativeAPIKey != "" && len(c.GenerativeModels) > 0
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with MEMORY_FRIEND_
// Example: MEMORY_FRIEND_HTTP_PORT, MEMORY_FRIEND_POSTGRES_DSN
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("MEMORY_FRIEND", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Bool("ai_enabled", cfg.AIEnabled()).
		Str("generative_models", strings.Join(cfg.GenerativeModels, ",")).
		Bool("dev_bypass_auth", cfg.DevBypassAuth).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment:      EnvTesting,
		BuildTarget:      "local",
		DBDriver:         "auto",
		HTTPPort:         8080,
		SQLitePath:       ":memory:",
		GenerativeModels: []string{"gpt-4o-mini"},
		SummaryTimeZone:  "UTC",
		DevBypassAuth:    true,

		HealthIntervalSeconds:     30,
		HealthProbeTimeoutSeconds: 2,
	}
	if err := cfg.ResolveDefaults(); err != nil {
		panic(err)
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
