package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	MusicBrainz   MusicBrainzConfig   `yaml:"musicbrainz"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the public API listener configuration.
type HTTPConfig struct {
	Address        string  `yaml:"address"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// MusicBrainzConfig holds MusicBrainz API client configuration.
type MusicBrainzConfig struct {
	BaseURL   string        `yaml:"base_url"`
	UserAgent string        `yaml:"user_agent"`
	SyncEvery time.Duration `yaml:"sync_every"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JWT.DefaultTTL = d
		}
	}
	if v := os.Getenv("MUSICBRAINZ_BASE_URL"); v != "" {
		cfg.MusicBrainz.BaseURL = v
	}
	if v := os.Getenv("MUSICBRAINZ_USER_AGENT"); v != "" {
		cfg.MusicBrainz.UserAgent = v
	}
	if v := os.Getenv("MUSICBRAINZ_SYNC_EVERY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.MusicBrainz.SyncEvery = d
		}
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	// Load Postgres DSN
	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	// Load NATS URL
	cfg.NATS.URL = os.Getenv("NATS_URL")
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	cfg.HTTP.Address = os.Getenv("HTTP_ADDRESS")
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if d, err := time.ParseDuration(os.Getenv("JWT_DEFAULT_TTL")); err == nil {
		cfg.JWT.DefaultTTL = d
	}
	cfg.MusicBrainz.BaseURL = os.Getenv("MUSICBRAINZ_BASE_URL")
	cfg.MusicBrainz.UserAgent = os.Getenv("MUSICBRAINZ_USER_AGENT")
	if d, err := time.ParseDuration(os.Getenv("MUSICBRAINZ_SYNC_EVERY")); err == nil {
		cfg.MusicBrainz.SyncEvery = d
	}
	cfg.Observability.MetricsAddress = os.Getenv("METRICS_ADDRESS") // optional; empty disables metrics
	cfg.Observability.Environment = os.Getenv("ENV")
	cfg.Observability.LogLevel = os.Getenv("LOG_LEVEL")

	cfg.applyDefaults()

	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.HTTP.RateLimitRPS == 0 {
		cfg.HTTP.RateLimitRPS = 10
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 20
	}
	if cfg.JWT.DefaultTTL == 0 {
		cfg.JWT.DefaultTTL = 24 * time.Hour
	}
	if cfg.MusicBrainz.BaseURL == "" {
		cfg.MusicBrainz.BaseURL = "https://musicbrainz.org/ws/2"
	}
	if cfg.MusicBrainz.UserAgent == "" {
		cfg.MusicBrainz.UserAgent = "spit-backend/1.0 (admin@spithierarchy.com)"
	}
	if cfg.MusicBrainz.SyncEvery == 0 {
		cfg.MusicBrainz.SyncEvery = 24 * time.Hour
	}
}
