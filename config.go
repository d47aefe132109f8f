package examgen

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreNone     = "none"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config is the top-level service configuration.
type Config struct {
	Listen   string         `yaml:"listen"`
	Provider ProviderConfig `yaml:"provider"`
	Store    StoreConfig    `yaml:"store"`
	Limits   LimitsConfig   `yaml:"limits"`
}

// ProviderConfig configures the text-generation provider.
type ProviderConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
}

// StoreConfig configures the credential balance store.
type StoreConfig struct {
	// Backend selects the store: "none" (degraded, address limiting
	// only), "memory", "redis", or "postgres".
	Backend  string         `yaml:"backend"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// LimitsConfig configures the address-based admission windows.
type LimitsConfig struct {
	PerMinute int `yaml:"per_minute"`
	PerDay    int `yaml:"per_day"`
}

// Rules returns the configured windows as limiter rules.
func (l LimitsConfig) Rules() []Rule {
	return []Rule{
		{Count: l.PerMinute, Per: time.Minute},
		{Count: l.PerDay, Per: 24 * time.Hour},
	}
}

// LoadConfig reads and parses a YAML config file.
// Environment variables in the format ${VAR} are expanded before parsing.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("examgen: read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := defaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("examgen: parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Listen: ":5000",
		Provider: ProviderConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Store: StoreConfig{Backend: StoreNone},
		Limits: LimitsConfig{
			PerMinute: 2,
			PerDay:    50,
		},
	}
}

// Validate checks the config for required fields and consistency.
func (c Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("examgen: config: listen address is required")
	}
	if c.Provider.APIKey == "" {
		return fmt.Errorf("examgen: config: provider.api_key is required")
	}
	if c.Provider.Model == "" {
		return fmt.Errorf("examgen: config: provider.model is required")
	}

	switch c.Store.Backend {
	case StoreNone, StoreMemory:
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("examgen: config: store.redis.addr is required for the redis backend")
		}
	case StorePostgres:
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("examgen: config: store.postgres.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("examgen: config: unknown store backend %q", c.Store.Backend)
	}

	if c.Limits.PerMinute <= 0 || c.Limits.PerDay <= 0 {
		return fmt.Errorf("examgen: config: limits must be positive")
	}

	return nil
}
