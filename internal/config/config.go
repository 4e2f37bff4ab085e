// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds server configuration parsed from EOM_* variables
type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Storage     string `env:"STORAGE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RoomTTL    time.Duration `env:"ROOM_TTL" envDefault:"24h"`

	TickInterval      time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	SweepInterval     time.Duration `env:"SWEEP_INTERVAL" envDefault:"60s"`
	FinishedRetention time.Duration `env:"FINISHED_RETENTION" envDefault:"10m"`
	WaitingExpiry     time.Duration `env:"WAITING_EXPIRY" envDefault:"2h"`

	MaxCreditPerRequest  int64 `env:"MAX_CREDIT_PER_REQUEST" envDefault:"10000"`
	MaxOutstandingCredit int64 `env:"MAX_OUTSTANDING_CREDIT" envDefault:"0"`
}

// Load parses the environment into a validated Config
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses vars instead of the process environment when vars is
// non-nil
func LoadFrom(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	opts := env.Options{Prefix: "EOM_"}
	if vars != nil {
		opts.Environment = vars
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("EOM_REDIS_URL is required for redis storage")
		}
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("EOM_POSTGRES_DSN is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.TickInterval < time.Second || c.SweepInterval < time.Second {
		return fmt.Errorf("tick and sweep intervals must be at least 1s")
	}
	if c.MaxCreditPerRequest < 0 || c.MaxOutstandingCredit < 0 {
		return fmt.Errorf("credit limits must not be negative")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
