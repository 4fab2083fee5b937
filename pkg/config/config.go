package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/pineda/postd/pkg/logging"
	"github.com/pineda/postd/pkg/store"
)

// Config is the complete server configuration.
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Auth       AuthConfig       `json:"auth" yaml:"auth"`
	RateLimit  RateLimitConfig  `json:"rateLimit" yaml:"rateLimit"`
	Validation ValidationConfig `json:"validation" yaml:"validation"`
	// Seed loads the two sample posts on start. Memory backend only.
	Seed bool `json:"seed" yaml:"seed"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	IdleTimeout     time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
	MaxBodyBytes    int64         `json:"maxBodyBytes" yaml:"maxBodyBytes"`
}

// StoreConfig selects and configures the post store.
type StoreConfig struct {
	Backend        store.Backend `json:"backend" yaml:"backend"`
	DSN            string        `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	MaxConns       int32         `json:"maxConns" yaml:"maxConns"`
	ConnectTimeout time.Duration `json:"connectTimeout" yaml:"connectTimeout"`
	// Migrate creates the post table on start. Postgres only.
	Migrate bool `json:"migrate" yaml:"migrate"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// AuthConfig configures bearer tokens for write endpoints.
type AuthConfig struct {
	// Secret signs HS256 tokens. Empty disables authentication.
	Secret string `json:"secret,omitempty" yaml:"secret,omitempty"`
}

// RateLimitConfig configures per-client rate limiting.
type RateLimitConfig struct {
	// RPS <= 0 disables rate limiting.
	RPS            float64  `json:"rps" yaml:"rps"`
	Burst          int      `json:"burst" yaml:"burst"`
	TrustedProxies []string `json:"trustedProxies,omitempty" yaml:"trustedProxies,omitempty"`
}

// ValidationConfig toggles OpenAPI request validation.
type ValidationConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Store: StoreConfig{
			Backend:        store.BackendMemory,
			MaxConns:       10,
			ConnectTimeout: 5 * time.Second,
			Migrate:        true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Validation: ValidationConfig{Enabled: true},
	}
}

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdownTimeout must not be negative"))
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("server.maxBodyBytes must not be negative"))
	}

	switch c.Store.Backend {
	case store.BackendMemory:
	case store.BackendPostgres:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required for the postgres backend"))
		}
		if c.Seed {
			errs = append(errs, errors.New("seed is only supported by the memory backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is invalid (expected memory or postgres)", c.Store.Backend))
	}
	if c.Store.MaxConns < 0 {
		errs = append(errs, errors.New("store.maxConns must not be negative"))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}

	if c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rateLimit.burst must not be negative"))
	}

	return errors.Join(errs...)
}

// LoggingConfig converts c.Log into a logging.Config. Call Validate first;
// unparseable values fall back to info and text.
func (c *Config) LoggingConfig() logging.Config {
	level, _ := logging.ParseLevel(c.Log.Level)
	format, _ := logging.ParseFormat(c.Log.Format)
	return logging.Config{Level: level, Format: format}
}
