// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Codec) via constructors.
  - Zero Hidden State: No component reads ambient environment variables directly.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Veribank API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis) backing the login attempt guard and reset tokens.
	RedisURL string `env:"REDIS_URL,required"`

	// Credential signing. The secret is symmetric and shared only between
	// the issuing services.
	SigningSecret string `env:"SIGNING_SECRET,required"`
	AuthIssuer    string `env:"AUTH_ISSUER"   envDefault:"veribank.io"`
	AuthAudience  string `env:"AUTH_AUDIENCE" envDefault:"veribank-clients"`

	// Token lifetimes, in whole minutes. Expiry arithmetic is UTC and additive.
	AccessTokenTTLMinutes  int `env:"ACCESS_TOKEN_TTL_MINUTES"  envDefault:"15"`
	RefreshTokenTTLMinutes int `env:"REFRESH_TOKEN_TTL_MINUTES" envDefault:"10080"`

	// Login throttling: consecutive failures before lockout, and how long the
	// lockout counter lives.
	LoginLockoutThreshold     int `env:"LOGIN_LOCKOUT_THRESHOLD"      envDefault:"3"`
	LoginLockoutWindowMinutes int `env:"LOGIN_LOCKOUT_WINDOW_MINUTES" envDefault:"15"`

	// Error monitoring (optional; Sentry is disabled when empty).
	SentryDSN string `env:"SENTRY_DSN"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.AccessTokenTTLMinutes <= 0 || cfg.RefreshTokenTTLMinutes <= 0 {
		return nil, fmt.Errorf("config: token TTLs must be positive minutes")
	}
	if cfg.LoginLockoutThreshold <= 0 {
		return nil, fmt.Errorf("config: login lockout threshold must be positive")
	}

	return cfg, nil
}

// # Derived Values

// AccessTokenTTL returns the access token lifetime as a duration.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime as a duration.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLMinutes) * time.Minute
}

// LoginLockoutWindow returns the lockout counter TTL as a duration.
func (c *Config) LoginLockoutWindow() time.Duration {
	return time.Duration(c.LoginLockoutWindowMinutes) * time.Minute
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
