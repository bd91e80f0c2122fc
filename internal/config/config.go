// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

// Package config loads the service configuration from layered sources:
// built-in defaults, an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kuppihub/kuppi-admin/internal/store"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  store.Config    `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Gate      GateConfig      `koanf:"gate"`
	Audit     AuditConfig     `koanf:"audit"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// GlobalRateLimit caps requests per IP per minute across all
	// routes, in front of the gate's per-route windows. Zero disables
	// the coarse limit.
	GlobalRateLimit int `koanf:"global_rate_limit" validate:"min=0"`
}

// AuthConfig holds identity-provider and allow-list settings.
type AuthConfig struct {
	// ProjectID is the identity provider project whose tokens are
	// accepted. Required unless auth is disabled.
	ProjectID string `koanf:"project_id" validate:"required_unless=Disabled true"`

	// JWKSURI overrides the provider's signing key endpoint. Empty
	// selects the provider default.
	JWKSURI string `koanf:"jwks_uri"`

	// AdminEmails is the allow-list. Comma-separated in env form.
	AdminEmails []string `koanf:"admin_emails" validate:"dive,email"`

	// KeyTTL bounds how long fetched signing keys are trusted.
	KeyTTL time.Duration `koanf:"key_ttl" validate:"min=1m"`

	// Disabled turns authentication off entirely. Local development
	// only; never set in production.
	Disabled bool `koanf:"disabled"`
}

// RateLimitConfig holds fixed-window limiter settings.
type RateLimitConfig struct {
	Window        time.Duration `koanf:"window" validate:"min=1s"`
	ReadQuota     int           `koanf:"read_quota" validate:"min=1"`
	WriteQuota    int           `koanf:"write_quota" validate:"min=1"`
	DeleteQuota   int           `koanf:"delete_quota" validate:"min=1"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"min=1s"`
	Disabled      bool          `koanf:"disabled"`
}

// GateConfig holds request body limits.
type GateConfig struct {
	MaxBodyBytes int64 `koanf:"max_body_bytes" validate:"min=1024"`
}

// AuditConfig controls the audit event pipeline.
type AuditConfig struct {
	Enabled bool `koanf:"enabled"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with sensible defaults. These are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			GlobalRateLimit: 300,
		},
		Database: store.Config{
			Path:      "/data/kuppi-admin.duckdb",
			Threads:   0, // 0 = use runtime.NumCPU()
			MaxMemory: "512MB",
		},
		Auth: AuthConfig{
			ProjectID:   "",
			JWKSURI:     "",
			AdminEmails: []string{},
			KeyTTL:      15 * time.Minute,
			Disabled:    false,
		},
		RateLimit: RateLimitConfig{
			Window:        time.Minute,
			ReadQuota:     100,
			WriteQuota:    30,
			DeleteQuota:   10,
			SweepInterval: 5 * time.Minute,
			Disabled:      false,
		},
		Gate: GateConfig{
			MaxBodyBytes: 1 << 20, // 1 MiB
		},
		Audit: AuditConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration with struct tags.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	// An empty slice satisfies the required tag, so the allow-list
	// emptiness rule is checked here.
	if !c.Auth.Disabled && len(c.Auth.AdminEmails) == 0 {
		return fmt.Errorf("invalid configuration: auth.admin_emails must not be empty when auth is enabled")
	}
	return nil
}
