// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

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
  - DI-Friendly: Passed to core components (codec, provider, stores) via constructors.
  - Zero Hidden State: Business logic never reads the environment itself.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the authentication service.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Token signing. The two secrets must differ.
	Token TokenConfig

	// Password & refresh-token hashing cost
	Argon2 Argon2Config

	// Federated login provider
	OAuth OAuthConfig

	// TOTPIssuer is shown by authenticator apps next to the account label.
	TOTPIssuer string `env:"TOTP_ISSUER" envDefault:"Transcendence"`

	// AllowedOriginSuffix is the CORS origin suffix accepted outside development.
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"transcendence.app"`
}

// TokenConfig carries the JWT secrets and lifetimes.
type TokenConfig struct {
	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL"  envDefault:"15m"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	Issuer        string        `env:"TOKEN_ISSUER"      envDefault:"transcendence.app"`
}

// Argon2Config tunes the memory-hard hash. Defaults follow the OWASP baseline.
type Argon2Config struct {
	MemoryKB    uint32 `env:"ARGON2_MEMORY_KB"   envDefault:"19456"`
	Time        uint32 `env:"ARGON2_TIME"        envDefault:"2"`
	Parallelism uint8  `env:"ARGON2_PARALLELISM" envDefault:"1"`
}

// OAuthConfig describes the authorization-code provider.
type OAuthConfig struct {
	ClientID              string `env:"OAUTH_CLIENT_ID"`
	ClientSecret          string `env:"OAUTH_CLIENT_SECRET"`
	RedirectURI           string `env:"OAUTH_REDIRECT_URI"`
	AuthorizationEndpoint string `env:"OAUTH_AUTHORIZATION_ENDPOINT" envDefault:"https://api.intra.42.fr/oauth/authorize"`
	TokenEndpoint         string `env:"OAUTH_TOKEN_ENDPOINT"         envDefault:"https://api.intra.42.fr/oauth/token"`
	ProfileEndpoint       string `env:"OAUTH_PROFILE_ENDPOINT"       envDefault:"https://api.intra.42.fr/v2/me"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	if c.Token.AccessSecret == c.Token.RefreshSecret {
		return errors.New("config: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}

	if c.Token.AccessTTL > c.Token.RefreshTTL {
		return fmt.Errorf("config: ACCESS_TOKEN_TTL (%s) exceeds REFRESH_TOKEN_TTL (%s)", c.Token.AccessTTL, c.Token.RefreshTTL)
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OriginSuffix returns the CORS origin suffix accepted outside development.
func (c *Config) OriginSuffix() string {
	return c.AllowedOriginSuffix
}
