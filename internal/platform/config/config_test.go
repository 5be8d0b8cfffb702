// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/transcend/internal/platform/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/transcend")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ACCESS_TOKEN_SECRET", "at-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "rt-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 15*time.Minute, cfg.Token.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Token.RefreshTTL)
	assert.Equal(t, "./data/migrations", cfg.MigrationPath)
	assert.Equal(t, uint32(19456), cfg.Argon2.MemoryKB)
	assert.Equal(t, "https://api.intra.42.fr/oauth/token", cfg.OAuth.TokenEndpoint)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("REFRESH_TOKEN_TTL", "24h")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Token.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.Token.RefreshTTL)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/transcend")
	t.Setenv("REDIS_URL", "")
	t.Setenv("ACCESS_TOKEN_SECRET", "at-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "rt-secret")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_SameSecretsRejected(t *testing.T) {
	setRequired(t)
	t.Setenv("REFRESH_TOKEN_SECRET", "at-secret")

	_, err := config.Load()
	assert.ErrorContains(t, err, "must differ")
}

func TestValidate_AccessOutlivesRefresh(t *testing.T) {
	cfg := &config.Config{Token: config.TokenConfig{
		AccessSecret:  "a",
		RefreshSecret: "b",
		AccessTTL:     2 * time.Hour,
		RefreshTTL:    time.Hour,
	}}

	assert.Error(t, cfg.Validate())
}
