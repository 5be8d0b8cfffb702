// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/transcend/internal/auth"
	"github.com/taibuivan/transcend/internal/platform/apperr"
	"github.com/taibuivan/transcend/internal/platform/config"
	"github.com/taibuivan/transcend/internal/platform/sec"
)

const marvinProfile = `{
	"email": "Marvin@42.fr",
	"login": "marvin",
	"image": {"link": "https://cdn.42.fr/marvin.jpg", "versions": {"small": "https://cdn.42.fr/small_marvin.jpg"}}
}`

func TestProviderClient_AuthorizationURL(t *testing.T) {
	client := auth.NewProviderClient(config.OAuthConfig{
		ClientID:              "client-id",
		RedirectURI:           "https://transcendence.app/callback",
		AuthorizationEndpoint: "https://api.intra.42.fr/oauth/authorize",
	}, nil)

	parsed, err := url.Parse(client.AuthorizationURL())
	require.NoError(t, err)

	assert.Equal(t, "api.intra.42.fr", parsed.Host)
	assert.Equal(t, "/oauth/authorize", parsed.Path)
	assert.Equal(t, "client-id", parsed.Query().Get("client_id"))
	assert.Equal(t, "https://transcendence.app/callback", parsed.Query().Get("redirect_uri"))
	assert.Equal(t, "code", parsed.Query().Get("response_type"))
	assert.False(t, parsed.Query().Has("state"))

	assert.Equal(t, client.AuthorizationURL(), client.AuthorizationURL())
}

func TestProviderClient_ExchangeCode(t *testing.T) {
	provider := newFakeProvider(t)
	provider.grant("good-code", "provider-token", marvinProfile)
	client := auth.NewProviderClient(provider.config(), provider.server.Client())
	ctx := context.Background()

	token, err := client.ExchangeCode(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "provider-token", token)

	t.Run("refused code is an empty result", func(t *testing.T) {
		token, err := client.ExchangeCode(ctx, "bad-code")
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("wrong client secret is an empty result", func(t *testing.T) {
		cfg := provider.config()
		cfg.ClientSecret = "other"
		token, err := auth.NewProviderClient(cfg, provider.server.Client()).ExchangeCode(ctx, "good-code")
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("unreachable provider is an error", func(t *testing.T) {
		cfg := provider.config()
		cfg.TokenEndpoint = "http://127.0.0.1:1/oauth/token"
		_, err := auth.NewProviderClient(cfg, &http.Client{}).ExchangeCode(ctx, "good-code")
		assert.Error(t, err)
	})
}

func TestProviderClient_FetchProfile(t *testing.T) {
	provider := newFakeProvider(t)
	provider.grant("code", "provider-token", marvinProfile)
	client := auth.NewProviderClient(provider.config(), provider.server.Client())

	profile, err := client.FetchProfile(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, "Marvin@42.fr", profile.Email)
	assert.Equal(t, "marvin", profile.Login)
	assert.Equal(t, "https://cdn.42.fr/small_marvin.jpg", profile.ImageURL)

	_, err = client.FetchProfile(context.Background(), "unknown")
	assert.ErrorIs(t, err, auth.ErrProviderRejected)
}

func TestSigninWithProvider_CreatesUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.provider.grant("code", "provider-token", marvinProfile)

	pair, err := f.service.SigninWithProvider(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, "provider-token", pair.AccessToken)
	assert.Equal(t, "null", pair.RefreshToken)

	user, err := f.users.FindByEmail(ctx, "marvin@42.fr")
	require.NoError(t, err)
	assert.Equal(t, "marvin", user.Username)
	assert.True(t, user.SignedInWithProvider)
	assert.True(t, user.IsLogged)
	assert.True(t, user.FirstLogin)
	assert.Nil(t, user.PasswordHash)
	require.NotNil(t, user.AvatarURL)
	assert.Equal(t, "https://cdn.42.fr/small_marvin.jpg", *user.AvatarURL)
	require.NotNil(t, user.HashedRefreshToken)
	assert.Equal(t, sec.HashToken("provider-token"), *user.HashedRefreshToken)

	me, err := f.service.GetMe(ctx, "Bearer provider-token, null")
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
}

func TestSigninWithProvider_ExistingUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	local := f.signup(t, "marvin@42.fr", "marvin_local", "p@ss1")
	f.provider.grant("code", "provider-token", marvinProfile)

	_, err := f.service.SigninWithProvider(ctx, "code")
	require.NoError(t, err)

	stored := f.users.snapshot(t, local.ID)
	assert.True(t, stored.IsLogged)
	assert.Equal(t, "marvin_local", stored.Username)
	assert.Equal(t, sec.HashToken("provider-token"), *stored.HashedRefreshToken)

	// A provider session cannot be refreshed like a local one
	_, err = f.service.Refresh(ctx, local.ID, "provider-token")
	assertAccessDenied(t, err)
}

func TestSigninWithProvider_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("refused code", func(t *testing.T) {
		_, err := f.service.SigninWithProvider(ctx, "never-granted")
		assertAccessDenied(t, err)
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := f.service.SigninWithProvider(ctx, "")
		assertAccessDenied(t, err)
	})

	t.Run("rejected token", func(t *testing.T) {
		_, err := f.service.OpenFederatedSession(ctx, "unknown-token")
		assertAccessDenied(t, err)
	})

	t.Run("provider down", func(t *testing.T) {
		f.provider.server.Close()
		_, err := f.service.SigninWithProvider(ctx, "code")
		assert.True(t, apperr.HasCode(err, apperr.CodeBadGateway))
	})
}
