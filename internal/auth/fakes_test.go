// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/transcend/internal/auth"
	"github.com/taibuivan/transcend/internal/platform/apperr"
	"github.com/taibuivan/transcend/internal/platform/config"
	"github.com/taibuivan/transcend/internal/platform/sec"
)

// # In-memory credential store

// memoryUsers implements auth.UserRepository with the same conditional-update
// semantics as the Postgres repository.
type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*auth.User

	// failWith makes every call return this error when set.
	failWith error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{rows: map[int64]*auth.User{}}
}

func cloneUser(user *auth.User) *auth.User {
	copied := *user
	copied.PasswordHash = clonePtr(user.PasswordHash)
	copied.HashedRefreshToken = clonePtr(user.HashedRefreshToken)
	copied.AvatarURL = clonePtr(user.AvatarURL)
	copied.TwoFactor.Secret = clonePtr(user.TwoFactor.Secret)
	return &copied
}

func clonePtr(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func (repo *memoryUsers) find(match func(*auth.User) bool) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return nil, repo.failWith
	}
	for _, user := range repo.rows {
		if match(user) {
			return cloneUser(user), nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUsers) update(id int64, apply func(*auth.User) bool) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return false, repo.failWith
	}
	user, ok := repo.rows[id]
	if !ok {
		return false, apperr.NotFound("User")
	}
	return apply(user), nil
}

func (repo *memoryUsers) FindByID(_ context.Context, id int64) (*auth.User, error) {
	return repo.find(func(user *auth.User) bool { return user.ID == id })
}

func (repo *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return repo.find(func(user *auth.User) bool { return user.Email == email })
}

func (repo *memoryUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	return repo.find(func(user *auth.User) bool { return user.Username == username })
}

func (repo *memoryUsers) FindByRefreshHash(_ context.Context, hash string) (*auth.User, error) {
	return repo.find(func(user *auth.User) bool {
		return user.HashedRefreshToken != nil && *user.HashedRefreshToken == hash
	})
}

func (repo *memoryUsers) Create(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return repo.failWith
	}
	for _, existing := range repo.rows {
		if existing.Email == user.Email || existing.Username == user.Username {
			return apperr.Conflict("User already exists")
		}
	}

	repo.nextID++
	user.ID = repo.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	repo.rows[user.ID] = cloneUser(user)
	return nil
}

func (repo *memoryUsers) StoreSession(_ context.Context, id int64, hash string, logged bool) error {
	_, err := repo.update(id, func(user *auth.User) bool {
		user.HashedRefreshToken = &hash
		user.IsLogged = logged
		return true
	})
	return err
}

func (repo *memoryUsers) RotateRefreshHash(_ context.Context, id int64, current, next string) (bool, error) {
	return repo.update(id, func(user *auth.User) bool {
		if user.HashedRefreshToken == nil || *user.HashedRefreshToken != current {
			return false
		}
		user.HashedRefreshToken = &next
		return true
	})
}

func (repo *memoryUsers) ClearSession(_ context.Context, id int64) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return false, repo.failWith
	}
	user, ok := repo.rows[id]
	if !ok || user.HashedRefreshToken == nil {
		return false, nil
	}
	user.HashedRefreshToken = nil
	user.IsLogged = false
	return true, nil
}

func (repo *memoryUsers) SetLogged(_ context.Context, id int64, logged bool) error {
	_, err := repo.update(id, func(user *auth.User) bool {
		user.IsLogged = logged
		return true
	})
	return err
}

func (repo *memoryUsers) SetTwoFactor(_ context.Context, id int64, state auth.TwoFactorState) error {
	_, err := repo.update(id, func(user *auth.User) bool {
		user.TwoFactor = auth.TwoFactorState{Status: state.Status, Secret: clonePtr(state.Secret)}
		return true
	})
	return err
}

func (repo *memoryUsers) PromoteTwoFactor(_ context.Context, id int64, secret string) (bool, error) {
	return repo.update(id, func(user *auth.User) bool {
		if user.TwoFactor.Status != auth.TwoFactorPending || user.TwoFactor.Secret == nil || *user.TwoFactor.Secret != secret {
			return false
		}
		user.TwoFactor.Status = auth.TwoFactorEnabled
		return true
	})
}

func (repo *memoryUsers) ClearFirstLogin(_ context.Context, id int64) error {
	_, err := repo.update(id, func(user *auth.User) bool {
		user.FirstLogin = false
		return true
	})
	return err
}

// snapshot returns a copy of the stored row for assertions.
func (repo *memoryUsers) snapshot(t *testing.T, id int64) *auth.User {
	t.Helper()

	repo.mu.Lock()
	defer repo.mu.Unlock()

	user, ok := repo.rows[id]
	require.True(t, ok, "user %d not stored", id)
	return cloneUser(user)
}

// count returns the number of stored accounts.
func (repo *memoryUsers) count() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.rows)
}

// # Clock

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Unix(1_800_000_000, 0).UTC()}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// # Fake identity provider

// fakeProvider serves the token and profile endpoints of an OAuth provider.
type fakeProvider struct {
	server *httptest.Server

	mu       sync.Mutex
	codes    map[string]string // authorization code -> access token
	profiles map[string]string // access token -> profile JSON
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	provider := &fakeProvider{codes: map[string]string{}, profiles: map[string]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(writer http.ResponseWriter, request *http.Request) {
		clientID, clientSecret, ok := request.BasicAuth()
		if !ok || clientID != "client-id" || clientSecret != "client-secret" {
			http.Error(writer, `{"error":"invalid_client"}`, http.StatusUnauthorized)
			return
		}

		provider.mu.Lock()
		token, found := provider.codes[request.FormValue("code")]
		provider.mu.Unlock()

		if !found {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusBadRequest)
			_, _ = writer.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"access_token":"` + token + `","token_type":"bearer","expires_in":7200}`))
	})
	mux.HandleFunc("GET /v2/me", func(writer http.ResponseWriter, request *http.Request) {
		provider.mu.Lock()
		profile, found := provider.profiles[bearerToken(request)]
		provider.mu.Unlock()

		if !found {
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(profile))
	})

	provider.server = httptest.NewServer(mux)
	t.Cleanup(provider.server.Close)

	return provider
}

func bearerToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	if len(header) > len("Bearer ") {
		return header[len("Bearer "):]
	}
	return ""
}

// grant registers a code that exchanges for token, whose profile is profileJSON.
func (provider *fakeProvider) grant(code, token, profileJSON string) {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	provider.codes[code] = token
	provider.profiles[token] = profileJSON
}

func (provider *fakeProvider) config() config.OAuthConfig {
	return config.OAuthConfig{
		ClientID:              "client-id",
		ClientSecret:          "client-secret",
		RedirectURI:           "https://transcendence.app/callback",
		AuthorizationEndpoint: provider.server.URL + "/oauth/authorize",
		TokenEndpoint:         provider.server.URL + "/oauth/token",
		ProfileEndpoint:       provider.server.URL + "/v2/me",
	}
}

// # Harness

// fixture wires a service with cheap hashing, a controllable clock and real Redis limiters.
type fixture struct {
	service  *auth.Service
	users    *memoryUsers
	clock    *clock
	codec    *sec.TokenCodec
	provider *fakeProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := newMemoryUsers()
	clk := newClock()

	codec, err := sec.NewTokenCodec(sec.TokenOptions{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "transcendence.app",
		Now:           clk.Now,
	})
	require.NoError(t, err)

	_, client := newRedis(t)
	provider := newFakeProvider(t)

	service := auth.NewService(auth.Dependencies{
		Users:        users,
		Tokens:       codec,
		Hasher:       sec.NewHasher(sec.HashParams{MemoryKB: 1024, Time: 1, Parallelism: 1}),
		OTP:          sec.NewOTPEngine("Transcendence", clk.Now),
		Provider:     auth.NewProviderClient(provider.config(), provider.server.Client()),
		LoginLimiter: auth.NewLoginLimiter(client),
		TOTPLimiter:  auth.NewTOTPLimiter(client),
	})

	return &fixture{service: service, users: users, clock: clk, codec: codec, provider: provider}
}

// signup creates a local account and returns it.
func (f *fixture) signup(t *testing.T, email, username, password string) *auth.User {
	t.Helper()

	user, err := f.service.Signup(context.Background(), auth.SignupInput{Email: email, Username: username, Password: password})
	require.NoError(t, err)
	return user
}

// code returns the current one-time password for secret on the fixture clock.
func (f *fixture) code(t *testing.T, secret string) string {
	t.Helper()

	code, err := totp.GenerateCode(secret, f.clock.Now())
	require.NoError(t, err)
	return code
}

var errStoreDown = errors.New("connection refused")
