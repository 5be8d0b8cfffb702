// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/transcend/internal/auth"
	"github.com/taibuivan/transcend/internal/platform/apperr"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, client
}

func TestAttemptLimiter_BlocksAfterMaxAttempts(t *testing.T) {
	server, client := newRedis(t)
	limiter := auth.NewAttemptLimiter(client, "test:", 3, time.Minute)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, limiter.Check(ctx, "a@x.com"))
		require.NoError(t, limiter.Fail(ctx, "a@x.com"))
	}

	err := limiter.Check(ctx, "a@x.com")
	assert.True(t, apperr.HasCode(err, apperr.CodeRateLimited))

	// Other keys are unaffected
	assert.NoError(t, limiter.Check(ctx, "b@x.com"))

	// The window expires on its own
	server.FastForward(time.Minute + time.Second)
	assert.NoError(t, limiter.Check(ctx, "a@x.com"))
}

func TestAttemptLimiter_TTLSetOnFirstFailure(t *testing.T) {
	server, client := newRedis(t)
	limiter := auth.NewAttemptLimiter(client, "test:", 3, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Fail(ctx, "k"))
	assert.Equal(t, time.Minute, server.TTL("test:k"))

	server.FastForward(30 * time.Second)
	require.NoError(t, limiter.Fail(ctx, "k"))

	// A second failure does not extend the window
	assert.Equal(t, 30*time.Second, server.TTL("test:k"))
}

func TestAttemptLimiter_Reset(t *testing.T) {
	server, client := newRedis(t)
	limiter := auth.NewAttemptLimiter(client, "test:", 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Fail(ctx, "k"))
	assert.Error(t, limiter.Check(ctx, "k"))

	require.NoError(t, limiter.Reset(ctx, "k"))
	assert.NoError(t, limiter.Check(ctx, "k"))
	assert.False(t, server.Exists("test:k"))
}

func TestAttemptLimiter_RedisDown(t *testing.T) {
	server, client := newRedis(t)
	limiter := auth.NewLoginLimiter(client)
	server.Close()

	err := limiter.Check(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, apperr.HasCode(err, apperr.CodeRateLimited))
}
