// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/transcend/internal/platform/apperr"
	"github.com/taibuivan/transcend/internal/platform/constants"
)

// # Attempt Limiter

// RedisAttemptLimiter implements [AttemptLimiter] with one INCR counter per key.
//
// The counter's TTL is set on the first failure, so the window starts at the
// first miss and the key disappears on its own once the cooldown elapses.
type RedisAttemptLimiter struct {
	client      redis.Cmdable
	prefix      string
	maxAttempts int64
	cooldown    time.Duration
}

// NewAttemptLimiter creates a limiter whose keys live under prefix.
func NewAttemptLimiter(client redis.Cmdable, prefix string, maxAttempts int, cooldown time.Duration) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{
		client:      client,
		prefix:      prefix,
		maxAttempts: int64(maxAttempts),
		cooldown:    cooldown,
	}
}

// NewLoginLimiter counts failed signins per email.
func NewLoginLimiter(client redis.Cmdable) *RedisAttemptLimiter {
	return NewAttemptLimiter(client, constants.RedisPrefixLoginAttempts, constants.LoginMaxAttempts, constants.LoginCooldown)
}

// NewTOTPLimiter counts wrong one-time codes per user.
func NewTOTPLimiter(client redis.Cmdable) *RedisAttemptLimiter {
	return NewAttemptLimiter(client, constants.RedisPrefixTOTPAttempts, constants.TOTPMaxAttempts, constants.TOTPCooldown)
}

func (limiter *RedisAttemptLimiter) key(key string) string {
	return limiter.prefix + key
}

/*
Check rejects the key once its failure count reached the maximum.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - error: apperr.RateLimited with the remaining cooldown, or a wrapped Redis error
*/
func (limiter *RedisAttemptLimiter) Check(context context.Context, key string) error {
	count, err := limiter.client.Get(context, limiter.key(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis_attempt_limiter_check_failed: %w", err)
	}

	if count < limiter.maxAttempts {
		return nil
	}

	retryAfter, err := limiter.client.TTL(context, limiter.key(key)).Result()
	if err != nil || retryAfter <= 0 {
		retryAfter = limiter.cooldown
	}

	return apperr.RateLimited(int(retryAfter.Round(time.Second).Seconds()))
}

// Fail increments the counter, starting the window on the first failure.
func (limiter *RedisAttemptLimiter) Fail(context context.Context, key string) error {
	count, err := limiter.client.Incr(context, limiter.key(key)).Result()
	if err != nil {
		return fmt.Errorf("redis_attempt_limiter_incr_failed: %w", err)
	}

	if count == 1 {
		if err := limiter.client.Expire(context, limiter.key(key), limiter.cooldown).Err(); err != nil {
			return fmt.Errorf("redis_attempt_limiter_expire_failed: %w", err)
		}
	}

	return nil
}

// Reset deletes the counter.
func (limiter *RedisAttemptLimiter) Reset(context context.Context, key string) error {
	if err := limiter.client.Del(context, limiter.key(key)).Err(); err != nil {
		return fmt.Errorf("redis_attempt_limiter_reset_failed: %w", err)
	}
	return nil
}
