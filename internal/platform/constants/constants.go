// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire service.

It defines default timeouts, rate limits, header names and cross-cutting keys that
are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Authentication: Bearer scheme, absence marker, refresh echo headers.

Secrets and lifetimes are NOT constants; they live in [config.Config].
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "transcend-auth"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// ProviderHTTPTimeout bounds every call to the OAuth provider.
	ProviderHTTPTimeout = 10 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// LoginMaxAttempts is the number of failed signins tolerated per email.
	LoginMaxAttempts = 10

	// LoginCooldown is the window over which failed signins are counted.
	LoginCooldown = 15 * time.Minute

	// TOTPMaxAttempts is the number of wrong one-time codes tolerated per user.
	TOTPMaxAttempts = 5

	// TOTPCooldown is the window over which wrong one-time codes are counted.
	TOTPCooldown = 1 * time.Minute
)

// # Authentication

const (
	// BearerScheme prefixes the composite credential in the Authorization header.
	BearerScheme = "Bearer"

	// NullRefreshToken is the literal placed in the refresh slot of provider sessions.
	NullRefreshToken = "null"

	// HeaderAccessToken echoes a silently re-issued access token to the client.
	HeaderAccessToken = "X-Access-Token"

	// HeaderRefreshToken echoes a silently re-issued refresh token to the client.
	HeaderRefreshToken = "X-Refresh-Token"
)

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaUsers = "users"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixLoginAttempts = "auth:login_attempts:"
	RedisPrefixTOTPAttempts  = "auth:totp_attempts:"
)
