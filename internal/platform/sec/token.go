// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing, one-time
// passwords) from the domain logic. Its types are constructed once in main and
// injected into the auth service.
package sec

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned when a token's exp claim is in the past.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid is returned for bad signatures, wrong algorithms and malformed tokens.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// Claims is the payload embedded in both access and refresh tokens.
//
// The subject carries the numeric user id as a decimal string. A random jti
// keeps two pairs issued in the same second distinct.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// UserID parses the subject into the numeric user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrTokenInvalid, c.Subject)
	}
	return id, nil
}

// TokenPair is an access token and its companion refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenOptions configures a [TokenCodec].
type TokenOptions struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// TokenCodec signs and verifies HS256 token pairs.
//
// Access and refresh tokens are signed with distinct secrets so a refresh
// token can never be presented as an access token.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewTokenCodec validates the options and builds a codec.
func NewTokenCodec(options TokenOptions) (*TokenCodec, error) {
	if options.AccessSecret == "" || options.RefreshSecret == "" {
		return nil, errors.New("sec: token secrets must not be empty")
	}
	if options.AccessSecret == options.RefreshSecret {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}
	if options.AccessTTL <= 0 || options.RefreshTTL <= 0 {
		return nil, errors.New("sec: token lifetimes must be positive")
	}

	now := options.Now
	if now == nil {
		now = time.Now
	}

	return &TokenCodec{
		accessSecret:  []byte(options.AccessSecret),
		refreshSecret: []byte(options.RefreshSecret),
		accessTTL:     options.AccessTTL,
		refreshTTL:    options.RefreshTTL,
		issuer:        options.Issuer,
		now:           now,
	}, nil
}

// # Issuing

// Issue creates a fresh access/refresh pair for the user.
func (codec *TokenCodec) Issue(userID int64, email string) (TokenPair, error) {
	issuedAt := codec.now()
	subject := strconv.FormatInt(userID, 10)

	accessToken, err := codec.sign(subject, email, issuedAt, codec.accessTTL, codec.accessSecret)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := codec.sign(subject, email, issuedAt, codec.refreshTTL, codec.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (codec *TokenCodec) sign(subject, email string, issuedAt time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		Email: email,
	}

	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// # Verification

// VerifyAccess checks signature and expiry against the access secret.
func (codec *TokenCodec) VerifyAccess(token string) (*Claims, error) {
	return codec.verify(token, codec.accessSecret)
}

// VerifyRefresh checks signature and expiry against the refresh secret.
// It says nothing about whether the token matches the stored session.
func (codec *TokenCodec) VerifyRefresh(token string) (*Claims, error) {
	return codec.verify(token, codec.refreshSecret)
}

func (codec *TokenCodec) verify(tokenString string, secret []byte) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(codec.now),
	}
	if codec.issuer != "" {
		options = append(options, jwt.WithIssuer(codec.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, options...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Decode extracts claims without checking the signature or expiry.
//
// Only the refresh middleware uses it, to learn which user an expired access
// token belonged to. Never trust its output for authorization.
func (codec *TokenCodec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	return claims, nil
}
