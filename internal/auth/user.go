// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the authentication and session state machine.

It covers local signup and signin, JWT pair issuance and rotation, TOTP
two-factor enrollment, the federated login exchange with the 42 intra OAuth
provider, per-request session resolution and the transparent refresh protocol.

# Architecture

  - Entities (this file): the user row and its two-factor state.
  - Service: orchestrates the flows over a [UserRepository].
  - Handler / middleware: the HTTP surface mounted under /api/v1/auth.
*/
package auth

import "time"

// # Two-Factor State

// TwoFactorStatus is the enrollment state of a user's authenticator.
type TwoFactorStatus string

const (
	TwoFactorDisabled TwoFactorStatus = "disabled"
	TwoFactorPending  TwoFactorStatus = "pending"
	TwoFactorEnabled  TwoFactorStatus = "enabled"
)

// TwoFactorState pairs the status with its secret.
//
// The secret is non-nil exactly when the status is pending or enabled.
// Build values with the constructors below rather than by hand.
type TwoFactorState struct {
	Status TwoFactorStatus `json:"status"`
	Secret *string         `json:"-"`
}

// DisabledTwoFactor is the state with no secret.
func DisabledTwoFactor() TwoFactorState {
	return TwoFactorState{Status: TwoFactorDisabled}
}

// PendingTwoFactor holds a secret the user has not yet proven possession of.
func PendingTwoFactor(secret string) TwoFactorState {
	return TwoFactorState{Status: TwoFactorPending, Secret: &secret}
}

// EnabledTwoFactor holds a confirmed secret.
func EnabledTwoFactor(secret string) TwoFactorState {
	return TwoFactorState{Status: TwoFactorEnabled, Secret: &secret}
}

// Valid reports whether the status and the secret agree.
func (state TwoFactorState) Valid() bool {
	switch state.Status {
	case TwoFactorDisabled:
		return state.Secret == nil
	case TwoFactorPending, TwoFactorEnabled:
		return state.Secret != nil && *state.Secret != ""
	default:
		return false
	}
}

// # Domain Entities

// User is one row of users.account.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`

	// PasswordHash is nil for accounts created through the provider.
	PasswordHash *string `json:"-"`

	// HashedRefreshToken is nil exactly when there is no session to refresh.
	// Local sessions store an argon2id hash; provider sessions store the SHA-256 of the provider token.
	HashedRefreshToken *string `json:"-"`

	IsLogged             bool           `json:"is_logged"`
	FirstLogin           bool           `json:"first_login"`
	TwoFactor            TwoFactorState `json:"two_factor"`
	SignedInWithProvider bool           `json:"signed_in_with_provider"`
	AvatarURL            *string        `json:"avatar_url,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// TwoFactorEnabled reports whether signin must be completed with a one-time code.
func (user *User) TwoFactorEnabled() bool {
	return user.TwoFactor.Status == TwoFactorEnabled
}

// HasSession reports whether a refresh credential is stored.
func (user *User) HasSession() bool {
	return user.HashedRefreshToken != nil
}

// # Field Identifiers

// Field names for validation and JSON payloads in the authentication domain.
const (
	FieldEmail    = "email"
	FieldUsername = "username"
	FieldPassword = "password"
	FieldCode     = "code"
	FieldValid    = "valid"
	FieldURL      = "url"
)
