// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # User Data Access

// UserRepository is the credential store consumed by the service.
//
// Every lookup returns apperr.NotFound when no row matches. Every update is a
// single statement so it is atomic per user row.
type UserRepository interface {

	// FindByID returns the account with the given ID.
	FindByID(context context.Context, id int64) (*User, error)

	// FindByEmail returns the account with the given (normalized) email.
	FindByEmail(context context.Context, email string) (*User, error)

	// FindByUsername returns the account with the given (normalized) username.
	FindByUsername(context context.Context, username string) (*User, error)

	// FindByRefreshHash returns the account whose stored refresh credential equals hash.
	// Only deterministic digests (provider sessions) can be found this way.
	FindByRefreshHash(context context.Context, hash string) (*User, error)

	/*
		Create persists a brand-new user account and assigns its ID and timestamps.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on a duplicate email or username, storage failures otherwise
	*/
	Create(context context.Context, user *User) error

	/*
		StoreSession replaces the stored refresh credential and islogged unconditionally.

		Description: islogged is overwritten, never merged, so a signin that still
		awaits a one-time code demotes an earlier logged-in session.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - hash: string (the new refresh credential digest)
		  - logged: bool (the new islogged value, written in the same statement)

		Returns:
		  - error: apperr.NotFound if the row is gone, storage failures otherwise
	*/
	StoreSession(context context.Context, id int64, hash string, logged bool) error

	/*
		RotateRefreshHash swaps current for next only if current is still stored.

		Description: This is the compare-and-swap that makes concurrent refreshes
		with the same token produce exactly one winner.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - current: string
		  - next: string

		Returns:
		  - bool: false when another writer replaced or cleared the hash first
		  - error: storage failures
	*/
	RotateRefreshHash(context context.Context, id int64, current, next string) (bool, error)

	// ClearSession nulls the refresh credential and islogged when a credential is stored.
	// It reports whether anything changed.
	ClearSession(context context.Context, id int64) (bool, error)

	// SetLogged sets islogged.
	SetLogged(context context.Context, id int64, logged bool) error

	// SetTwoFactor replaces the two-factor status and secret together.
	SetTwoFactor(context context.Context, id int64, state TwoFactorState) error

	// PromoteTwoFactor moves pending to enabled only if secret is still the pending secret.
	PromoteTwoFactor(context context.Context, id int64, secret string) (bool, error)

	// ClearFirstLogin sets firstlogin = false. Calling it again is harmless.
	ClearFirstLogin(context context.Context, id int64) error
}

// # Attempt Limiting

// AttemptLimiter counts failures per key inside a sliding cooldown window.
type AttemptLimiter interface {

	// Check returns apperr.RateLimited once the key has used up its attempts.
	Check(context context.Context, key string) error

	// Fail records one failed attempt.
	Fail(context context.Context, key string) error

	// Reset forgets the key after a success.
	Reset(context context.Context, key string) error
}
