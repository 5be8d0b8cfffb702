// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/taibuivan/transcend/internal/platform/apperr"
	"github.com/taibuivan/transcend/internal/platform/ctxutil"
	"github.com/taibuivan/transcend/internal/platform/sec"
	"github.com/taibuivan/transcend/internal/platform/validate"
	"github.com/taibuivan/transcend/pkg/ident"
)

// # Contracts & Types

// Dependencies groups the collaborators of [Service]. All fields are required.
type Dependencies struct {
	Users        UserRepository
	Tokens       *sec.TokenCodec
	Hasher       *sec.Hasher
	OTP          *sec.OTPEngine
	Provider     IdentityProvider
	LoginLimiter AttemptLimiter
	TOTPLimiter  AttemptLimiter
}

// Service implements the authentication use cases.
//
// It holds no per-user state; the credential store is the only shared state
// and every write is a single-row statement.
type Service struct {
	userRepository UserRepository
	tokenCodec     *sec.TokenCodec
	hasher         *sec.Hasher
	otpEngine      *sec.OTPEngine
	provider       IdentityProvider
	loginLimiter   AttemptLimiter
	totpLimiter    AttemptLimiter
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(deps Dependencies) *Service {
	return &Service{
		userRepository: deps.Users,
		tokenCodec:     deps.Tokens,
		hasher:         deps.Hasher,
		otpEngine:      deps.OTP,
		provider:       deps.Provider,
		loginLimiter:   deps.LoginLimiter,
		totpLimiter:    deps.TOTPLimiter,
	}
}

// # Registration Flow

// SignupInput holds the data required to create a local account.
type SignupInput struct {
	Email    string
	Username string
	Password string
}

/*
Signup validates, hashes, and persists a brand new local account.

Description: No tokens are issued; the client signs in afterwards. The new
account starts logged out, on its first login, with two-factor disabled.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *User: Created entity
  - error: Validation, Conflict (email or username exists) or Internal
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*User, error) {
	input.Email = ident.Email(input.Email)
	input.Username = ident.Username(input.Username)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, EmailMaxLength).
		Email(FieldEmail, input.Email).
		Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, UsernameMinLength).
		MaxLen(FieldUsername, input.Username, UsernameMaxLength).
		Username(FieldUsername, input.Username).
		Required(FieldPassword, input.Password).
		MaxLen(FieldPassword, input.Password, PasswordMaxLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Verify email uniqueness
	if taken, err := service.exists(context, service.userRepository.FindByEmail, input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness
	if taken, err := service.exists(context, service.userRepository.FindByUsername, input.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, apperr.Conflict("Username is already taken")
	}

	passwordHash, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_password_failed: %w", err))
	}

	user := &User{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: &passwordHash,
		FirstLogin:   true,
		TwoFactor:    DisabledTwoFactor(),
	}

	// The unique constraints still catch a concurrent signup that slipped past the checks
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "auth_user_signed_up", slog.Int64("user_id", user.ID))

	return user, nil
}

// exists reports whether lookup finds a row, separating "absent" from store failures.
func (service *Service) exists(context context.Context, lookup func(context.Context, string) (*User, error), value string) (bool, error) {
	_, err := lookup(context, value)
	switch {
	case err == nil:
		return true, nil
	case apperr.HasCode(err, apperr.CodeNotFound):
		return false, nil
	default:
		return false, internal(err)
	}
}

// # Authentication Flow

// SigninInput defines credentials for a local authentication attempt.
type SigninInput struct {
	Email    string
	Password string
}

// SigninResult is the outcome of a successful password check.
//
// When Is2FA is true the user is not logged in yet and must post a one-time
// code with the returned access token.
type SigninResult struct {
	Tokens sec.TokenPair `json:"tokens"`
	Is2FA  bool          `json:"is2FA"`
}

/*
Signin verifies a password and opens the account's single session.

Description: Every success issues a new pair and overwrites the stored refresh
hash, so any earlier refresh token stops working. The same write sets islogged:
true without two-factor, false while a one-time code is still owed.

Parameters:
  - context: context.Context
  - input: SigninInput

Returns:
  - *SigninResult: Token pair and the two-factor flag
  - error: Forbidden (any credential mismatch), RateLimited or Internal
*/
func (service *Service) Signin(context context.Context, input SigninInput) (*SigninResult, error) {
	email := ident.Email(input.Email)
	if email == "" || input.Password == "" {
		return nil, apperr.AccessDenied()
	}

	if err := service.checkLimit(context, service.loginLimiter, email); err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			service.recordFailure(context, service.loginLimiter, email)
			return nil, apperr.AccessDenied()
		}
		return nil, internal(err)
	}

	// Provider-only accounts have no password to check
	if user.PasswordHash == nil {
		service.recordFailure(context, service.loginLimiter, email)
		return nil, apperr.AccessDenied()
	}

	matches, err := service.hasher.Verify(*user.PasswordHash, input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_verify_password_failed: %w", err))
	}
	if !matches {
		service.recordFailure(context, service.loginLimiter, email)
		return nil, apperr.AccessDenied()
	}

	service.resetLimit(context, service.loginLimiter, email)

	pair, err := service.openSession(context, user, !user.TwoFactorEnabled())
	if err != nil {
		return nil, err
	}

	return &SigninResult{Tokens: *pair, Is2FA: user.TwoFactorEnabled()}, nil
}

// openSession issues a pair, stores the hash of its refresh token and sets islogged to logged.
func (service *Service) openSession(context context.Context, user *User, logged bool) (*sec.TokenPair, error) {
	pair, err := service.tokenCodec.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_issue_tokens_failed: %w", err))
	}

	refreshHash, err := service.hasher.Hash(pair.RefreshToken)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_refresh_failed: %w", err))
	}

	if err := service.userRepository.StoreSession(context, user.ID, refreshHash, logged); err != nil {
		return nil, internal(err)
	}

	return &pair, nil
}

/*
Logout ends the user's session.

Description: Clears the refresh hash and the logged-in flag. A user without a
stored session is left untouched and no error is returned.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - error: Internal on store failure
*/
func (service *Service) Logout(context context.Context, userID int64) error {
	cleared, err := service.userRepository.ClearSession(context, userID)
	if err != nil {
		return internal(err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "auth_user_logged_out",
		slog.Int64("user_id", userID),
		slog.Bool("had_session", cleared),
	)

	return nil
}

// # Token Rotation

/*
Refresh exchanges a valid refresh token for a new pair.

Description: The presented token must verify, belong to userID and match the
stored hash. The new hash replaces the old one only if the old one is still
stored, so of two concurrent refreshes with the same token exactly one wins.

Parameters:
  - context: context.Context
  - userID: int64
  - refreshToken: string

Returns:
  - *sec.TokenPair: The new pair
  - error: Forbidden on any mismatch or a lost race, Internal on store failure
*/
func (service *Service) Refresh(context context.Context, userID int64, refreshToken string) (*sec.TokenPair, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.AccessDenied()
		}
		return nil, internal(err)
	}

	if !user.HasSession() {
		return nil, apperr.AccessDenied()
	}

	claims, err := service.tokenCodec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, apperr.AccessDenied().WithCause(err)
	}
	if subject, err := claims.UserID(); err != nil || subject != user.ID {
		return nil, apperr.AccessDenied()
	}

	// Provider digests are not PHC strings and fail here as malformed
	storedHash := *user.HashedRefreshToken
	matches, err := service.hasher.Verify(storedHash, refreshToken)
	if err != nil || !matches {
		return nil, apperr.AccessDenied()
	}

	pair, err := service.tokenCodec.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_issue_tokens_failed: %w", err))
	}

	nextHash, err := service.hasher.Hash(pair.RefreshToken)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_refresh_failed: %w", err))
	}

	rotated, err := service.userRepository.RotateRefreshHash(context, user.ID, storedHash, nextHash)
	if err != nil {
		return nil, internal(err)
	}
	if !rotated {
		ctxutil.GetLogger(context).WarnContext(context, "auth_refresh_lost_race", slog.Int64("user_id", user.ID))
		return nil, apperr.AccessDenied()
	}

	return &pair, nil
}

// RefreshFromRefreshToken resolves the subject from the refresh token itself and rotates.
func (service *Service) RefreshFromRefreshToken(context context.Context, refreshToken string) (*sec.TokenPair, error) {
	claims, err := service.tokenCodec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, apperr.AccessDenied().WithCause(err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, apperr.AccessDenied().WithCause(err)
	}

	return service.Refresh(context, userID, refreshToken)
}

// # Account Lifecycle

// CompleteFirstLogin clears the first-login flag and returns the updated user.
func (service *Service) CompleteFirstLogin(context context.Context, userID int64) (*User, error) {
	if err := service.userRepository.ClearFirstLogin(context, userID); err != nil {
		return nil, internal(err)
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, internal(err)
	}

	return user, nil
}

// # Attempt Limiting Helpers

// checkLimit surfaces only RateLimited; an unreachable limiter lets the attempt through.
func (service *Service) checkLimit(context context.Context, limiter AttemptLimiter, key string) error {
	err := limiter.Check(context, key)
	if err == nil {
		return nil
	}
	if apperr.HasCode(err, apperr.CodeRateLimited) {
		return err
	}

	ctxutil.GetLogger(context).WarnContext(context, "auth_attempt_limiter_unavailable", slog.Any("error", err))
	return nil
}

func (service *Service) recordFailure(context context.Context, limiter AttemptLimiter, key string) {
	if err := limiter.Fail(context, key); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "auth_attempt_limiter_unavailable", slog.Any("error", err))
	}
}

func (service *Service) resetLimit(context context.Context, limiter AttemptLimiter, key string) {
	if err := limiter.Reset(context, key); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "auth_attempt_limiter_unavailable", slog.Any("error", err))
	}
}

// userKey is the limiter key for per-user counters.
func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// internal keeps AppErrors from the store as they are and wraps anything else.
func internal(err error) error {
	var appError *apperr.AppError
	if errors.As(err, &appError) {
		return appError
	}
	return apperr.Internal(err)
}
