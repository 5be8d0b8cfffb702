// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/transcend/internal/platform/apperr"
	"github.com/taibuivan/transcend/internal/platform/ctxutil"
	"github.com/taibuivan/transcend/internal/platform/sec"
	"github.com/taibuivan/transcend/internal/platform/validate"
)

// # Enrollment

/*
GenerateTwoFactorSecret starts (or restarts) enrollment.

Description: A fresh secret is stored as pending. Signin is not gated until
[Service.ConfirmTwoFactor] succeeds, so an abandoned enrollment never locks
the user out.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - *sec.OTPKey: Provisioning URI and QR code for the authenticator app
  - error: Conflict when two-factor is already enabled, Internal otherwise
*/
func (service *Service) GenerateTwoFactorSecret(context context.Context, userID int64) (*sec.OTPKey, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, internal(err)
	}

	if user.TwoFactorEnabled() {
		return nil, apperr.Conflict("Two-factor authentication is already enabled")
	}

	key, err := service.otpEngine.GenerateSecret(user.Email)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_generate_otp_failed: %w", err))
	}

	if err := service.userRepository.SetTwoFactor(context, user.ID, PendingTwoFactor(key.Secret)); err != nil {
		return nil, internal(err)
	}

	return key, nil
}

/*
ConfirmTwoFactor proves possession of the pending secret and enables two-factor.

Description: A wrong code returns false and keeps the enrollment pending so the
user can retry. Wrong codes count toward the per-user TOTP limit.

Parameters:
  - context: context.Context
  - userID: int64
  - code: string

Returns:
  - bool: Whether the code was accepted
  - error: Conflict without a pending enrollment, RateLimited, Internal
*/
func (service *Service) ConfirmTwoFactor(context context.Context, userID int64, code string) (bool, error) {
	if err := validateCode(code); err != nil {
		return false, err
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return false, internal(err)
	}

	if user.TwoFactor.Status != TwoFactorPending || user.TwoFactor.Secret == nil {
		return false, apperr.Conflict("No two-factor enrollment is pending")
	}

	valid, err := service.checkCode(context, user, *user.TwoFactor.Secret, code)
	if err != nil || !valid {
		return false, err
	}

	// A concurrent regenerate swaps the secret; the code then proved the old one
	promoted, err := service.userRepository.PromoteTwoFactor(context, user.ID, *user.TwoFactor.Secret)
	if err != nil {
		return false, internal(err)
	}
	if !promoted {
		return false, apperr.Conflict("Two-factor enrollment changed, generate a new secret")
	}

	ctxutil.GetLogger(context).InfoContext(context, "auth_two_factor_enabled", slog.Int64("user_id", user.ID))

	return true, nil
}

// DisableTwoFactor turns two-factor off and forgets the secret.
func (service *Service) DisableTwoFactor(context context.Context, userID int64) error {
	if err := service.userRepository.SetTwoFactor(context, userID, DisabledTwoFactor()); err != nil {
		return internal(err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "auth_two_factor_disabled", slog.Int64("user_id", userID))

	return nil
}

// # Signin Completion

/*
VerifyTwoFactorLogin completes a signin that returned is2FA = true.

Description: On a valid code the user is marked logged in. The user must still
hold the session opened by that signin.

Parameters:
  - context: context.Context
  - userID: int64
  - code: string

Returns:
  - bool: Whether the code was accepted
  - error: Conflict when two-factor is not enabled, Forbidden without a session, RateLimited, Internal
*/
func (service *Service) VerifyTwoFactorLogin(context context.Context, userID int64, code string) (bool, error) {
	if err := validateCode(code); err != nil {
		return false, err
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return false, internal(err)
	}

	if !user.TwoFactorEnabled() || user.TwoFactor.Secret == nil {
		return false, apperr.Conflict("Two-factor authentication is not enabled")
	}

	if !user.HasSession() {
		return false, apperr.AccessDenied()
	}

	valid, err := service.checkCode(context, user, *user.TwoFactor.Secret, code)
	if err != nil || !valid {
		return false, err
	}

	if err := service.userRepository.SetLogged(context, user.ID, true); err != nil {
		return false, internal(err)
	}

	return true, nil
}

// checkCode validates code under the per-user TOTP attempt limit.
func (service *Service) checkCode(context context.Context, user *User, secret, code string) (bool, error) {
	key := userKey(user.ID)

	if err := service.checkLimit(context, service.totpLimiter, key); err != nil {
		return false, err
	}

	if !service.otpEngine.Validate(secret, code) {
		service.recordFailure(context, service.totpLimiter, key)
		return false, nil
	}

	service.resetLimit(context, service.totpLimiter, key)
	return true, nil
}

func validateCode(code string) error {
	validator := &validate.Validator{}
	return validator.Required(FieldCode, code).
		Digits(FieldCode, code, sec.OTPDigits).
		Err()
}
