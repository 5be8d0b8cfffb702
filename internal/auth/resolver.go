// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"

	"github.com/taibuivan/transcend/internal/platform/apperr"
	"github.com/taibuivan/transcend/internal/platform/bearer"
	"github.com/taibuivan/transcend/internal/platform/sec"
)

// SessionMode selects how strict [Service.ResolveSession] is.
type SessionMode int

const (
	// ModeStrict requires the resolved user to be logged in.
	ModeStrict SessionMode = iota

	// ModeLookup only requires the credential to identify a user. It serves
	// the second signin step and logout, where isLogged may still be false.
	ModeLookup
)

// Resolution failures. They classify a missing session and are never sent to clients as-is.
var (
	ErrNoCredential      = errors.New("auth: no credential")
	ErrCredentialInvalid = errors.New("auth: credential invalid")
	ErrUserNotFound      = errors.New("auth: user not found")
	ErrNotLoggedIn       = errors.New("auth: user not logged in")
)

/*
ResolveSession maps an Authorization header to the user it belongs to.

Description: A provider credential is looked up by the digest of its token. A
local credential must carry a valid access token; its email claim selects the
user, whose id must match the token subject.

Parameters:
  - context: context.Context
  - header: string (raw Authorization header)
  - mode: SessionMode

Returns:
  - *User: nil whenever err is non-nil
  - error: One of the Err* classifications, or an Internal AppError on store failure
*/
func (service *Service) ResolveSession(context context.Context, header string, mode SessionMode) (*User, error) {
	credential, err := bearer.Parse(header)
	if err != nil {
		if errors.Is(err, bearer.ErrMissing) {
			return nil, ErrNoCredential
		}
		return nil, ErrCredentialInvalid
	}

	var user *User
	if credential.IsProvider() {
		user, err = service.userRepository.FindByRefreshHash(context, sec.HashToken(credential.AccessToken))
	} else {
		claims, verifyErr := service.tokenCodec.VerifyAccess(credential.AccessToken)
		if verifyErr != nil {
			return nil, ErrCredentialInvalid
		}

		subject, subjectErr := claims.UserID()
		if subjectErr != nil {
			return nil, ErrCredentialInvalid
		}

		user, err = service.userRepository.FindByEmail(context, claims.Email)
		if err == nil && user.ID != subject {
			return nil, ErrCredentialInvalid
		}
	}

	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal(err)
	}

	if mode == ModeStrict && !user.IsLogged {
		return nil, ErrNotLoggedIn
	}

	return user, nil
}

// GetMe resolves a fully logged-in user.
func (service *Service) GetMe(context context.Context, header string) (*User, error) {
	return service.ResolveSession(context, header, ModeStrict)
}

// GetUser2FA resolves the user behind a credential whether or not signin has completed.
func (service *Service) GetUser2FA(context context.Context, header string) (*User, error) {
	return service.ResolveSession(context, header, ModeLookup)
}
