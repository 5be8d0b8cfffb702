// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taibuivan/transcend/internal/platform/apperr"
	"github.com/taibuivan/transcend/internal/platform/bearer"
	"github.com/taibuivan/transcend/internal/platform/ctxutil"
	"github.com/taibuivan/transcend/internal/platform/sec"
	"github.com/taibuivan/transcend/pkg/ident"
	"github.com/taibuivan/transcend/pkg/pointer"
)

// # Federated Login

// ProviderAuthorizationURL returns where the client should send the browser.
func (service *Service) ProviderAuthorizationURL() string {
	return service.provider.AuthorizationURL()
}

/*
SigninWithProvider finishes the authorization-code redirect.

Parameters:
  - context: context.Context
  - code: string (the ?code= the provider redirected with)

Returns:
  - *sec.TokenPair: Provider token in the access slot, "null" in the refresh slot
  - error: Forbidden when the provider refuses the code, BadGateway when it is unreachable
*/
func (service *Service) SigninWithProvider(context context.Context, code string) (*sec.TokenPair, error) {
	if code == "" {
		return nil, apperr.AccessDenied()
	}

	providerToken, err := service.provider.ExchangeCode(context, code)
	if err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "auth_provider_exchange_failed", slog.Any("error", err))
		return nil, apperr.BadGateway("Identity provider is unreachable").WithCause(err)
	}
	if providerToken == "" {
		return nil, apperr.AccessDenied()
	}

	return service.OpenFederatedSession(context, providerToken)
}

/*
OpenFederatedSession binds a provider access token to a local account.

Description: The profile is looked up by email. A new account is created on
first contact; an existing one has its session replaced. Either way the
digest of the provider token becomes the stored session credential and the
user is marked logged in. Two-factor is not consulted.

Parameters:
  - context: context.Context
  - providerToken: string

Returns:
  - *sec.TokenPair: The credential the client presents from now on
  - error: Forbidden, BadGateway, Conflict (username taken) or Internal
*/
func (service *Service) OpenFederatedSession(context context.Context, providerToken string) (*sec.TokenPair, error) {
	profile, err := service.provider.FetchProfile(context, providerToken)
	if err != nil {
		if errors.Is(err, ErrProviderRejected) {
			return nil, apperr.AccessDenied()
		}
		return nil, apperr.BadGateway("Identity provider is unreachable").WithCause(err)
	}

	email := ident.Email(profile.Email)
	digest := sec.HashToken(providerToken)

	user, err := service.userRepository.FindByEmail(context, email)
	switch {
	case err == nil:
		if err := service.userRepository.StoreSession(context, user.ID, digest, true); err != nil {
			return nil, internal(err)
		}

	case apperr.HasCode(err, apperr.CodeNotFound):
		user = &User{
			Email:                email,
			Username:             ident.FromProvider(profile.Login),
			HashedRefreshToken:   &digest,
			IsLogged:             true,
			FirstLogin:           true,
			TwoFactor:            DisabledTwoFactor(),
			SignedInWithProvider: true,
			AvatarURL:            pointer.NonZero(profile.ImageURL),
		}
		if err := service.userRepository.Create(context, user); err != nil {
			return nil, err
		}

	default:
		return nil, internal(err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "auth_provider_session_opened", slog.Int64("user_id", user.ID))

	credential := bearer.Provider(providerToken)
	return &sec.TokenPair{AccessToken: credential.AccessToken, RefreshToken: credential.RefreshToken}, nil
}
