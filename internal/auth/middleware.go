// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/transcend/internal/platform/apperr"
	"github.com/taibuivan/transcend/internal/platform/bearer"
	"github.com/taibuivan/transcend/internal/platform/constants"
	"github.com/taibuivan/transcend/internal/platform/ctxkey"
	"github.com/taibuivan/transcend/internal/platform/ctxutil"
	"github.com/taibuivan/transcend/internal/platform/respond"
)

// # Transparent Refresh

/*
RefreshCredential renews a local credential whose access token has expired.

Description: The credential comes back unchanged unless every check passes
and the access token is no longer valid. It never fails the request; a
credential that cannot be renewed is left for the session resolver to reject.

Flow:
 1. Provider credentials are never refreshed.
 2. The subject is read from the (possibly expired) access token.
 3. The refresh token must verify and belong to the same subject.
 4. A still-valid access token needs no refresh.
 5. Otherwise the pair is rotated.

Returns:
  - bearer.Credential: The credential to continue with
  - bool: Whether it was replaced
*/
func (service *Service) RefreshCredential(context context.Context, credential bearer.Credential) (bearer.Credential, bool) {

	// ── 1. Provider Session ───────────────────────────────────────────────
	if credential.IsProvider() {
		return credential, false
	}

	// ── 2. Subject ────────────────────────────────────────────────────────
	accessClaims, err := service.tokenCodec.Decode(credential.AccessToken)
	if err != nil {
		return credential, false
	}
	subject, err := accessClaims.UserID()
	if err != nil {
		return credential, false
	}

	// ── 3. Refresh Token Ownership ────────────────────────────────────────
	refreshClaims, err := service.tokenCodec.VerifyRefresh(credential.RefreshToken)
	if err != nil {
		return credential, false
	}
	if owner, err := refreshClaims.UserID(); err != nil || owner != subject {
		return credential, false
	}

	// ── 4. Access Token Still Valid ───────────────────────────────────────
	if _, err := service.tokenCodec.VerifyAccess(credential.AccessToken); err == nil {
		return credential, false
	}

	// ── 5. Rotation ───────────────────────────────────────────────────────
	pair, err := service.Refresh(context, subject, credential.RefreshToken)
	if err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "auth_transparent_refresh_failed",
			slog.Int64("user_id", subject),
			slog.Any("error", err),
		)
		return credential, false
	}

	return bearer.Credential{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, true
}

// RefreshCredentials renews expired credentials before the handler runs.
//
// A renewed credential replaces the request's Authorization header and is
// echoed in the X-Access-Token and X-Refresh-Token response headers, since the
// refresh token the client holds has just been invalidated.
func RefreshCredentials(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			credential, err := bearer.Parse(request.Header.Get(constants.HeaderAuthorization))
			if err != nil {
				next.ServeHTTP(writer, request)
				return
			}

			renewed, replaced := service.RefreshCredential(request.Context(), credential)
			if replaced {
				request.Header.Set(constants.HeaderAuthorization, renewed.Header())
				writer.Header().Set(constants.HeaderAccessToken, renewed.AccessToken)
				writer.Header().Set(constants.HeaderRefreshToken, renewed.RefreshToken)
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Session Gate

// RequireSession blocks requests that do not resolve to a user under mode.
//
// Every resolution failure answers with the same 403. Store failures answer 500.
func RequireSession(service *Service, mode SessionMode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			user, err := service.ResolveSession(ctx, request.Header.Get(constants.HeaderAuthorization), mode)
			if err != nil {
				if apperr.IsAppError(err) {
					respond.Error(writer, request, err)
					return
				}
				respond.Error(writer, request, apperr.AccessDenied().WithCause(err))
				return
			}

			ctxutil.SetSessionUserID(ctx, user.ID)
			next.ServeHTTP(writer, request.WithContext(WithUser(ctx, user)))
		})
	}
}

// WithUser attaches the resolved user to ctx.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// UserFrom returns the user placed by [RequireSession], or nil.
func UserFrom(ctx context.Context) *User {
	user, ok := ctx.Value(ctxkey.KeyUser).(*User)
	if !ok {
		return nil
	}
	return user
}
