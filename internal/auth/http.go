// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/transcend/internal/platform/apperr"
	"github.com/taibuivan/transcend/internal/platform/bearer"
	requestutil "github.com/taibuivan/transcend/internal/platform/request"
	"github.com/taibuivan/transcend/internal/platform/respond"
	"github.com/taibuivan/transcend/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /signup, /signin, /refresh       : Public
//   - GET  /42/authorize, /42/callback      : Federated login
//   - POST /logout, /2fa/verify             : Any resolvable session
//   - GET  /me, POST /first-login, /2fa/*   : Logged-in session
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/signup", handler.signup)
	router.Post("/signin", handler.signin)
	router.Post("/refresh", handler.refresh)
	router.Get("/42/authorize", handler.providerAuthorize)
	router.Get("/42/callback", handler.providerCallback)

	// Sessions that may still be waiting for a one-time code
	router.Group(func(r chi.Router) {
		r.Use(RefreshCredentials(handler.authService))
		r.Use(RequireSession(handler.authService, ModeLookup))
		r.Post("/logout", handler.logout)
		r.Post("/2fa/verify", handler.verifyTwoFactor)
	})

	// Fully logged-in sessions
	router.Group(func(r chi.Router) {
		r.Use(RefreshCredentials(handler.authService))
		r.Use(RequireSession(handler.authService, ModeStrict))
		r.Get("/me", handler.me)
		r.Post("/first-login", handler.firstLogin)
		r.Post("/2fa/generate", handler.generateTwoFactor)
		r.Post("/2fa/confirm", handler.confirmTwoFactor)
		r.Post("/2fa/disable", handler.disableTwoFactor)
	})

	return router
}

// # Request Payloads

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type codeRequest struct {
	Code string `json:"code"`
}

// # Local Authentication

/*
Signup creates a local account.

POST /api/v1/auth/signup

Response:
  - 201: User
  - 400: Validation failure
  - 409: Email or username already exists
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Signup(request.Context(), SignupInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Signin checks a password and returns a token pair.

POST /api/v1/auth/signin

Response:
  - 200: {tokens, is2FA}
  - 403: Access denied
  - 429: Too many failed attempts
*/
func (handler *Handler) signin(writer http.ResponseWriter, request *http.Request) {
	var input signinRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Signin(request.Context(), SigninInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// refresh rotates the pair carried in the Authorization header.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	credential, err := bearer.Parse(requestutil.Authorization(request))
	if err != nil || credential.IsProvider() {
		respond.Error(writer, request, apperr.AccessDenied())
		return
	}

	pair, err := handler.authService.RefreshFromRefreshToken(request.Context(), credential.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	user := UserFrom(request.Context())

	if err := handler.authService.Logout(request.Context(), user.ID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, UserFrom(request.Context()))
}

func (handler *Handler) firstLogin(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.authService.CompleteFirstLogin(request.Context(), UserFrom(request.Context()).ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Two-Factor

/*
GenerateTwoFactor starts enrollment.

POST /api/v1/auth/2fa/generate

Response:
  - 200: {otpauth_url, qr_code}
  - 409: Two-factor already enabled
*/
func (handler *Handler) generateTwoFactor(writer http.ResponseWriter, request *http.Request) {
	key, err := handler.authService.GenerateTwoFactorSecret(request.Context(), UserFrom(request.Context()).ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, key)
}

func (handler *Handler) confirmTwoFactor(writer http.ResponseWriter, request *http.Request) {
	handler.checkCode(writer, request, handler.authService.ConfirmTwoFactor)
}

func (handler *Handler) verifyTwoFactor(writer http.ResponseWriter, request *http.Request) {
	handler.checkCode(writer, request, handler.authService.VerifyTwoFactorLogin)
}

func (handler *Handler) disableTwoFactor(writer http.ResponseWriter, request *http.Request) {
	if err := handler.authService.DisableTwoFactor(request.Context(), UserFrom(request.Context()).ID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// checkCode decodes {code} and answers {valid}. A wrong code is a 200 with valid=false.
func (handler *Handler) checkCode(writer http.ResponseWriter, request *http.Request, check func(context.Context, int64, string) (bool, error)) {
	var input codeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	valid, err := check(request.Context(), UserFrom(request.Context()).ID, input.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{FieldValid: valid})
}

// # Federated Login

func (handler *Handler) providerAuthorize(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{FieldURL: handler.authService.ProviderAuthorizationURL()})
}

/*
ProviderCallback exchanges the authorization code and opens a provider session.

GET /api/v1/auth/42/callback?code=

Response:
  - 200: {access_token, refresh_token: "null"}
  - 400: Missing code
  - 403: Provider refused the code or token
  - 502: Provider unreachable
*/
func (handler *Handler) providerCallback(writer http.ResponseWriter, request *http.Request) {
	code := requestutil.Query(request, FieldCode)
	if code == "" {
		respond.Error(writer, request, validate.RequiredError(FieldCode, "Authorization code is required"))
		return
	}

	pair, err := handler.authService.SigninWithProvider(request.Context(), code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}
