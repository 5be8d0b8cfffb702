// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/taibuivan/transcend/internal/platform/config"
	"github.com/taibuivan/transcend/internal/platform/constants"
)

// ErrProviderRejected is returned when the provider refuses a token.
var ErrProviderRejected = errors.New("auth: provider rejected the token")

// # Contracts & Types

// IdentityProvider is the federated login collaborator.
type IdentityProvider interface {

	// AuthorizationURL is where the browser is sent to log in at the provider.
	AuthorizationURL() string

	// ExchangeCode trades an authorization code for a provider access token.
	// A refusal by the provider yields ("", nil); only transport failures are errors.
	ExchangeCode(context context.Context, code string) (string, error)

	// FetchProfile reads the profile the token belongs to.
	FetchProfile(context context.Context, token string) (*ProviderProfile, error)
}

// ProviderProfile is the subset of the provider's /me document the service uses.
type ProviderProfile struct {
	Email    string
	Login    string
	ImageURL string
}

// profileDocument mirrors the 42 intra /v2/me payload.
type profileDocument struct {
	Email string `json:"email"`
	Login string `json:"login"`
	Image struct {
		Link     string `json:"link"`
		Versions struct {
			Small string `json:"small"`
		} `json:"versions"`
	} `json:"image"`
}

// # OAuth Client

// ProviderClient implements [IdentityProvider] with golang.org/x/oauth2.
//
// The client secret is sent with HTTP Basic authentication on the token endpoint.
type ProviderClient struct {
	oauth           *oauth2.Config
	profileEndpoint string
	httpClient      *http.Client
}

// NewProviderClient builds a client. A nil httpClient gets the default provider timeout.
func NewProviderClient(cfg config.OAuthConfig, httpClient *http.Client) *ProviderClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.ProviderHTTPTimeout}
	}

	return &ProviderClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizationEndpoint,
				TokenURL:  cfg.TokenEndpoint,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		profileEndpoint: cfg.ProfileEndpoint,
		httpClient:      httpClient,
	}
}

// AuthorizationURL returns the authorize endpoint with client_id, redirect_uri and response_type=code.
// It is a pure function of the configuration and carries no state parameter; binding the
// callback to the browser that started it is the client's job.
func (client *ProviderClient) AuthorizationURL() string {
	return client.oauth.AuthCodeURL("")
}

/*
ExchangeCode performs the authorization-code grant.

Parameters:
  - context: context.Context
  - code: string

Returns:
  - string: The provider access token, or "" when the provider refused the code
  - error: Transport failures only
*/
func (client *ProviderClient) ExchangeCode(context context.Context, code string) (string, error) {
	if code == "" {
		return "", nil
	}

	token, err := client.oauth.Exchange(client.withHTTPClient(context), code)
	if err != nil {
		var urlError *url.Error
		if errors.As(err, &urlError) {
			return "", fmt.Errorf("provider_exchange_code_failed: %w", err)
		}

		// RetrieveError (non-2xx) or a response without access_token
		return "", nil
	}

	return token.AccessToken, nil
}

// FetchProfile calls the profile endpoint with the token as a bearer credential.
func (client *ProviderClient) FetchProfile(context context.Context, token string) (*ProviderProfile, error) {
	httpClient := client.oauth.Client(client.withHTTPClient(context), &oauth2.Token{
		AccessToken: token,
		TokenType:   constants.BearerScheme,
	})

	request, err := http.NewRequestWithContext(context, http.MethodGet, client.profileEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("provider_profile_request_failed: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("provider_profile_fetch_failed: %w", err)
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden:
		return nil, ErrProviderRejected
	case response.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("provider_profile_unexpected_status: %d", response.StatusCode)
	}

	var document profileDocument
	if err := json.NewDecoder(io.LimitReader(response.Body, 1<<20)).Decode(&document); err != nil {
		return nil, fmt.Errorf("provider_profile_decode_failed: %w", err)
	}

	if document.Email == "" || document.Login == "" {
		return nil, errors.New("provider_profile_incomplete")
	}

	imageURL := document.Image.Versions.Small
	if imageURL == "" {
		imageURL = document.Image.Link
	}

	return &ProviderProfile{Email: document.Email, Login: document.Login, ImageURL: imageURL}, nil
}

// withHTTPClient makes oauth2 use our timeout-bounded client.
func (client *ProviderClient) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, client.httpClient)
}
