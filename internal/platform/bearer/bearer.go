// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package bearer parses and renders the composite session credential carried in
the Authorization header:

	Authorization: Bearer <access>, <refresh>

Provider sessions have no refresh token of ours; their refresh slot holds the
literal "null" and the access slot holds the provider's own token.
*/
package bearer

import (
	"errors"
	"strings"

	"github.com/taibuivan/transcend/internal/platform/constants"
)

var (
	// ErrMissing is returned when the header is empty.
	ErrMissing = errors.New("bearer: credential missing")

	// ErrMalformed is returned when the header is not "Bearer <access>, <refresh>".
	ErrMalformed = errors.New("bearer: credential malformed")
)

// Credential is the parsed pair.
type Credential struct {
	AccessToken  string
	RefreshToken string
}

// IsProvider reports whether the credential belongs to a federated session.
func (credential Credential) IsProvider() bool {
	return credential.RefreshToken == constants.NullRefreshToken
}

// Header renders the credential back into Authorization header form.
func (credential Credential) Header() string {
	return constants.BearerScheme + " " + credential.AccessToken + ", " + credential.RefreshToken
}

// Provider builds the credential for a federated session.
func Provider(providerToken string) Credential {
	return Credential{AccessToken: providerToken, RefreshToken: constants.NullRefreshToken}
}

// Parse splits an Authorization header into its two tokens.
//
// The scheme is matched case-insensitively. Whitespace around either token is
// ignored, and both slots must be non-empty.
func Parse(header string) (Credential, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Credential{}, ErrMissing
	}

	scheme, rest, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) {
		return Credential{}, ErrMalformed
	}

	access, refresh, found := strings.Cut(rest, ",")
	if !found {
		return Credential{}, ErrMalformed
	}

	credential := Credential{
		AccessToken:  strings.TrimSpace(access),
		RefreshToken: strings.TrimSpace(refresh),
	}

	if credential.AccessToken == "" || credential.RefreshToken == "" || strings.Contains(credential.RefreshToken, ",") {
		return Credential{}, ErrMalformed
	}

	return credential, nil
}
