// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/transcend/internal/platform/sec"
)

const (
	accessSecret  = "access-secret-for-tests"
	refreshSecret = "refresh-secret-for-tests"
)

func newCodec(t *testing.T, now func() time.Time) *sec.TokenCodec {
	t.Helper()

	codec, err := sec.NewTokenCodec(sec.TokenOptions{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "transcend-test",
		Now:           now,
	})
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodec_RejectsBadSecrets(t *testing.T) {
	tests := []struct {
		name    string
		options sec.TokenOptions
	}{
		{"empty access", sec.TokenOptions{RefreshSecret: "r", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"empty refresh", sec.TokenOptions{AccessSecret: "a", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"identical", sec.TokenOptions{AccessSecret: "same", RefreshSecret: "same", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"zero ttl", sec.TokenOptions{AccessSecret: "a", RefreshSecret: "r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.NewTokenCodec(tt.options)
			assert.Error(t, err)
		})
	}
}

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	codec := newCodec(t, nil)

	pair, err := codec.Issue(42, "marvin@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := codec.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "marvin@example.com", claims.Email)
	assert.Equal(t, "transcend-test", claims.Issuer)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	refreshClaims, err := codec.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "42", refreshClaims.Subject)
	assert.True(t, refreshClaims.ExpiresAt.After(claims.ExpiresAt.Time))
}

func TestTokenCodec_SecretsAreNotInterchangeable(t *testing.T) {
	codec := newCodec(t, nil)

	pair, err := codec.Issue(1, "a@example.com")
	require.NoError(t, err)

	_, err = codec.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)

	_, err = codec.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

func TestTokenCodec_PairsAreUniqueWithinOneSecond(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := newCodec(t, func() time.Time { return fixed })

	first, err := codec.Issue(1, "a@example.com")
	require.NoError(t, err)
	second, err := codec.Issue(1, "a@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestTokenCodec_Expired(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := newCodec(t, func() time.Time { return current })

	pair, err := codec.Issue(7, "late@example.com")
	require.NoError(t, err)

	// Past the access lifetime but within the refresh lifetime
	current = current.Add(16 * time.Minute)

	_, err = codec.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)

	_, err = codec.VerifyRefresh(pair.RefreshToken)
	assert.NoError(t, err)

	// Decode still reveals the subject of the expired token
	claims, err := codec.Decode(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := newCodec(t, nil)

	for _, token := range []string{"", "garbage", "a.b.c", "null"} {
		_, err := codec.VerifyAccess(token)
		assert.ErrorIs(t, err, sec.ErrTokenInvalid, token)

		_, err = codec.Decode(token)
		assert.ErrorIs(t, err, sec.ErrTokenInvalid, token)
	}
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	codec := newCodec(t, nil)

	claims := sec.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "transcend-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(accessSecret))
	require.NoError(t, err)

	_, err = codec.VerifyAccess(token)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.VerifyAccess(unsigned)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

func TestClaims_UserID(t *testing.T) {
	for _, subject := range []string{"", "abc", "0", "-3"} {
		claims := &sec.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}}
		_, err := claims.UserID()
		assert.ErrorIs(t, err, sec.ErrTokenInvalid, subject)
	}
}
