// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/transcend/internal/platform/sec"
)

// cheapHasher keeps the argon2 cost low so the suite stays fast.
func cheapHasher() *sec.Hasher {
	return sec.NewHasher(sec.HashParams{MemoryKB: 1024, Time: 1, Parallelism: 1})
}

func TestHasher_RoundTrip(t *testing.T) {
	hasher := cheapHasher()

	encoded, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := hasher.Verify(encoded, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify(encoded, "Correct horse battery staple")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_SaltsEveryHash(t *testing.T) {
	hasher := cheapHasher()

	first, err := hasher.Hash("same")
	require.NoError(t, err)
	second, err := hasher.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHasher_VerifyUsesEncodedParams(t *testing.T) {
	encoded, err := cheapHasher().Hash("pw")
	require.NoError(t, err)

	// A hasher configured with a different cost still verifies older hashes
	ok, err := sec.NewHasher(sec.HashParams{MemoryKB: 2048, Time: 2, Parallelism: 2}).Verify(encoded, "pw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasher_Malformed(t *testing.T) {
	hasher := cheapHasher()

	for _, encoded := range []string{
		"",
		"plain-text",
		"$2a$10$bcryptlookingthing",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
	} {
		ok, err := hasher.Verify(encoded, "pw")
		assert.ErrorIs(t, err, sec.ErrMalformedHash, encoded)
		assert.False(t, ok)
	}
}

func TestHashToken(t *testing.T) {
	assert.Equal(t, sec.HashToken("provider-token"), sec.HashToken("provider-token"))
	assert.NotEqual(t, sec.HashToken("provider-token"), sec.HashToken("provider-token2"))
	assert.Len(t, sec.HashToken("x"), 64)
}
