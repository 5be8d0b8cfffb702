// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argon2Algorithm = "argon2id"
	argon2SaltLen   = 16
	argon2KeyLen    = 32
)

// ErrMalformedHash is returned when an encoded hash cannot be parsed.
var ErrMalformedHash = errors.New("sec: malformed hash")

// HashParams tunes the argon2id cost.
type HashParams struct {
	MemoryKB    uint32
	Time        uint32
	Parallelism uint8
}

// DefaultHashParams is the OWASP baseline for argon2id.
var DefaultHashParams = HashParams{MemoryKB: 19 * 1024, Time: 2, Parallelism: 1}

// Hasher produces salted, self-describing argon2id hashes in PHC string format:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<key>
//
// Passwords and refresh tokens go through the same one-way function.
type Hasher struct {
	params HashParams
}

// NewHasher builds a hasher, falling back to defaults for zero fields.
func NewHasher(params HashParams) *Hasher {
	if params.MemoryKB == 0 {
		params.MemoryKB = DefaultHashParams.MemoryKB
	}
	if params.Time == 0 {
		params.Time = DefaultHashParams.Time
	}
	if params.Parallelism == 0 {
		params.Parallelism = DefaultHashParams.Parallelism
	}
	return &Hasher{params: params}
}

// Hash derives a new salted hash of plain.
func (hasher *Hasher) Hash(plain string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("sec: failed to read salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, hasher.params.Time, hasher.params.MemoryKB, hasher.params.Parallelism, argon2KeyLen)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Algorithm,
		argon2.Version,
		hasher.params.MemoryKB,
		hasher.params.Time,
		hasher.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plain matches encoded, in constant time.
// The cost parameters are read from the encoded string, not from the hasher.
func (hasher *Hasher) Verify(encoded, plain string) (bool, error) {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(plain), salt, params.Time, params.MemoryKB, params.Parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// HashToken returns the hex SHA-256 of token.
//
// Unlike [Hasher.Hash] it is deterministic, so the result can be used as a
// lookup key. Only apply it to high-entropy values such as provider tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func decodeHash(encoded string) (HashParams, []byte, []byte, error) {
	var params HashParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != argon2Algorithm {
		return params, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, ErrMalformedHash
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryKB, &params.Time, &params.Parallelism); err != nil {
		return params, nil, nil, ErrMalformedHash
	}
	if params.MemoryKB == 0 || params.Time == 0 || params.Parallelism == 0 {
		return params, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return params, nil, nil, ErrMalformedHash
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return params, nil, nil, ErrMalformedHash
	}

	return params, salt, key, nil
}
