// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Input Constraints

const (
	// UsernameMinLength and UsernameMaxLength bound local and provider handles.
	UsernameMinLength = 3
	UsernameMaxLength = 32

	// EmailMaxLength follows the RFC 5321 path limit.
	EmailMaxLength = 254

	// PasswordMaxLength caps the input fed to argon2id.
	PasswordMaxLength = 128
)

// # Resource Names

const (
	resourceUser = "User"
)
