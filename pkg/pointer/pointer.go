// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer provides small generic helpers for the nullable columns of the
credential store (password hash, refresh hash, 2FA secret, avatar).

Key Functions:
  - NonZero: Creates a pointer unless the value is the zero value.
*/
package pointer

// NonZero returns nil for the zero value and a pointer to v otherwise.
// It maps "" to SQL NULL when persisting optional text.
func NonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
