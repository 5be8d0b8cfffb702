// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ident canonicalizes the identifiers users sign in with.
//
// # Usage
//
// Emails and usernames are unique in the credential store, so two spellings of
// the same identifier must map to one stored value before any lookup or insert.
package ident

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Email trims surrounding whitespace and case-folds the address.
//
// # Transformation Pipeline
//
// 1. Trims leading/trailing whitespace.
// 2. Normalizes to NFKC (fullwidth "ａ" becomes "a").
// 3. Applies Unicode case folding.
func Email(s string) string {
	s = strings.TrimSpace(s)
	s = norm.NFKC.String(s)
	return folder.String(s)
}

// Username trims the handle and normalizes it to NFKC, keeping its case.
func Username(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}

// FromProvider turns a provider login into a local username.
//
// Whitespace and characters outside letters, digits, '.', '-' and '_' are
// replaced with '_' so the result passes local username validation.
func FromProvider(login string) string {
	login = Username(login)

	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, login)
}
