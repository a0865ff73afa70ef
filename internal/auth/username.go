// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import "unicode/utf8"

// MinUsernameLength is the minimum number of characters in a username.
const MinUsernameLength = 3

// Username is a validated login name. The zero value is not a valid username.
type Username struct {
	value string
}

// NewUsername validates raw and wraps it. Length is counted in characters,
// not bytes.
func NewUsername(raw string) (Username, error) {
	if utf8.RuneCountInString(raw) < MinUsernameLength {
		return Username{}, &ValidationError{Field: FieldUsername, Reason: "too short"}
	}
	return Username{value: raw}, nil
}

// String returns the raw username.
func (u Username) String() string {
	return u.value
}

// IsZero reports whether u was never validated.
func (u Username) IsZero() bool {
	return u.value == ""
}
