// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// Password length limits. bcrypt ignores input past 72 bytes, so longer
// secrets are rejected instead of silently truncated.
const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = bcrypt.DefaultCost

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// Password holds a bcrypt hash. The plaintext is never retained.
type Password struct {
	hash string
}

// ValidatePassword checks the plaintext rules without hashing.
func ValidatePassword(plaintext string) *ValidationError {
	if utf8.RuneCountInString(plaintext) < MinPasswordLength {
		return &ValidationError{Field: FieldPassword, Reason: "too short"}
	}
	if len(plaintext) > MaxPasswordBytes {
		return &ValidationError{Field: FieldPassword, Reason: "too long"}
	}
	return nil
}

// NewPassword validates plaintext and hashes it with a fresh salt at the
// given cost. This is CPU bound; callers on request paths should go through
// a HashPool.
func NewPassword(plaintext string, cost int) (Password, error) {
	if verr := ValidatePassword(plaintext); verr != nil {
		return Password{}, verr
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return Password{}, oops.Code("AUTH_HASH_FAILED").
			With("operation", "bcrypt generate").
			With("cost", cost).
			Wrap(err)
	}
	return Password{hash: string(hash)}, nil
}

// PasswordFromHash rehydrates a stored bcrypt hash.
func PasswordFromHash(hash string) (Password, error) {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(hash, prefix) {
			return Password{hash: hash}, nil
		}
	}
	return Password{}, oops.Code("AUTH_INVALID_HASH").Errorf("invalid bcrypt hash format")
}

// Hash returns the encoded bcrypt hash for persistence.
func (p Password) Hash() string {
	return p.hash
}

// Matches reports whether candidate hashes to the stored value.
// A malformed hash never matches.
func (p Password) Matches(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.hash), []byte(candidate)) == nil
}

// IsZero reports whether p holds no hash.
func (p Password) IsZero() bool {
	return p.hash == ""
}

// String never renders the hash.
func (p Password) String() string {
	return "Password([redacted])"
}

// GoString keeps %#v from printing the hash.
func (p Password) GoString() string {
	return p.String()
}

// LogValue keeps slog from printing the hash.
func (p Password) LogValue() slog.Value {
	return slog.StringValue("[redacted]")
}
