// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package token

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/samber/oops"
)

// RefreshTokenBytes is the entropy of a refresh token. Hex encoding doubles
// the string length.
const RefreshTokenBytes = 64

// RefreshGenerator produces hex-encoded refresh tokens from a CSPRNG.
type RefreshGenerator struct {
	rand io.Reader
	size int
}

// NewRefreshGenerator creates a RefreshGenerator reading crypto/rand.
func NewRefreshGenerator() *RefreshGenerator {
	return &RefreshGenerator{rand: rand.Reader, size: RefreshTokenBytes}
}

// Generate returns a new refresh token.
func (g *RefreshGenerator) Generate() (string, error) {
	buf := make([]byte, g.size)
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		return "", oops.Code("TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", g.size).
			Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}
