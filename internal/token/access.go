// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// DefaultIssuer is the iss claim written when none is configured.
const DefaultIssuer = "cloud-storage-app"

// MinSecretLength is the shortest accepted HMAC signing secret, in bytes.
const MinSecretLength = 16

// Algorithm names a supported HMAC signing algorithm.
type Algorithm string

// Supported signing algorithms.
const (
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"
)

// ParseAlgorithm validates an algorithm name. An empty name selects HS256.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case "":
		return HS256, nil
	case HS256, HS384, HS512:
		return Algorithm(name), nil
	default:
		return "", oops.Code("TOKEN_INVALID_ALGORITHM").With("algorithm", name).Errorf("unsupported signing algorithm")
	}
}

func (a Algorithm) method() jwt.SigningMethod {
	switch a {
	case HS384:
		return jwt.SigningMethodHS384
	case HS512:
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}

// Claims are the verified contents of an access token.
type Claims struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AccessGenerator signs and verifies JWT access tokens with a shared secret.
type AccessGenerator struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	now    func() time.Time
}

// AccessOption configures an AccessGenerator.
type AccessOption func(*AccessGenerator)

// WithIssuer overrides DefaultIssuer.
func WithIssuer(issuer string) AccessOption {
	return func(g *AccessGenerator) {
		if issuer != "" {
			g.issuer = issuer
		}
	}
}

// WithClock replaces the clock used for iat and for expiry checks.
func WithClock(now func() time.Time) AccessOption {
	return func(g *AccessGenerator) { g.now = now }
}

// NewAccessGenerator creates an AccessGenerator.
func NewAccessGenerator(secret string, alg Algorithm, opts ...AccessOption) (*AccessGenerator, error) {
	if len(secret) < MinSecretLength {
		return nil, oops.Code("TOKEN_INVALID_SECRET").
			With("min_length", MinSecretLength).
			Errorf("signing secret is too short")
	}
	if _, err := ParseAlgorithm(string(alg)); err != nil {
		return nil, err
	}
	g := &AccessGenerator{
		secret: []byte(secret),
		method: alg.method(),
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate signs a token for subject expiring at expiresAt.
func (g *AccessGenerator) Generate(subject string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    g.issuer,
		IssuedAt:  jwt.NewNumericDate(g.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(g.method, claims).SignedString(g.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").With("algorithm", g.method.Alg()).Wrap(err)
	}
	return signed, nil
}

// Verify checks the signature, algorithm, issuer and expiry of raw and
// returns its claims.
func (g *AccessGenerator) Verify(raw string) (*Claims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return g.secret, nil },
		jwt.WithValidMethods([]string{g.method.Alg()}),
		jwt.WithIssuer(g.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID").Wrap(err)
	}

	out := &Claims{Subject: claims.Subject, Issuer: claims.Issuer}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
