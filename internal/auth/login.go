// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
)

// defaultDummyHash is a DefaultBcryptCost hash compared against when the user
// does not exist, so the response time does not reveal which usernames are
// registered. The result of that comparison is discarded.
//
//nolint:gosec // G101: not a credential.
const defaultDummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3E5Ng1Y0N0ejvEOzwuc8ug."

//nolint:gosec // G101: not a credential.
const dummyPlaintext = "authcore-unknown-user"

// costReporter is implemented by hashers that know their bcrypt work factor.
type costReporter interface {
	Cost() int
}

// newDummyPassword returns a hash at the same cost real hashes are made with,
// so an unknown-user comparison takes as long as a wrong-password one.
func newDummyPassword(hasher PasswordHasher) (Password, error) {
	cr, ok := hasher.(costReporter)
	if !ok || cr.Cost() == DefaultBcryptCost {
		return Password{hash: defaultDummyHash}, nil
	}
	return NewPassword(dummyPlaintext, cr.Cost())
}

// LoginUseCase authenticates a user and opens a session.
type LoginUseCase struct {
	users  UserFinderByUsername
	hasher PasswordHasher
	dummy  Password
	issuer *sessionIssuer
	opts   options
}

// NewLoginUseCase validates its dependencies and builds the use case.
func NewLoginUseCase(users UserFinderByUsername, sessions SessionAdder, hasher PasswordHasher, tokens Tokens, d Durations, opts ...Option) (*LoginUseCase, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("user store is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("password hasher is required")
	}
	issuer, err := newSessionIssuer(sessions, tokens, d)
	if err != nil {
		return nil, err
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	dummy, err := newDummyPassword(hasher)
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").With("stage", "dummy hash").Wrap(err)
	}
	return &LoginUseCase{users: users, hasher: hasher, dummy: dummy, issuer: issuer, opts: o}, nil
}

// Execute checks creds and returns a new token set.
//
// An unknown username and a wrong password both yield ErrInvalidCredentials.
// A malformed username is a *ValidationError. Any other failure is an
// *InternalError.
func (uc *LoginUseCase) Execute(ctx context.Context, creds Credentials) (_ *TokenSet, err error) {
	ctx, span := uc.opts.tracer.Start(ctx, "auth.Login")
	defer func() { finish(span, err) }()

	username, err := NewUsername(creds.Username)
	if err != nil {
		return nil, err
	}

	user, err := uc.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, uc.opts.internal(ctx, "login", oops.With("stage", "find user").Wrap(err))
		}
		if _, cmpErr := uc.hasher.Compare(ctx, uc.dummy, creds.Password); cmpErr != nil {
			return nil, uc.opts.internal(ctx, "login", cmpErr)
		}
		return nil, invalidCredentials()
	}

	ok, err := uc.hasher.Compare(ctx, user.Password, creds.Password)
	if err != nil {
		return nil, uc.opts.internal(ctx, "login", oops.With("stage", "compare password").Wrap(err))
	}
	if !ok {
		return nil, invalidCredentials()
	}
	span.SetAttributes(attribute.String("auth.user_id", user.ID.String()))

	sessionID, tokens, err := uc.issuer.issue(ctx, user.ID)
	if err != nil {
		return nil, uc.opts.internal(ctx, "login", err)
	}
	uc.opts.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID.String(),
		"session_id", sessionID.String(),
	)
	return tokens, nil
}

func invalidCredentials() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
}
