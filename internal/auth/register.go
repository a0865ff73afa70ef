// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
)

// RegisterUseCase creates an account and logs it in.
type RegisterUseCase struct {
	users  UserAdder
	hasher PasswordHasher
	issuer *sessionIssuer
	opts   options
}

// NewRegisterUseCase validates its dependencies and builds the use case.
func NewRegisterUseCase(users UserAdder, sessions SessionAdder, hasher PasswordHasher, tokens Tokens, d Durations, opts ...Option) (*RegisterUseCase, error) {
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
	return &RegisterUseCase{users: users, hasher: hasher, issuer: issuer, opts: o}, nil
}

// Execute validates creds, stores a new user and opens a session for it.
//
// Input errors are *ValidationError or *MultiValidationErrors. Any other
// failure, including a taken username, is an *InternalError.
// Once the first write starts, cancelling ctx no longer aborts the
// registration, so a user is never left without the session it asked for.
//
// The user and session writes are not atomic. If opening the session fails
// after the user is stored, the user is kept and the caller gets an
// *InternalError; a later Login opens the session.
func (uc *RegisterUseCase) Execute(ctx context.Context, creds Credentials) (_ *TokenSet, err error) {
	ctx, span := uc.opts.tracer.Start(ctx, "auth.Register")
	defer func() { finish(span, err) }()

	var failures []*ValidationError
	username, uerr := NewUsername(creds.Username)
	if uerr != nil {
		var verr *ValidationError
		if errors.As(uerr, &verr) {
			failures = append(failures, verr)
		}
	}
	if verr := ValidatePassword(creds.Password); verr != nil {
		failures = append(failures, verr)
	}
	if err := joinValidation(failures); err != nil {
		return nil, err
	}

	password, err := uc.hasher.Hash(ctx, creds.Password)
	if err != nil {
		return nil, uc.opts.internal(ctx, "register", oops.With("stage", "hash password").Wrap(err))
	}
	user, err := NewUser(username, password)
	if err != nil {
		return nil, uc.opts.internal(ctx, "register", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, uc.opts.internal(ctx, "register", oops.With("stage", "before write").Wrap(err))
	}

	writeCtx := context.WithoutCancel(ctx)
	if err := uc.users.Add(writeCtx, user); err != nil {
		return nil, uc.opts.internal(ctx, "register", oops.With("stage", "add user").Wrap(err))
	}
	span.SetAttributes(attribute.String("auth.user_id", user.ID.String()))

	sessionID, tokens, err := uc.issuer.issue(writeCtx, user.ID)
	if err != nil {
		uc.opts.logger.WarnContext(ctx, "user registered without session",
			"user_id", user.ID.String(),
		)
		return nil, uc.opts.internal(ctx, "register", err)
	}
	uc.opts.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID.String(),
		"session_id", sessionID.String(),
	)
	return tokens, nil
}
