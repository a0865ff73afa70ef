// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// SessionRotator is the storage a session refresh needs.
type SessionRotator interface {
	SessionFinderByToken
	SessionUpdater
}

// RefreshSessionUseCase rotates a refresh token and issues a new access token.
type RefreshSessionUseCase struct {
	sessions  SessionRotator
	tokens    Tokens
	durations Durations
	opts      options
}

// NewRefreshSessionUseCase validates its dependencies and builds the use case.
func NewRefreshSessionUseCase(sessions SessionRotator, tokens Tokens, d Durations, opts ...Option) (*RefreshSessionUseCase, error) {
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("session store is required")
	}
	if err := validateTokens(tokens, d); err != nil {
		return nil, err
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &RefreshSessionUseCase{sessions: sessions, tokens: tokens, durations: d, opts: o}, nil
}

// Execute exchanges refreshToken for a new token set. The presented token
// stops resolving once this returns successfully, and a token can be
// exchanged at most once even under concurrent calls.
//
// An unknown, expired or already rotated token yields ErrSessionNotFound.
// Any other failure is an *InternalError.
func (uc *RefreshSessionUseCase) Execute(ctx context.Context, refreshToken string) (_ *TokenSet, err error) {
	ctx, span := uc.opts.tracer.Start(ctx, "auth.RefreshSession")
	defer func() { finish(span, err) }()

	session, err := uc.sessions.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, sessionNotFound()
		}
		return nil, uc.opts.internal(ctx, "refresh session", oops.With("stage", "find session").Wrap(err))
	}

	next, err := uc.tokens.Refresh.Generate()
	if err != nil {
		return nil, uc.opts.internal(ctx, "refresh session", oops.With("stage", "generate refresh token").Wrap(err))
	}
	if err := session.Refresh(next, uc.durations.Session); err != nil {
		return nil, uc.opts.internal(ctx, "refresh session", err)
	}
	if err := uc.sessions.Update(ctx, session); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, sessionNotFound()
		}
		return nil, uc.opts.internal(ctx, "refresh session", oops.With("stage", "update session").Wrap(err))
	}

	access, err := uc.tokens.Access.Generate(session.UserID.String(), session.RefreshedAt.Add(uc.durations.Access))
	if err != nil {
		return nil, uc.opts.internal(ctx, "refresh session", oops.With("stage", "generate access token").Wrap(err))
	}
	uc.opts.logger.InfoContext(ctx, "session rotated",
		"user_id", session.UserID.String(),
		"session_id", session.ID.String(),
	)
	return &TokenSet{
		AccessToken:      access,
		RefreshToken:     session.Token,
		RefreshExpiresAt: session.ExpiresAt,
	}, nil
}

func sessionNotFound() error {
	return oops.Code("SESSION_INVALID").Wrap(ErrSessionNotFound)
}
