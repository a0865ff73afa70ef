// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
)

// RefreshAccessUseCase issues a new access token for a live session without
// rotating its refresh token.
type RefreshAccessUseCase struct {
	sessions SessionFinderByToken
	access   AccessTokenGenerator
	duration time.Duration
	opts     options
}

// NewRefreshAccessUseCase validates its dependencies and builds the use case.
func NewRefreshAccessUseCase(sessions SessionFinderByToken, access AccessTokenGenerator, accessDuration time.Duration, opts ...Option) (*RefreshAccessUseCase, error) {
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("session store is required")
	}
	if access == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("access token generator is required")
	}
	if accessDuration <= 0 {
		return nil, oops.Code("AUTH_INVALID_CONFIG").With("access_duration", accessDuration).Errorf("access duration must be positive")
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &RefreshAccessUseCase{sessions: sessions, access: access, duration: accessDuration, opts: o}, nil
}

// Execute returns an access token valid for the configured duration from now.
// The session is never written.
//
// An unknown or expired token yields ErrSessionNotFound. Any other failure is
// an *InternalError.
func (uc *RefreshAccessUseCase) Execute(ctx context.Context, refreshToken string) (_ string, err error) {
	ctx, span := uc.opts.tracer.Start(ctx, "auth.RefreshAccess")
	defer func() { finish(span, err) }()

	session, err := uc.sessions.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", sessionNotFound()
		}
		return "", uc.opts.internal(ctx, "refresh access", oops.With("stage", "find session").Wrap(err))
	}

	access, err := uc.access.Generate(session.UserID.String(), time.Now().Add(uc.duration))
	if err != nil {
		return "", uc.opts.internal(ctx, "refresh access", oops.With("stage", "generate access token").Wrap(err))
	}
	return access, nil
}
