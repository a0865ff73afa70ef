// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// sessionIssuer creates and persists a session for a user and signs the
// matching access token. Register and Login share it.
type sessionIssuer struct {
	sessions  SessionAdder
	tokens    Tokens
	durations Durations
}

func newSessionIssuer(sessions SessionAdder, tokens Tokens, d Durations) (*sessionIssuer, error) {
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("session store is required")
	}
	if err := validateTokens(tokens, d); err != nil {
		return nil, err
	}
	return &sessionIssuer{sessions: sessions, tokens: tokens, durations: d}, nil
}

// issue opens a session and returns its id with the token set. Errors are
// raw causes; callers mask them.
func (i *sessionIssuer) issue(ctx context.Context, userID ulid.ULID) (ulid.ULID, *TokenSet, error) {
	refresh, err := i.tokens.Refresh.Generate()
	if err != nil {
		return ulid.ULID{}, nil, oops.With("operation", "generate refresh token").Wrap(err)
	}
	session, err := NewSession(refresh, userID, i.durations.Session)
	if err != nil {
		return ulid.ULID{}, nil, oops.With("operation", "create session").Wrap(err)
	}
	if err := i.sessions.Add(ctx, session); err != nil {
		return ulid.ULID{}, nil, oops.With("operation", "add session").Wrap(err)
	}
	access, err := i.tokens.Access.Generate(userID.String(), session.CreatedAt.Add(i.durations.Access))
	if err != nil {
		return ulid.ULID{}, nil, oops.With("operation", "generate access token").Wrap(err)
	}
	return session.ID, &TokenSet{
		AccessToken:      access,
		RefreshToken:     session.Token,
		RefreshExpiresAt: session.ExpiresAt,
	}, nil
}
