// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"time"
)

// UserAdder persists new users.
type UserAdder interface {
	// Add stores user. Returns a *DuplicationError if the username or ID is
	// already taken. The check and insert are atomic.
	Add(ctx context.Context, user *User) error
}

// UserFinderByUsername looks users up by login name.
type UserFinderByUsername interface {
	// FindByUsername returns the user, or a *NotFoundError.
	FindByUsername(ctx context.Context, username Username) (*User, error)
}

// SessionAdder persists new sessions.
type SessionAdder interface {
	// Add stores session. Returns a *DuplicationError if the token or ID is
	// already taken. The check and insert are atomic.
	Add(ctx context.Context, session *Session) error
}

// SessionUpdater writes back a modified session.
type SessionUpdater interface {
	// Update replaces the stored session with the same ID and re-indexes its
	// token. When session.PreviousToken() is set, the write only applies if
	// the stored token still equals it; otherwise a *NotFoundError is
	// returned so a token can be rotated at most once.
	Update(ctx context.Context, session *Session) error
}

// SessionFinderByToken looks sessions up by refresh token.
type SessionFinderByToken interface {
	// FindByToken returns the live session for token, or a *NotFoundError.
	// An expired session is evicted and reported as not found.
	FindByToken(ctx context.Context, token string) (*Session, error)
}

// UserStore is the full user storage capability set.
type UserStore interface {
	UserAdder
	UserFinderByUsername
}

// SessionStore is the full session storage capability set.
type SessionStore interface {
	SessionAdder
	SessionUpdater
	SessionFinderByToken
}

// RefreshTokenGenerator produces opaque refresh tokens.
type RefreshTokenGenerator interface {
	// Generate returns a new unpredictable token.
	Generate() (string, error)
}

// AccessTokenGenerator produces signed access tokens.
type AccessTokenGenerator interface {
	// Generate signs a token for subject that expires at expiresAt.
	Generate(subject string, expiresAt time.Time) (string, error)
}
