// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session is a refresh-token bound login. The token rotates on every refresh;
// ExpiresAt never moves backwards.
type Session struct {
	ID          ulid.ULID
	Token       string
	UserID      ulid.ULID
	CreatedAt   time.Time
	RefreshedAt time.Time
	ExpiresAt   time.Time

	// previousToken is the token this session carried before its last
	// Refresh. Stores use it to reject a stale concurrent rotation.
	previousToken string
}

// NewSession creates a Session that expires duration from now.
func NewSession(token string, userID ulid.ULID, duration time.Duration) (*Session, error) {
	return NewSessionAt(token, userID, duration, time.Now())
}

// NewSessionAt is NewSession with an explicit creation time.
// Useful for testing with deterministic time values.
func NewSessionAt(token string, userID ulid.ULID, duration time.Duration, now time.Time) (*Session, error) {
	if token == "" {
		return nil, oops.Code("SESSION_INVALID_TOKEN").Errorf("token cannot be empty")
	}
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if duration <= 0 {
		return nil, oops.Code("SESSION_INVALID_DURATION").With("duration", duration).Errorf("duration must be positive")
	}

	return &Session{
		ID:          ulid.Make(),
		Token:       token,
		UserID:      userID,
		CreatedAt:   now,
		RefreshedAt: now,
		ExpiresAt:   now.Add(duration),
	}, nil
}

// Refresh rotates the token and extends the session by duration from now.
func (s *Session) Refresh(token string, duration time.Duration) error {
	return s.RefreshAt(token, duration, time.Now())
}

// RefreshAt is Refresh with an explicit refresh time.
// ExpiresAt is only ever moved forward.
func (s *Session) RefreshAt(token string, duration time.Duration, now time.Time) error {
	if token == "" {
		return oops.Code("SESSION_INVALID_TOKEN").Errorf("token cannot be empty")
	}
	if duration <= 0 {
		return oops.Code("SESSION_INVALID_DURATION").With("duration", duration).Errorf("duration must be positive")
	}

	s.previousToken = s.Token
	s.Token = token
	s.RefreshedAt = now
	if expiresAt := now.Add(duration); expiresAt.After(s.ExpiresAt) {
		s.ExpiresAt = expiresAt
	}
	return nil
}

// PreviousToken returns the token replaced by the last Refresh, or "" if the
// session has not been refreshed since it was loaded.
func (s *Session) PreviousToken() string {
	return s.previousToken
}

// HasExpired returns true if the session has expired.
func (s *Session) HasExpired() bool {
	return s.HasExpiredAt(time.Now())
}

// HasExpiredAt returns true if the session would be expired at the given time.
func (s *Session) HasExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// Clone returns a copy of s as it would be loaded from storage, with no
// pending rotation.
func (s *Session) Clone() *Session {
	cp := *s
	cp.previousToken = ""
	return &cp
}
