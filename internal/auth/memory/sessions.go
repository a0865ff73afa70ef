// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/authcore/internal/auth"
)

// SessionStore is an in-memory auth.SessionStore.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[ulid.ULID]*auth.Session
	byToken  map[string]ulid.ULID
	now      func() time.Time
}

// SessionStoreOption configures a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithNowFunc replaces the clock used for expiry checks.
func WithNowFunc(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore(opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{
		sessions: make(map[ulid.ULID]*auth.Session),
		byToken:  make(map[string]ulid.ULID),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add stores a copy of session.
func (s *SessionStore) Add(ctx context.Context, session *auth.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byToken[session.Token]; taken {
		return &auth.DuplicationError{Object: "session", Field: "token", Value: session.Token}
	}
	if _, taken := s.sessions[session.ID]; taken {
		return &auth.DuplicationError{Object: "session", Field: "id", Value: session.ID.String()}
	}
	s.sessions[session.ID] = session.Clone()
	s.byToken[session.Token] = session.ID
	return nil
}

// Update replaces the stored session and moves its token index entry.
func (s *SessionStore) Update(ctx context.Context, session *auth.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[session.ID]
	if !ok {
		return &auth.NotFoundError{Object: "session", Field: "id"}
	}
	if prev := session.PreviousToken(); prev != "" && stored.Token != prev {
		return &auth.NotFoundError{Object: "session", Field: "token"}
	}
	if session.Token != stored.Token {
		if owner, taken := s.byToken[session.Token]; taken && owner != session.ID {
			return &auth.DuplicationError{Object: "session", Field: "token", Value: session.Token}
		}
		delete(s.byToken, stored.Token)
		s.byToken[session.Token] = session.ID
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

// FindByToken returns a copy of the live session for token. An expired
// session is removed and reported as not found.
func (s *SessionStore) FindByToken(ctx context.Context, token string) (*auth.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byToken[token]
	if !ok {
		return nil, &auth.NotFoundError{Object: "session", Field: "token"}
	}
	session := s.sessions[id]
	if session.HasExpiredAt(s.now()) {
		delete(s.byToken, token)
		delete(s.sessions, id)
		return nil, &auth.NotFoundError{Object: "session", Field: "token"}
	}
	return session.Clone(), nil
}

// Len returns the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

var _ auth.SessionStore = (*SessionStore)(nil)
