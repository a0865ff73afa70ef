// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package memory

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/authcore/internal/auth"
)

// UserStore is an in-memory auth.UserStore.
type UserStore struct {
	mu         sync.Mutex
	users      map[ulid.ULID]auth.User
	byUsername map[string]ulid.ULID
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		users:      make(map[ulid.ULID]auth.User),
		byUsername: make(map[string]ulid.ULID),
	}
}

// Add stores a copy of user.
func (s *UserStore) Add(ctx context.Context, user *auth.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := user.Username.String()
	if _, taken := s.byUsername[name]; taken {
		return &auth.DuplicationError{Object: "user", Field: "username", Value: name}
	}
	if _, taken := s.users[user.ID]; taken {
		return &auth.DuplicationError{Object: "user", Field: "id", Value: user.ID.String()}
	}
	s.users[user.ID] = *user
	s.byUsername[name] = user.ID
	return nil
}

// FindByUsername returns a copy of the stored user.
func (s *UserStore) FindByUsername(ctx context.Context, username auth.Username) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[username.String()]
	if !ok {
		return nil, &auth.NotFoundError{Object: "user", Field: "username"}
	}
	user := s.users[id]
	return &user, nil
}

// Len returns the number of stored users.
func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

var _ auth.UserStore = (*UserStore)(nil)
