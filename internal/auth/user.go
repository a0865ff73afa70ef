// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// User is a registered account.
type User struct {
	ID        ulid.ULID
	Username  Username
	Password  Password
	CreatedAt time.Time
	UpdatedAt time.Time
	IsDeleted bool
}

// NewUser creates a User with a fresh identity and both timestamps set to now.
func NewUser(username Username, password Password) (*User, error) {
	if username.IsZero() {
		return nil, oops.Code("USER_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if password.IsZero() {
		return nil, oops.Code("USER_INVALID_PASSWORD").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &User{
		ID:        ulid.Make(),
		Username:  username,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
