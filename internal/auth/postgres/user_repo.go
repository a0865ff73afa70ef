// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/authcore/internal/auth"
)

// UserRepository implements auth.UserStore using PostgreSQL.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Add inserts user. The unique constraints make the check and insert atomic.
func (r *UserRepository) Add(ctx context.Context, user *auth.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		user.ID.String(),
		user.Username.String(),
		user.Password.Hash(),
		user.CreatedAt,
		user.UpdatedAt,
		user.IsDeleted,
	)
	if constraint, ok := uniqueViolation(err); ok {
		var dup *auth.DuplicationError
		switch constraint {
		case constraintUsersUsername:
			dup = &auth.DuplicationError{Object: "user", Field: "username", Value: user.Username.String()}
		case constraintUsersPK:
			dup = &auth.DuplicationError{Object: "user", Field: "id", Value: user.ID.String()}
		default:
			return oops.Code("USER_ADD_FAILED").
				With("operation", "insert user").
				With("constraint", constraint).
				Wrap(err)
		}
		return oops.Code("USER_DUPLICATE").With("constraint", constraint).Wrap(dup)
	}
	if err != nil {
		return oops.Code("USER_ADD_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}
	return nil
}

// FindByUsername retrieves a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username auth.Username) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at, updated_at, is_deleted
		FROM users
		WHERE username = $1
	`, username.String())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(&auth.NotFoundError{Object: "user", Field: "username"})
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		idStr, name, hash    string
		createdAt, updatedAt time.Time
		isDeleted            bool
	)
	if err := row.Scan(&idStr, &name, &hash, &createdAt, &updatedAt, &isDeleted); err != nil {
		return nil, err //nolint:wrapcheck // callers classify ErrNoRows
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_CORRUPT").With("field", "id").Wrap(err)
	}
	username, err := auth.NewUsername(name)
	if err != nil {
		return nil, oops.Code("USER_CORRUPT").With("field", "username").With("id", idStr).Wrap(err)
	}
	password, err := auth.PasswordFromHash(hash)
	if err != nil {
		return nil, oops.Code("USER_CORRUPT").With("field", "password_hash").With("id", idStr).Wrap(err)
	}

	return &auth.User{
		ID:        id,
		Username:  username,
		Password:  password,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		IsDeleted: isDeleted,
	}, nil
}

var _ auth.UserStore = (*UserRepository)(nil)
