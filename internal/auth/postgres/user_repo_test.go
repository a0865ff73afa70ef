// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/authcore/internal/auth"
	"github.com/holomush/authcore/pkg/errutil"
)

// testHash is a syntactically valid bcrypt hash; these tests never compare it.
const testHash = "$2a$04$abcdefghijklmnopqrstuuJ0tM8n5ezLh0S8yXv1cQfVxQ1Wk4Y6e"

func testUser(t *testing.T) *auth.User {
	t.Helper()
	username, err := auth.NewUsername("alice")
	require.NoError(t, err)
	pw, err := auth.PasswordFromHash(testHash)
	require.NoError(t, err)
	user, err := auth.NewUser(username, pw)
	require.NoError(t, err)
	return user
}

func TestUserRepository_Add(t *testing.T) {
	user := testUser(t)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		check     func(t *testing.T, err error)
	}{
		{
			name: "inserts user",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(user.ID.String(), "alice", testHash, user.CreatedAt, user.UpdatedAt, false).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "duplicate username",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"})
			},
			check: func(t *testing.T, err error) {
				var dup *auth.DuplicationError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, "user", dup.Object)
				assert.Equal(t, "username", dup.Field)
				assert.ErrorIs(t, err, auth.ErrDuplicate)
			},
		},
		{
			name: "duplicate id",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_pkey"})
			},
			check: func(t *testing.T, err error) {
				var dup *auth.DuplicationError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, "id", dup.Field)
			},
		},
		{
			name: "unknown unique constraint is not a duplicate",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
			},
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.NotErrorIs(t, err, auth.ErrDuplicate)
				errutil.AssertErrorCode(t, err, "USER_ADD_FAILED")
				errutil.AssertErrorContext(t, err, "constraint", "users_email_key")
			},
		},
		{
			name: "connection error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(errors.New("connection refused"))
			},
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.NotErrorIs(t, err, auth.ErrDuplicate)
				errutil.AssertErrorCode(t, err, "USER_ADD_FAILED")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewUserRepository(mock)
			tt.check(t, repo.Add(context.Background(), user))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_FindByUsername(t *testing.T) {
	ctx := context.Background()
	id := ulid.Make()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	username, err := auth.NewUsername("alice")
	require.NoError(t, err)
	columns := []string{"id", "username", "password_hash", "created_at", "updated_at", "is_deleted"}

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username`).
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows(columns).AddRow(id.String(), "alice", testHash, created, created, false))

		user, err := NewUserRepository(mock).FindByUsername(ctx, username)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "alice", user.Username.String())
		assert.Equal(t, testHash, user.Password.Hash())
		assert.Equal(t, created, user.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username`).
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows(columns))

		_, err = NewUserRepository(mock).FindByUsername(ctx, username)
		var nf *auth.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "username", nf.Field)
		errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt hash", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username`).
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows(columns).AddRow(id.String(), "alice", "plaintext!", created, created, false))

		_, err = NewUserRepository(mock).FindByUsername(ctx, username)
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
