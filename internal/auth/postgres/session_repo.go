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

// SessionRepository implements auth.SessionStore using PostgreSQL.
type SessionRepository struct {
	db  DB
	now func() time.Time
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Add inserts session.
func (r *SessionRepository) Add(ctx context.Context, session *auth.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, token, user_id, created_at, refreshed_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		session.ID.String(),
		session.Token,
		session.UserID.String(),
		session.CreatedAt,
		session.RefreshedAt,
		session.ExpiresAt,
	)
	if constraint, ok := uniqueViolation(err); ok {
		var dup *auth.DuplicationError
		switch constraint {
		case constraintSessionsToken:
			dup = &auth.DuplicationError{Object: "session", Field: "token", Value: session.Token}
		case constraintSessionsPK:
			dup = &auth.DuplicationError{Object: "session", Field: "id", Value: session.ID.String()}
		default:
			return oops.Code("SESSION_ADD_FAILED").
				With("operation", "insert session").
				With("constraint", constraint).
				Wrap(err)
		}
		return oops.Code("SESSION_DUPLICATE").With("constraint", constraint).Wrap(dup)
	}
	if err != nil {
		return oops.Code("SESSION_ADD_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return nil
}

// Update writes the session's token and timestamps by ID. A pending rotation
// only applies while the stored token still matches the previous one.
func (r *SessionRepository) Update(ctx context.Context, session *auth.Session) error {
	var (
		sql  = `UPDATE sessions SET token = $2, refreshed_at = $3, expires_at = $4 WHERE id = $1`
		args = []any{session.ID.String(), session.Token, session.RefreshedAt, session.ExpiresAt}
	)
	if prev := session.PreviousToken(); prev != "" {
		sql += ` AND token = $5`
		args = append(args, prev)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if constraint, ok := uniqueViolation(err); ok {
		return oops.Code("SESSION_DUPLICATE").
			With("constraint", constraint).
			Wrap(&auth.DuplicationError{Object: "session", Field: "token", Value: session.Token})
	}
	if err != nil {
		return oops.Code("SESSION_UPDATE_FAILED").
			With("operation", "update session").
			With("id", session.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("id", session.ID.String()).
			Wrap(&auth.NotFoundError{Object: "session", Field: "token"})
	}
	return nil
}

// FindByToken locks the session row, evicts it if expired, and returns it
// otherwise.
func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*auth.Session, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, oops.Code("SESSION_FIND_FAILED").With("operation", "begin").Wrap(err)
	}

	row := tx.QueryRow(ctx, `
		SELECT id, token, user_id, created_at, refreshed_at, expires_at
		FROM sessions
		WHERE token = $1
		FOR UPDATE
	`, token)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		rollback(ctx, tx)
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(&auth.NotFoundError{Object: "session", Field: "token"})
	}
	if err != nil {
		rollback(ctx, tx)
		return nil, oops.Code("SESSION_FIND_FAILED").
			With("operation", "get session by token").
			Wrap(err)
	}

	if session.HasExpiredAt(r.now()) {
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, session.ID.String()); err != nil {
			rollback(ctx, tx)
			return nil, oops.Code("SESSION_EVICT_FAILED").
				With("operation", "delete expired session").
				With("id", session.ID.String()).
				Wrap(err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, oops.Code("SESSION_EVICT_FAILED").With("operation", "commit").Wrap(err)
		}
		return nil, oops.Code("SESSION_NOT_FOUND").
			With("expired", true).
			Wrap(&auth.NotFoundError{Object: "session", Field: "token"})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, oops.Code("SESSION_FIND_FAILED").With("operation", "commit").Wrap(err)
	}
	return session, nil
}

func scanSession(row pgx.Row) (*auth.Session, error) {
	var (
		idStr, token, userIDStr           string
		createdAt, refreshedAt, expiresAt time.Time
	)
	if err := row.Scan(&idStr, &token, &userIDStr, &createdAt, &refreshedAt, &expiresAt); err != nil {
		return nil, err //nolint:wrapcheck // callers classify ErrNoRows
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SESSION_CORRUPT").With("field", "id").Wrap(err)
	}
	userID, err := ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.Code("SESSION_CORRUPT").With("field", "user_id").With("id", idStr).Wrap(err)
	}

	return &auth.Session{
		ID:          id,
		Token:       token,
		UserID:      userID,
		CreatedAt:   createdAt,
		RefreshedAt: refreshedAt,
		ExpiresAt:   expiresAt,
	}, nil
}

var _ auth.SessionStore = (*SessionRepository)(nil)
