// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/holomush/authcore/internal/auth"
	"github.com/holomush/authcore/internal/auth/memory"
	"github.com/holomush/authcore/internal/token"
)

const testSigningSecret = "test-signing-secret-0123456789"

var testDurations = auth.Durations{Session: 24 * time.Hour, Access: 2 * time.Hour}

// harness wires the use cases to in-memory stores and real token generators.
type harness struct {
	users    *memory.UserStore
	sessions *memory.SessionStore
	hasher   *auth.HashPool
	access   *token.AccessGenerator
	tokens   auth.Tokens
	logs     *bytes.Buffer
	logger   *slog.Logger

	register       *auth.RegisterUseCase
	login          *auth.LoginUseCase
	refreshSession *auth.RefreshSessionUseCase
	refreshAccess  *auth.RefreshAccessUseCase
}

func newHarness(t *testing.T, sessionOpts ...memory.SessionStoreOption) *harness {
	t.Helper()

	access, err := token.NewAccessGenerator(testSigningSecret, token.HS256)
	require.NoError(t, err)

	var logs bytes.Buffer
	h := &harness{
		users:    memory.NewUserStore(),
		sessions: memory.NewSessionStore(sessionOpts...),
		hasher:   auth.NewHashPool(2, bcrypt.MinCost),
		access:   access,
		tokens:   auth.Tokens{Refresh: token.NewRefreshGenerator(), Access: access},
		logs:     &logs,
		logger:   slog.New(slog.NewJSONHandler(&logs, nil)),
	}

	h.register, err = auth.NewRegisterUseCase(h.users, h.sessions, h.hasher, h.tokens, testDurations, auth.WithLogger(h.logger))
	require.NoError(t, err)
	h.login, err = auth.NewLoginUseCase(h.users, h.sessions, h.hasher, h.tokens, testDurations, auth.WithLogger(h.logger))
	require.NoError(t, err)
	h.refreshSession, err = auth.NewRefreshSessionUseCase(h.sessions, h.tokens, testDurations, auth.WithLogger(h.logger))
	require.NoError(t, err)
	h.refreshAccess, err = auth.NewRefreshAccessUseCase(h.sessions, access, testDurations.Access, auth.WithLogger(h.logger))
	require.NoError(t, err)
	return h
}

func mustUsername(t *testing.T, raw string) auth.Username {
	t.Helper()
	u, err := auth.NewUsername(raw)
	require.NoError(t, err)
	return u
}

func requireInternal(t *testing.T, err error) *auth.InternalError {
	t.Helper()
	require.Error(t, err)
	var ierr *auth.InternalError
	require.ErrorAs(t, err, &ierr)
	return ierr
}
