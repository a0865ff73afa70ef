// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package mocks provides testify mocks for the auth ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/holomush/authcore/internal/auth"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// MockUserStore is a mock for auth.UserStore.
type MockUserStore struct {
	mock.Mock
}

// NewMockUserStore creates a MockUserStore whose expectations are asserted on cleanup.
func NewMockUserStore(t cleanupT) *MockUserStore {
	m := &MockUserStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserStore) Add(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) FindByUsername(ctx context.Context, username auth.Username) (*auth.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

// MockSessionStore is a mock for auth.SessionStore.
type MockSessionStore struct {
	mock.Mock
}

// NewMockSessionStore creates a MockSessionStore whose expectations are asserted on cleanup.
func NewMockSessionStore(t cleanupT) *MockSessionStore {
	m := &MockSessionStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionStore) Add(ctx context.Context, session *auth.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionStore) Update(ctx context.Context, session *auth.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionStore) FindByToken(ctx context.Context, token string) (*auth.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

// MockPasswordHasher is a mock for auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher whose expectations are asserted on cleanup.
func NewMockPasswordHasher(t cleanupT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(ctx context.Context, plaintext string) (auth.Password, error) {
	args := m.Called(ctx, plaintext)
	return args.Get(0).(auth.Password), args.Error(1)
}

func (m *MockPasswordHasher) Compare(ctx context.Context, password auth.Password, candidate string) (bool, error) {
	args := m.Called(ctx, password, candidate)
	return args.Bool(0), args.Error(1)
}

// MockRefreshTokenGenerator is a mock for auth.RefreshTokenGenerator.
type MockRefreshTokenGenerator struct {
	mock.Mock
}

// NewMockRefreshTokenGenerator creates a MockRefreshTokenGenerator whose expectations are asserted on cleanup.
func NewMockRefreshTokenGenerator(t cleanupT) *MockRefreshTokenGenerator {
	m := &MockRefreshTokenGenerator{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRefreshTokenGenerator) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// MockAccessTokenGenerator is a mock for auth.AccessTokenGenerator.
type MockAccessTokenGenerator struct {
	mock.Mock
}

// NewMockAccessTokenGenerator creates a MockAccessTokenGenerator whose expectations are asserted on cleanup.
func NewMockAccessTokenGenerator(t cleanupT) *MockAccessTokenGenerator {
	m := &MockAccessTokenGenerator{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccessTokenGenerator) Generate(subject string, expiresAt time.Time) (string, error) {
	args := m.Called(subject, expiresAt)
	return args.String(0), args.Error(1)
}

var (
	_ auth.UserStore             = (*MockUserStore)(nil)
	_ auth.SessionStore          = (*MockSessionStore)(nil)
	_ auth.PasswordHasher        = (*MockPasswordHasher)(nil)
	_ auth.RefreshTokenGenerator = (*MockRefreshTokenGenerator)(nil)
	_ auth.AccessTokenGenerator  = (*MockAccessTokenGenerator)(nil)
)
