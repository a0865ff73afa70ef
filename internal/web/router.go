// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package web exposes the authentication use cases over HTTP with JSON bodies.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/holomush/authcore/internal/auth"
)

// CredentialsFlow is implemented by the register and login use cases.
type CredentialsFlow interface {
	Execute(ctx context.Context, creds auth.Credentials) (*auth.TokenSet, error)
}

// SessionFlow is implemented by the refresh-session use case.
type SessionFlow interface {
	Execute(ctx context.Context, refreshToken string) (*auth.TokenSet, error)
}

// AccessFlow is implemented by the refresh-access use case.
type AccessFlow interface {
	Execute(ctx context.Context, refreshToken string) (string, error)
}

// UseCases groups the flows served by the router. All fields are required.
type UseCases struct {
	Register       CredentialsFlow
	Login          CredentialsFlow
	RefreshSession SessionFlow
	RefreshAccess  AccessFlow
}

// Recorder receives one outcome per finished request.
type Recorder interface {
	RecordOperation(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, string) {}

// NewRouter builds the HTTP handler. recorder and logger may be nil.
func NewRouter(uc UseCases, recorder Recorder, logger *slog.Logger) http.Handler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{uc: uc, recorder: recorder, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/refresh", h.refreshSession)
		r.Post("/access", h.refreshAccess)
	})

	return r
}
