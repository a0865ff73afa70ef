// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/authcore/pkg/errutil"
)

const tracerName = "github.com/holomush/authcore/internal/auth"

// Tokens groups the token generators a use case needs.
type Tokens struct {
	Refresh RefreshTokenGenerator
	Access  AccessTokenGenerator
}

// Durations holds the configured token lifetimes.
type Durations struct {
	Session time.Duration
	Access  time.Duration
}

// Credentials is the input to Register and Login.
type Credentials struct {
	Username string
	Password string
}

// TokenSet is returned to a client after a successful login or refresh.
type TokenSet struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Option configures a use case.
type Option func(*options)

type options struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// WithLogger sets the logger for completed operations and masked faults.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTracerProvider sets the provider spans are started from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracer = tp.Tracer(tracerName)
		}
	}
}

func buildOptions(opts []Option) (options, error) {
	o := options{
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		return options{}, oops.Code("AUTH_INVALID_CONFIG").Errorf("logger is required")
	}
	return o, nil
}

func validateTokens(tokens Tokens, d Durations) error {
	if tokens.Refresh == nil {
		return oops.Code("AUTH_INVALID_CONFIG").Errorf("refresh token generator is required")
	}
	if tokens.Access == nil {
		return oops.Code("AUTH_INVALID_CONFIG").Errorf("access token generator is required")
	}
	if d.Session <= 0 || d.Access <= 0 {
		return oops.Code("AUTH_INVALID_CONFIG").
			With("session_duration", d.Session).
			With("access_duration", d.Access).
			Errorf("durations must be positive")
	}
	return nil
}

// internal logs cause and returns the opaque error handed to callers.
func (o options) internal(ctx context.Context, op string, cause error) error {
	errutil.LogErrorContext(ctx, o.logger, "auth operation failed", cause, "operation", op)
	return &InternalError{Op: op}
}

// finish records the outcome on span and ends it.
func finish(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
