// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"net"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/holomush/authcore/internal/observability"
	"github.com/holomush/authcore/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// PoolFactory opens the PostgreSQL pool for the postgres backend.
	// Default: store.Connect with store.DefaultConnectOptions
	PoolFactory func(ctx context.Context, url string) (*pgxpool.Pool, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// ListenerFactory creates the API listener.
	// Default: net.Listen
	ListenerFactory func(network, address string) (net.Listener, error)

	// Getenv reads environment fallbacks for secrets.
	// Default: os.Getenv
	Getenv func(string) string
}

// ObservabilityServer wraps the methods serve uses from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

// migrator wraps the methods the migrate command uses from store.Migrator.
type migrator interface {
	Up() error
	Down() error
	Status() (store.Status, error)
	Force(version int) error
	Close() error
}

// newMigrator is replaced in tests.
var newMigrator = func(url string) (migrator, error) {
	m, err := store.NewMigrator(url)
	if err != nil {
		return nil, err
	}
	return m, nil
}
