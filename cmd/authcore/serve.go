// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/authcore/internal/auth"
	"github.com/holomush/authcore/internal/auth/memory"
	"github.com/holomush/authcore/internal/auth/postgres"
	"github.com/holomush/authcore/internal/config"
	"github.com/holomush/authcore/internal/logging"
	"github.com/holomush/authcore/internal/observability"
	"github.com/holomush/authcore/internal/store"
	"github.com/holomush/authcore/internal/token"
	"github.com/holomush/authcore/internal/web"
	"github.com/holomush/authcore/internal/xdg"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication HTTP API",
		Long: `Start the HTTP API serving register, login, refresh and access
endpoints, plus the metrics and health server when configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, nil)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

// backend is the storage selected by configuration.
type backend struct {
	users    auth.UserStore
	sessions auth.SessionStore
	close    func()
}

// runServeWithDeps starts the API with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.PoolFactory == nil {
		deps.PoolFactory = func(ctx context.Context, url string) (*pgxpool.Pool, error) {
			return store.Connect(ctx, url, store.DefaultConnectOptions())
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if deps.ListenerFactory == nil {
		deps.ListenerFactory = net.Listen
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	if ctx == nil {
		ctx = context.Background()
	}

	path, err := xdg.ResolveConfigFile(configFile, deps.Getenv)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path, cmd.Flags(), deps.Getenv)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return oops.Wrapf(err, "invalid configuration")
	}

	logger := logging.SetDefault("authcore", version, logging.Options{
		Format: cfg.Log.Format,
		Level:  cfg.Log.Level,
	})
	logger.Info("starting authcore",
		"http_addr", cfg.HTTP.Addr,
		"storage_backend", cfg.Storage.Backend,
		"log_format", cfg.Log.Format,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ready atomic.Bool
	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, ready.Load)
		metrics = obsServer.Metrics()
	} else {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	b, err := openBackend(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer b.close()

	hasher := auth.NewHashPool(cfg.Auth.HashWorkers, cfg.Auth.BcryptCost,
		auth.WithHashObserver(metrics.ObservePasswordHash))
	useCases, err := buildUseCases(cfg, b, hasher, logger)
	if err != nil {
		return err
	}

	listener, err := deps.ListenerFactory("tcp", cfg.HTTP.Addr)
	if err != nil {
		return oops.Code("LISTEN_FAILED").With("addr", cfg.HTTP.Addr).Wrap(err)
	}

	httpServer := &http.Server{
		Handler:           web.NewRouter(useCases, metrics, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if obsServer != nil {
		obsErrChan, err := obsServer.Start()
		if err != nil {
			_ = listener.Close() //nolint:errcheck // start error takes precedence
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()
	ready.Store(true)

	cmd.Println("authcore started")
	logger.Info("authcore ready", "http_addr", listener.Addr().String())

	var runErr error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errChan:
		runErr = oops.Code("HTTP_SERVE_FAILED").Wrap(err)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	ready.Store(false)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}

// openBackend builds the stores named by cfg.Storage.Backend.
func openBackend(ctx context.Context, cfg *config.Config, deps *ServeDeps) (*backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := deps.PoolFactory(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
		}
		return &backend{
			users:    postgres.NewUserRepository(pool),
			sessions: postgres.NewSessionRepository(pool),
			close:    pool.Close,
		}, nil
	default:
		return &backend{
			users:    memory.NewUserStore(),
			sessions: memory.NewSessionStore(),
			close:    func() {},
		}, nil
	}
}

// buildUseCases wires token generators and stores into the HTTP flows.
func buildUseCases(cfg *config.Config, b *backend, hasher auth.PasswordHasher, logger *slog.Logger) (web.UseCases, error) {
	alg, err := token.ParseAlgorithm(cfg.Auth.SigningAlgorithm)
	if err != nil {
		return web.UseCases{}, err
	}
	access, err := token.NewAccessGenerator(cfg.Auth.SigningSecret, alg, token.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		return web.UseCases{}, err
	}

	tokens := auth.Tokens{Refresh: token.NewRefreshGenerator(), Access: access}
	d := auth.Durations{Session: cfg.Auth.SessionDuration, Access: cfg.Auth.AccessDuration}
	opts := []auth.Option{auth.WithLogger(logger)}

	register, err := auth.NewRegisterUseCase(b.users, b.sessions, hasher, tokens, d, opts...)
	if err != nil {
		return web.UseCases{}, err
	}
	login, err := auth.NewLoginUseCase(b.users, b.sessions, hasher, tokens, d, opts...)
	if err != nil {
		return web.UseCases{}, err
	}
	refreshSession, err := auth.NewRefreshSessionUseCase(b.sessions, tokens, d, opts...)
	if err != nil {
		return web.UseCases{}, err
	}
	refreshAccess, err := auth.NewRefreshAccessUseCase(b.sessions, access, d.Access, opts...)
	if err != nil {
		return web.UseCases{}, err
	}

	return web.UseCases{
		Register:       register,
		Login:          login,
		RefreshSession: refreshSession,
		RefreshAccess:  refreshAccess,
	}, nil
}

// monitorServerErrors cancels ctx when a background server reports an error.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
