// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/authcore/internal/config"
	"github.com/holomush/authcore/internal/xdg"
)

// NewMigrateCmd creates the migrate subcommand. Without a subcommand it
// applies all pending migrations.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply, roll back or inspect the users and sessions schema in PostgreSQL.`,
		Args:  cobra.NoArgs,
		RunE:  runMigrateUp,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrateUp,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrateDown,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied version and pending migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrateStatus,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied without running it",
		Args:  cobra.ExactArgs(1),
		RunE:  runMigrateForce,
	})

	return cmd
}

// getDatabaseURL reads storage.database_url from the config file, falling
// back to DATABASE_URL.
func getDatabaseURL() (string, error) {
	path, err := xdg.ResolveConfigFile(configFile, os.Getenv)
	if err != nil {
		return "", err
	}
	cfg, err := config.Load(path, nil, os.Getenv)
	if err != nil {
		return "", err
	}
	if cfg.Storage.DatabaseURL == "" {
		return "", oops.Code("CONFIG_INVALID").Errorf("%s environment variable or storage.database_url is required", config.EnvDatabaseURL)
	}
	return cfg.Storage.DatabaseURL, nil
}

func withMigrator(cmd *cobra.Command, fn func(migrator) error) error {
	databaseURL, err := getDatabaseURL()
	if err != nil {
		return err
	}

	m, err := newMigrator(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").With("operation", "open migrator").Wrap(err)
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			cmd.PrintErrf("warning: closing migrator: %v\n", closeErr)
		}
	}()

	return fn(m)
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	return withMigrator(cmd, func(m migrator) error {
		cmd.Println("Running migrations...")
		if err := m.Up(); err != nil {
			return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
		}
		cmd.Println("Migrations completed successfully")
		return nil
	})
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	return withMigrator(cmd, func(m migrator) error {
		cmd.Println("Rolling back migrations...")
		if err := m.Down(); err != nil {
			return oops.Code("MIGRATION_FAILED").With("operation", "roll back migrations").Wrap(err)
		}
		cmd.Println("Rollback completed successfully")
		return nil
	})
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	return withMigrator(cmd, func(m migrator) error {
		st, err := m.Status()
		if err != nil {
			return oops.Code("MIGRATION_FAILED").With("operation", "read status").Wrap(err)
		}
		cmd.Printf("Current version: %d\n", st.Version)
		if st.Dirty {
			cmd.Println("State: dirty (fix the failed migration, then run 'migrate force')")
		}
		if len(st.Pending) == 0 {
			cmd.Println("No pending migrations")
			return nil
		}
		pending := make([]string, len(st.Pending))
		for i, v := range st.Pending {
			pending[i] = fmt.Sprint(v)
		}
		cmd.Printf("Pending migrations: %s\n", strings.Join(pending, ", "))
		return nil
	})
}

func runMigrateForce(cmd *cobra.Command, args []string) error {
	version, err := parseForceVersion(args[0])
	if err != nil {
		return err
	}
	return withMigrator(cmd, func(m migrator) error {
		if err := m.Force(version); err != nil {
			return oops.Code("MIGRATION_FAILED").With("operation", "force version").Wrap(err)
		}
		cmd.Printf("Forced version %d\n", version)
		return nil
	})
}

// parseForceVersion reads a leading integer, ignoring surrounding junk.
func parseForceVersion(s string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &version); err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("version must be an integer")
	}
	return version, nil
}
