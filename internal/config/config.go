// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads service configuration from defaults, an optional YAML
// file and command-line flags, in that order of precedence.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/holomush/authcore/internal/auth"
	"github.com/holomush/authcore/internal/logging"
	"github.com/holomush/authcore/internal/token"
)

// Environment variables consulted when the matching key is unset.
const (
	EnvDatabaseURL   = "DATABASE_URL"
	EnvSigningSecret = "AUTHCORE_SIGNING_SECRET"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config is the complete service configuration.
type Config struct {
	HTTP    HTTPConfig    `koanf:"http"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
	Storage StorageConfig `koanf:"storage"`
	Auth    AuthConfig    `koanf:"auth"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend     string `koanf:"backend"`
	DatabaseURL string `koanf:"database_url"`
}

// AuthConfig holds token lifetimes, signing and hashing parameters.
type AuthConfig struct {
	SessionDuration  time.Duration `koanf:"session_duration"`
	AccessDuration   time.Duration `koanf:"access_duration"`
	Issuer           string        `koanf:"issuer"`
	SigningSecret    string        `koanf:"signing_secret"`
	SigningAlgorithm string        `koanf:"signing_algorithm"`
	BcryptCost       int           `koanf:"bcrypt_cost"`
	HashWorkers      int           `koanf:"hash_workers"`
}

// Default returns the configuration used when nothing overrides a key.
func Default() Config {
	return Config{
		HTTP:    HTTPConfig{Addr: ":8000"},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9100"},
		Log:     LogConfig{Format: "json", Level: "info"},
		Storage: StorageConfig{Backend: BackendMemory},
		Auth: AuthConfig{
			SessionDuration:  24 * time.Hour,
			AccessDuration:   2 * time.Hour,
			Issuer:           token.DefaultIssuer,
			SigningAlgorithm: string(token.HS256),
			BcryptCost:       auth.DefaultBcryptCost,
		},
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"http-addr":         "http.addr",
	"metrics-addr":      "metrics.addr",
	"log-format":        "log.format",
	"log-level":         "log.level",
	"storage-backend":   "storage.backend",
	"database-url":      "storage.database_url",
	"session-duration":  "auth.session_duration",
	"access-duration":   "auth.access_duration",
	"issuer":            "auth.issuer",
	"signing-algorithm": "auth.signing_algorithm",
	"bcrypt-cost":       "auth.bcrypt_cost",
	"hash-workers":      "auth.hash_workers",
}

// RegisterFlags adds the configuration flags to fs with default values.
// The signing secret has no flag so it stays out of process listings.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("http-addr", d.HTTP.Addr, "API listen address")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn or error)")
	fs.String("storage-backend", d.Storage.Backend, "storage backend (memory or postgres)")
	fs.String("database-url", "", "PostgreSQL URL (default: $"+EnvDatabaseURL+")")
	fs.Duration("session-duration", d.Auth.SessionDuration, "refresh session lifetime")
	fs.Duration("access-duration", d.Auth.AccessDuration, "access token lifetime")
	fs.String("issuer", d.Auth.Issuer, "access token issuer")
	fs.String("signing-algorithm", d.Auth.SigningAlgorithm, "access token algorithm (HS256, HS384 or HS512)")
	fs.Int("bcrypt-cost", d.Auth.BcryptCost, "bcrypt work factor")
	fs.Int("hash-workers", d.Auth.HashWorkers, "concurrent password hashes (0 = GOMAXPROCS)")
}

// Load builds a Config from defaults, the YAML file at path (if non-empty)
// and the flags in fs (if non-nil). Unset secrets fall back to getenv.
func Load(path string, fs *pflag.FlagSet, getenv func(string) string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "unmarshal").Wrap(err)
	}

	if getenv != nil {
		if cfg.Storage.DatabaseURL == "" {
			cfg.Storage.DatabaseURL = getenv(EnvDatabaseURL)
		}
		if cfg.Auth.SigningSecret == "" {
			cfg.Auth.SigningSecret = getenv(EnvSigningSecret)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return invalid("http.addr", "is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format", "must be 'json' or 'text'")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "must be debug, info, warn or error")
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return invalid("storage.database_url", "is required for the postgres backend")
		}
	default:
		return invalid("storage.backend", "must be 'memory' or 'postgres'")
	}
	if c.Auth.SessionDuration <= 0 {
		return invalid("auth.session_duration", "must be positive")
	}
	if c.Auth.AccessDuration <= 0 {
		return invalid("auth.access_duration", "must be positive")
	}
	if len(c.Auth.SigningSecret) < token.MinSecretLength {
		return invalid("auth.signing_secret", "must be at least 16 bytes")
	}
	if _, err := token.ParseAlgorithm(c.Auth.SigningAlgorithm); err != nil {
		return invalid("auth.signing_algorithm", "must be HS256, HS384 or HS512")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return invalid("auth.bcrypt_cost", "must be between 4 and 31")
	}
	if c.Auth.HashWorkers < 0 {
		return invalid("auth.hash_workers", "must not be negative")
	}
	return nil
}

func invalid(key, reason string) error {
	return oops.Code("CONFIG_INVALID").With("key", key).Errorf("%s %s", key, reason)
}
