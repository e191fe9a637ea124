// Package config loads service settings from SUPPTRACK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// Prefix is the environment variable prefix, e.g. SUPPTRACK_HTTP_ADDR.
const Prefix = "SUPPTRACK"

// Store backends.
const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
	BackendLocal     = "local"
)

// Config holds service configuration.
type Config struct {
	Env string `envconfig:"ENV" default:"production"`

	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCAddr string `envconfig:"GRPC_ADDR" default:":9090"`

	StoreBackend     string        `envconfig:"STORE_BACKEND" default:"postgres"`
	PostgresDSN      string        `envconfig:"POSTGRES_DSN"`
	SQLitePath       string        `envconfig:"SQLITE_PATH" default:"data/supptrack.db"`
	FirestoreProject string        `envconfig:"FIRESTORE_PROJECT"`
	LocalFallback    bool          `envconfig:"LOCAL_FALLBACK" default:"false"`
	ConnectTimeout   time.Duration `envconfig:"CONNECT_TIMEOUT" default:"30s"`

	JWTKey    string        `envconfig:"JWT_KEY"`
	AccessTTL time.Duration `envconfig:"ACCESS_TTL" default:"168h"`

	LoginWindow   time.Duration `envconfig:"LOGIN_WINDOW" default:"15m"`
	LoginMaxFails int           `envconfig:"LOGIN_MAX_FAILS" default:"5"`
	LoginBlockFor time.Duration `envconfig:"LOGIN_BLOCK_FOR" default:"15m"`

	ApplyWorkers      int           `envconfig:"APPLY_WORKERS" default:"1"`
	RolloverInterval  time.Duration `envconfig:"ROLLOVER_INTERVAL" default:"60s"`
	RolloverCarryOver bool          `envconfig:"ROLLOVER_CARRY_OVER" default:"false"`
	Timezone          string        `envconfig:"TIMEZONE" default:"Local"`
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load(log *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("cannot read .env", zap.Error(err))
	}
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("store", cfg.StoreBackend),
		zap.Bool("local_fallback", cfg.LocalFallback),
		zap.Int("apply_workers", cfg.ApplyWorkers),
		zap.Duration("rollover_interval", cfg.RolloverInterval),
	)
	return &cfg, nil
}

// Validate checks backend-specific requirements.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%s_POSTGRES_DSN is required for the postgres backend", Prefix)
		}
	case BackendFirestore:
		if c.FirestoreProject == "" {
			return fmt.Errorf("%s_FIRESTORE_PROJECT is required for the firestore backend", Prefix)
		}
	case BackendLocal:
	default:
		return fmt.Errorf("unsupported %s_STORE_BACKEND: %q", Prefix, c.StoreBackend)
	}
	if c.ApplyWorkers < 1 {
		return fmt.Errorf("%s_APPLY_WORKERS must be >= 1", Prefix)
	}
	if c.RolloverInterval <= 0 {
		return fmt.Errorf("%s_ROLLOVER_INTERVAL must be positive", Prefix)
	}
	_, err := c.Location()
	return err
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// IsDevelopment reports whether development logging is wanted.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// NewLogger builds the process logger for the configured environment.
func (c *Config) NewLogger() (*zap.Logger, error) {
	if c.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
