// Package storage opens the configured backend and assembles its repositories.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/and161185/supp-tracker/internal/config"
	"github.com/and161185/supp-tracker/internal/limiter"
	"github.com/and161185/supp-tracker/internal/migrate"
	"github.com/and161185/supp-tracker/internal/repository"
	"github.com/and161185/supp-tracker/internal/repository/fallback"
	fsrepo "github.com/and161185/supp-tracker/internal/repository/firestore"
	"github.com/and161185/supp-tracker/internal/repository/local"
	"github.com/and161185/supp-tracker/internal/repository/postgres"
)

// Stores bundles the repositories of one backend.
type Stores struct {
	Days      repository.DayRepository
	Templates repository.TemplateRepository
	Library   repository.LibraryRepository
	Users     repository.UserRepository
	Limiter   limiter.Limiter

	// PrimaryDays is the configured backend's day store, never wrapped by the fallback.
	PrimaryDays repository.DayRepository
	// LocalDays is the on-device day store when one is open (local backend or fallback); nil otherwise.
	LocalDays repository.DayRepository

	pingers []func(context.Context) error
	closers []func() error
}

// Ping checks every opened backend.
func (s *Stores) Ping(ctx context.Context) error {
	for _, p := range s.pingers {
		if err := p(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every opened backend in reverse order.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// Open connects to the configured backend, applying migrations where the backend has a schema.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Stores, error) {
	s := &Stores{}
	var err error
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		err = s.openPostgres(ctx, cfg, log)
	case config.BackendFirestore:
		err = s.openFirestore(ctx, cfg, log)
	case config.BackendLocal:
		err = s.openLocal(ctx, cfg)
	default:
		err = fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.PrimaryDays = s.Days

	if cfg.LocalFallback && cfg.StoreBackend != config.BackendLocal {
		db, err := local.Open(ctx, cfg.SQLitePath)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("open local fallback: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		s.LocalDays = local.NewDayRepo(db)
		s.Days = &fallback.Days{Primary: s.Days, Local: s.LocalDays, Log: log}
		s.Templates = &fallback.Templates{Primary: s.Templates, Local: local.NewTemplateRepo(db), Log: log}
		s.Library = &fallback.Library{Primary: s.Library, Local: local.NewLibraryRepo(db), Log: log}
	}
	return s, nil
}

func (s *Stores) openPostgres(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	db, err := postgres.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, func() error { db.Close(); return nil })
	if err := WaitReady(ctx, db.Ping, cfg.ConnectTimeout, log); err != nil {
		return fmt.Errorf("postgres unreachable: %w", err)
	}
	if err := migrate.Up(ctx, cfg.PostgresDSN); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	s.pingers = append(s.pingers, db.Ping)
	s.Days = postgres.NewDayRepo(db)
	s.Templates = postgres.NewTemplateRepo(db)
	s.Library = postgres.NewLibraryRepo(db)
	s.Users = postgres.NewUserRepo(db)
	s.Limiter = limiter.NewPG(db.Pool, cfg.LoginWindow, cfg.LoginMaxFails, cfg.LoginBlockFor)
	return nil
}

func (s *Stores) openFirestore(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	db, err := fsrepo.New(ctx, cfg.FirestoreProject)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, db.Close)
	if err := WaitReady(ctx, db.Ping, cfg.ConnectTimeout, log); err != nil {
		return fmt.Errorf("firestore unreachable: %w", err)
	}
	s.pingers = append(s.pingers, db.Ping)
	s.Days = fsrepo.NewDayRepo(db)
	s.Templates = fsrepo.NewTemplateRepo(db)
	s.Library = fsrepo.NewLibraryRepo(db)
	s.Users = fsrepo.NewUserRepo(db)
	s.Limiter = limiter.NewMemory(cfg.LoginWindow, cfg.LoginMaxFails, cfg.LoginBlockFor)
	return nil
}

func (s *Stores) openLocal(ctx context.Context, cfg *config.Config) error {
	db, err := local.Open(ctx, cfg.SQLitePath)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, db.Close)
	s.pingers = append(s.pingers, db.Ping)
	s.Days = local.NewDayRepo(db)
	s.LocalDays = s.Days
	s.Templates = local.NewTemplateRepo(db)
	s.Library = local.NewLibraryRepo(db)
	s.Users = local.NewUserRepo(db)
	s.Limiter = limiter.NewMemory(cfg.LoginWindow, cfg.LoginMaxFails, cfg.LoginBlockFor)
	return nil
}

// WaitReady retries ping with exponential backoff until it succeeds, ctx ends, or maxWait elapses.
func WaitReady(ctx context.Context, ping func(context.Context) error, maxWait time.Duration, log *zap.Logger) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 5 * time.Second
	exp.MaxElapsedTime = maxWait

	op := func() error { return ping(ctx) }
	notify := func(err error, wait time.Duration) {
		log.Warn("store not ready, retrying", zap.Error(err), zap.Duration("wait", wait))
	}
	return backoff.RetryNotify(op, backoff.WithContext(exp, ctx), notify)
}
