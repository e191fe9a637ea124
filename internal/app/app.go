// Package app assembles stores and services from configuration.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/supp-tracker/internal/clock"
	"github.com/and161185/supp-tracker/internal/config"
	"github.com/and161185/supp-tracker/internal/metrics"
	"github.com/and161185/supp-tracker/internal/rollover"
	"github.com/and161185/supp-tracker/internal/service"
	"github.com/and161185/supp-tracker/internal/storage"
)

// App is the wired application shared by the server and the CLI.
type App struct {
	Cfg     *config.Config
	Log     *zap.Logger
	Clock   clock.Clock
	Metrics *metrics.Metrics
	Stores  *storage.Stores

	Auth      *service.AuthServiceImpl
	Days      *service.DayServiceImpl
	Templates *service.TemplateServiceImpl
	Library   *service.LibraryServiceImpl
	Stats     *service.StatsServiceImpl
}

// Open connects the configured store and builds the services on top of it.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	stores, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return Build(cfg, log, stores, clock.System{Loc: loc}), nil
}

// Build wires services over already opened stores.
func Build(cfg *config.Config, log *zap.Logger, stores *storage.Stores, clk clock.Clock) *App {
	m := metrics.New()
	library := service.NewLibraryService(stores.Library)
	return &App{
		Cfg:     cfg,
		Log:     log,
		Clock:   clk,
		Metrics: m,
		Stores:  stores,

		Auth:    service.NewAuthService(stores.Users, []byte(cfg.JWTKey), cfg.AccessTTL, stores.Limiter),
		Days:    service.NewDayService(stores.Days, library, clk),
		Library: library,
		Stats:   service.NewStatsService(stores.Days),
		Templates: service.NewTemplateService(stores.Days, stores.Templates, clk, log, service.TemplateOptions{
			Workers: cfg.ApplyWorkers,
			Metrics: m,
		}),
	}
}

// Policy maps ROLLOVER_CARRY_OVER to a fallback policy.
func (a *App) Policy() rollover.Policy {
	if a.Cfg.RolloverCarryOver {
		return rollover.FallbackCarryOver
	}
	return rollover.FallbackFresh
}

// Close releases the stores.
func (a *App) Close() error { return a.Stores.Close() }
