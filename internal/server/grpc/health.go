// Package grpcserver serves the gRPC health protocol for supp-tracker.
package grpcserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Service is the name reported for the application as a whole.
const Service = "supptrack"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health drives grpc.health.v1 statuses from periodic store pings.
type Health struct {
	srv      *health.Server
	store    Pinger
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger

	serving bool
}

// NewHealth constructs a checker; statuses start NOT_SERVING until the first ping.
func NewHealth(store Pinger, interval time.Duration, log *zap.Logger) *Health {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	h := &Health{
		srv:      health.NewServer(),
		store:    store,
		interval: interval,
		timeout:  interval / 2,
		log:      log,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Server exposes the underlying health server.
func (h *Health) Server() *health.Server { return h.srv }

// CheckOnce pings the store and updates the statuses.
func (h *Health) CheckOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	err := h.store.Ping(ctx)
	switch {
	case err == nil && !h.serving:
		h.log.Info("store reachable, serving")
		h.serving = true
		h.set(healthpb.HealthCheckResponse_SERVING)
	case err != nil && h.serving:
		h.log.Warn("store unreachable, not serving", zap.Error(err))
		h.serving = false
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	case err != nil:
		h.log.Debug("store still unreachable", zap.Error(err))
	}
}

// Run checks immediately and then every interval until ctx is done.
func (h *Health) Run(ctx context.Context) {
	h.CheckOnce(ctx)
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.CheckOnce(ctx)
		}
	}
}

// Shutdown marks everything NOT_SERVING for the remaining drain period.
func (h *Health) Shutdown() { h.srv.Shutdown() }

func (h *Health) set(st healthpb.HealthCheckResponse_ServingStatus) {
	h.srv.SetServingStatus("", st)
	h.srv.SetServingStatus(Service, st)
}

// New builds a gRPC server carrying the health service and interceptors.
func New(h *Health, log *zap.Logger, dev bool, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		RecoverUnary(log),
		LoggingUnary(log),
	))
	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, h.Server())
	if dev {
		reflection.Register(s)
	}
	return s
}
