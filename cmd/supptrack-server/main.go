// Command supptrack-server starts the supp-tracker HTTP API and gRPC health service.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/and161185/supp-tracker/internal/app"
	"github.com/and161185/supp-tracker/internal/config"
	grpcserver "github.com/and161185/supp-tracker/internal/server/grpc"
	httpserver "github.com/and161185/supp-tracker/internal/server/http"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, opens the store, and serves until SIGINT/SIGTERM.
func main() {
	boot, _ := zap.NewProduction()
	cfg, err := config.Load(boot)
	if err != nil {
		boot.Fatal("config", zap.Error(err))
	}

	// Flags override the environment
	flag.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	flag.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC health listen address")
	flag.StringVar(&cfg.PostgresDSN, "dsn", cfg.PostgresDSN, "PostgreSQL DSN")
	flag.StringVar(&cfg.JWTKey, "jwt-key", cfg.JWTKey, "HS256 signing key (required)")
	certFile := flag.String("tls-cert", "", "TLS certificate (PEM); plaintext when empty")
	keyFile := flag.String("tls-key", "", "TLS private key (PEM)")
	dev := flag.Bool("dev", cfg.IsDevelopment(), "enable gRPC reflection (dev only)")
	flag.Parse()

	logger, err := cfg.NewLogger()
	if err != nil {
		boot.Fatal("logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("http", cfg.HTTPAddr),
		zap.String("grpc", cfg.GRPCAddr),
	)

	if cfg.JWTKey == "" {
		logger.Fatal("missing jwt signing key (--jwt-key or SUPPTRACK_JWT_KEY)")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	// HTTP API
	api := httpserver.New(httpserver.Services{
		Auth:      a.Auth,
		Days:      a.Days,
		Templates: a.Templates,
		Library:   a.Library,
		Stats:     a.Stats,
	}, []byte(cfg.JWTKey), logger,
		httpserver.WithClock(a.Clock),
		httpserver.WithRegistry(a.Metrics.Registry),
		httpserver.WithPing(a.Stores.Ping),
	)
	hs := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC health
	var opts []grpc.ServerOption
	if *certFile != "" {
		creds, err := credentials.NewServerTLSFromFile(*certFile, *keyFile)
		if err != nil {
			logger.Fatal("failed to load TLS cert/key", zap.Error(err))
		}
		opts = append(opts, grpc.Creds(creds))
	}
	health := grpcserver.NewHealth(a.Stores, 10*time.Second, logger)
	gs := grpcserver.New(health, logger, *dev, opts...)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go health.Run(ctx)
	go func() {
		logger.Info("grpc listening", zap.String("addr", cfg.GRPCAddr))
		errCh <- gs.Serve(lis)
	}()
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.Bool("tls", *certFile != ""))
		var err error
		if *certFile != "" {
			err = hs.ListenAndServeTLS(*certFile, *keyFile)
		} else {
			err = hs.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		health.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
		done := make(chan struct{})
		go func() {
			gs.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			gs.Stop()
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		_ = a.Close()
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
