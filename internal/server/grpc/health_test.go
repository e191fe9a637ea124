package grpcserver

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type flakyStore struct{ down atomic.Bool }

func (f *flakyStore) Ping(context.Context) error {
	if f.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func statusOf(t *testing.T, h *Health, svc string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: svc})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_FollowsStorePing(t *testing.T) {
	store := &flakyStore{}
	h := NewHealth(store, time.Second, zaptest.NewLogger(t))
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, statusOf(t, h, Service))

	h.CheckOnce(context.Background())
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, statusOf(t, h, Service))
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, statusOf(t, h, ""))

	store.down.Store(true)
	h.CheckOnce(context.Background())
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, statusOf(t, h, Service))

	store.down.Store(false)
	h.CheckOnce(context.Background())
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, statusOf(t, h, Service))

	h.Shutdown()
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, statusOf(t, h, Service))
}

func TestHealth_RunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := NewHealth(&flakyStore{}, 5*time.Millisecond, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return statusOf(t, h, Service) == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestNew_ServesHealthOverGRPC(t *testing.T) {
	log := zaptest.NewLogger(t)
	h := NewHealth(&flakyStore{}, time.Second, log)
	h.CheckOnce(context.Background())

	lis := bufconn.Listen(1 << 20)
	srv := New(h, log, false)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: Service})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
