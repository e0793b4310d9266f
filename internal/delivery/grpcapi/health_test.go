package grpcapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type togglePinger struct{ err error }

func (p *togglePinger) PingContext(context.Context) error { return p.err }

func TestHealthReporter_FollowsDatabase(t *testing.T) {
	db := &togglePinger{}
	h := NewHealthReporter(db, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, h.check(ctx))
	resp, err := h.server.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	db.err = errors.New("connection refused")
	h.check(ctx)
	resp, err = h.server.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}
