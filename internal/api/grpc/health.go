package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"farmshare-backend/internal/logger"
)

// BookingServiceName is the health service name reported for the booking engine.
const BookingServiceName = "farmshare.booking.v1.BookingService"

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter mirrors datastore reachability into the standard gRPC health service.
type HealthReporter struct {
	pinger Pinger
	server *health.Server
}

func NewHealthReporter(pinger Pinger) *HealthReporter {
	return &HealthReporter{pinger: pinger, server: health.NewServer()}
}

// NewServer builds a gRPC server exposing health and reflection. Interceptors
// arrive as server options so unary and streaming chains are set together.
func NewServer(reporter *HealthReporter, opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, reporter.server)
	// Register reflection service for grpcurl
	reflection.Register(s)
	return s
}

// Check pings the datastore once and publishes the result.
func (h *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := h.pinger.Ping(ctx); err != nil {
		logger.Warn("Datastore ping failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", st)
	h.server.SetServingStatus(BookingServiceName, st)
	return st
}

// Run re-checks every interval until ctx is done, then marks everything as not serving.
func (h *HealthReporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

// Server exposes the underlying health server.
func (h *HealthReporter) Server() healthpb.HealthServer {
	return h.server
}
