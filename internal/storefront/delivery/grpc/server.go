// Package grpc exposes the standard gRPC health service of the storefront,
// driven by the reachability of the marketplace backend.
package grpc

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/feirinha-uesb/storefront/internal/backend"
	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// ServiceName is the health service name of the storefront
const ServiceName = "feirinha.storefront.Storefront"

// DefaultCheckInterval is how often HealthReporter probes the backend
const DefaultCheckInterval = 15 * time.Second

// Checker reports the state of the backend
type Checker interface {
	CheckHealth(ctx context.Context) backend.Health
}

// HealthReporter keeps the gRPC health status in line with the backend
type HealthReporter struct {
	server   *health.Server
	checker  Checker
	interval time.Duration
}

// NewHealthReporter creates a reporter. The status is NOT_SERVING until
// the first check.
func NewHealthReporter(checker Checker, interval time.Duration) *HealthReporter {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	server := health.NewServer()
	server.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{server: server, checker: checker, interval: interval}
}

// Check probes the backend once and updates the serving status. A degraded
// backend still serves.
func (r *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	result := r.checker.CheckHealth(ctx)
	status := healthpb.HealthCheckResponse_SERVING
	if result.Status == "unhealthy" {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		logger.Warn(ctx).
			Str("backend_url", result.URL).
			Str("error", result.Error).
			Msg("Backend unhealthy")
	}
	r.server.SetServingStatus("", status)
	r.server.SetServingStatus(ServiceName, status)
	return status
}

// Run checks on every interval until ctx is done
func (r *HealthReporter) Run(ctx context.Context) {
	r.Check(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Check(ctx)
		}
	}
}

// Shutdown reports NOT_SERVING for every service
func (r *HealthReporter) Shutdown() {
	r.server.Shutdown()
}

// NewServer creates the gRPC server with the health and reflection services
func NewServer(reporter *HealthReporter) *grpc.Server {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor,
			MetricsInterceptor,
		),
		grpc.ChainStreamInterceptor(
			StreamLoggingInterceptor,
			StreamMetricsInterceptor,
		),
	)
	healthpb.RegisterHealthServer(server, reporter.server)
	reflection.Register(server)
	return server
}
