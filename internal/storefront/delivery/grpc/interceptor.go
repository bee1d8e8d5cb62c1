package grpc

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/feirinha-uesb/storefront/pkg/logger"
)

var (
	grpcRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_grpc_requests_total",
			Help: "Total number of gRPC calls by method, kind and status code",
		},
		[]string{"method", "kind", "status_code"},
	)

	grpcRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_grpc_request_duration_seconds",
			Help:    "Duration of gRPC calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "kind"},
	)
)

func init() {
	prometheus.MustRegister(grpcRequestsTotal, grpcRequestDuration)
}

// Call kinds used as metric labels
const (
	kindUnary  = "unary"
	kindStream = "stream"
)

// MetricsInterceptor counts and times unary calls
func MetricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	observe(info.FullMethod, kindUnary, start, err)
	return resp, err
}

// StreamMetricsInterceptor counts and times streams such as Health/Watch
func StreamMetricsInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	err := handler(srv, ss)
	observe(info.FullMethod, kindStream, start, err)
	return err
}

// LoggingInterceptor logs unary calls. Health probes log at debug level.
func LoggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	logCall(ctx, info.FullMethod, kindUnary, start, err)
	return resp, err
}

// StreamLoggingInterceptor logs the end of each stream
func StreamLoggingInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	err := handler(srv, ss)
	logCall(ss.Context(), info.FullMethod, kindStream, start, err)
	return err
}

func observe(method, kind string, start time.Time, err error) {
	grpcRequestsTotal.WithLabelValues(method, kind, status.Code(err).String()).Inc()
	grpcRequestDuration.WithLabelValues(method, kind).Observe(time.Since(start).Seconds())
}

func logCall(ctx context.Context, method, kind string, start time.Time, err error) {
	duration := time.Since(start)
	code := status.Code(err)

	var event *zerolog.Event
	switch {
	case code == codes.OK || code == codes.Canceled:
		event = logger.Debug(ctx)
	case code == codes.NotFound:
		// unknown health service names are a client mistake
		event = logger.Warn(ctx)
	default:
		event = logger.Error(ctx).Err(err)
	}

	event.
		Str("method", method).
		Str("kind", kind).
		Str("grpc_status", code.String()).
		Dur("duration", duration).
		Msg("gRPC call finished")
}
