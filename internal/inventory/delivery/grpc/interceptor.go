package grpc

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/tair/smart-inventory/pkg/logger"
)

// Interceptors records logs and metrics for unary gRPC calls
type Interceptors struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewInterceptors creates the gRPC metrics and registers them with reg
func NewInterceptors(reg prometheus.Registerer) *Interceptors {
	i := &Interceptors{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_service_grpc_requests_total",
				Help: "Total number of gRPC requests",
			},
			[]string{"method", "status_code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inventory_service_grpc_request_duration_seconds",
				Help:    "Duration of gRPC requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
	reg.MustRegister(i.requestsTotal, i.requestDuration)
	return i
}

// Unary logs each call and observes its status code and duration
func (i *Interceptors) Unary(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	duration := time.Since(start)
	code := status.Code(err)
	i.requestsTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
	i.requestDuration.WithLabelValues(info.FullMethod).Observe(duration.Seconds())

	event := logger.Debug(ctx)
	if err != nil {
		event = logger.Warn(ctx).Err(err)
	}
	event.
		Str("method", info.FullMethod).
		Str("code", code.String()).
		Dur("duration", duration).
		Msg("gRPC request")

	return resp, err
}
