// Package rpcmetrics contributes prometheus instrumentation for every RPC
// handled by the application's server: a call counter partitioned by method
// and status code, and a latency histogram partitioned by method.
package rpcmetrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/skekre98/chassis/grpcapp"
)

const Name = "rpcmetrics"

type Plugin struct {
	grpcapp.PluginBase

	registerer prometheus.Registerer
	calls      *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New creates the metrics plugin. A nil registerer falls back to the
// prometheus default registry, which is what the actuator's /metrics endpoint
// serves.
func New(registerer prometheus.Registerer) *Plugin {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Plugin{
		registerer: registerer,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chassis_rpc_calls_total",
			Help: "Total RPCs handled, by full method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chassis_rpc_duration_seconds",
			Help:    "RPC handling latency, by full method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

func (p *Plugin) Name() string { return Name }

// Configure registers the collectors. Re-registration (for example across two
// applications sharing the default registry) reuses the existing collectors.
func (p *Plugin) Configure(_ context.Context) error {
	if err := p.registerer.Register(p.calls); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return err
		}
		p.calls = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := p.registerer.Register(p.duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return err
		}
		p.duration = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	return nil
}

func (p *Plugin) UnaryInterceptors() []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{p.unary}
}

func (p *Plugin) StreamInterceptors() []grpc.StreamServerInterceptor {
	return []grpc.StreamServerInterceptor{p.stream}
}

func (p *Plugin) unary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	p.observe(info.FullMethod, err, time.Since(start))
	return resp, err
}

func (p *Plugin) stream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	err := handler(srv, ss)
	p.observe(info.FullMethod, err, time.Since(start))
	return err
}

func (p *Plugin) observe(method string, err error, elapsed time.Duration) {
	p.calls.WithLabelValues(method, status.Code(err).String()).Inc()
	p.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}
