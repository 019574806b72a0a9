// Package healthcheck contributes the standard gRPC health service
// (grpc.health.v1.Health). The overall status is SERVING while the
// application runs and NOT_SERVING once it begins stopping.
package healthcheck

import (
	"context"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/skekre98/chassis/grpcapp"
)

const Name = "health"

type Plugin struct {
	grpcapp.PluginBase

	server *health.Server
}

func New() *Plugin {
	return &Plugin{server: health.NewServer()}
}

func (p *Plugin) Name() string { return Name }

func (p *Plugin) Services() []grpcapp.ServiceRegistration {
	return []grpcapp.ServiceRegistration{
		{Desc: &healthpb.Health_ServiceDesc, Impl: p.server},
	}
}

func (p *Plugin) Start(_ context.Context) error {
	p.server.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return nil
}

func (p *Plugin) Stop(_ context.Context) error {
	// Marks all services NOT_SERVING and rejects later status changes.
	p.server.Shutdown()
	return nil
}

// SetServingStatus updates the status of a named service, letting other
// plugins report their own health through this one.
func (p *Plugin) SetServingStatus(service string, serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	p.server.SetServingStatus(service, st)
}
