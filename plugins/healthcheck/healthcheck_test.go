package healthcheck_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/skekre98/chassis/plugins/healthcheck"
)

func check(t *testing.T, p *healthcheck.Plugin, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	impl := p.Services()[0].Impl.(healthpb.HealthServer)
	resp, err := impl.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestContributesTheStandardHealthService(t *testing.T) {
	p := healthcheck.New()

	regs := p.Services()
	require.Len(t, regs, 1)
	assert.Equal(t, "grpc.health.v1.Health", regs[0].Desc.ServiceName)
}

func TestServingStatusFollowsLifecycle(t *testing.T) {
	p := healthcheck.New()

	require.NoError(t, p.Start(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, p, ""))

	require.NoError(t, p.Stop(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, p, ""))
}

func TestSetServingStatusForNamedService(t *testing.T) {
	p := healthcheck.New()
	require.NoError(t, p.Start(context.Background()))

	p.SetServingStatus("svc.P1", true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, p, "svc.P1"))

	p.SetServingStatus("svc.P1", false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, p, "svc.P1"))
}
