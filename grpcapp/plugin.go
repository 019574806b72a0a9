package grpcapp

import (
	"google.golang.org/grpc"

	"github.com/skekre98/chassis/core"
)

// ServiceRegistration pairs a gRPC service descriptor with the value
// implementing it, exactly as it would be passed to Server.RegisterService.
type ServiceRegistration struct {
	Desc *grpc.ServiceDesc
	Impl any
}

// Plugin is the capability interface for plugins that contribute services or
// interceptors to the application's server. The application discovers these
// among its active plugins; a plugin that implements core.Plugin alone simply
// contributes nothing to the server.
type Plugin interface {
	core.Plugin

	// Services returns the service registrations this plugin contributes.
	Services() []ServiceRegistration

	// UnaryInterceptors returns this plugin's unary interceptors, in the
	// order they should appear in the chain.
	UnaryInterceptors() []grpc.UnaryServerInterceptor

	// StreamInterceptors returns this plugin's stream interceptors, in the
	// order they should appear in the chain.
	StreamInterceptors() []grpc.StreamServerInterceptor
}

// PluginBase is a convenience embed for gRPC plugins: all lifecycle hooks are
// no-ops and no services or interceptors are contributed.
type PluginBase struct {
	core.PluginBase
}

func (PluginBase) Services() []ServiceRegistration                  { return nil }
func (PluginBase) UnaryInterceptors() []grpc.UnaryServerInterceptor { return nil }
func (PluginBase) StreamInterceptors() []grpc.StreamServerInterceptor {
	return nil
}
