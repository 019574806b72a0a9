// Package rpclog contributes structured access logging for every RPC handled
// by the application's server.
package rpclog

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/skekre98/chassis/grpcapp"
)

const Name = "rpclog"

type Plugin struct {
	grpcapp.PluginBase

	logger *slog.Logger
}

func New(logger *slog.Logger) *Plugin {
	if logger == nil {
		logger = slog.Default()
	}
	return &Plugin{logger: logger}
}

func (p *Plugin) Name() string { return Name }

func (p *Plugin) UnaryInterceptors() []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{p.unary}
}

func (p *Plugin) StreamInterceptors() []grpc.StreamServerInterceptor {
	return []grpc.StreamServerInterceptor{p.stream}
}

func (p *Plugin) unary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	p.log(info.FullMethod, err, time.Since(start))
	return resp, err
}

func (p *Plugin) stream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	err := handler(srv, ss)
	p.log(info.FullMethod, err, time.Since(start))
	return err
}

func (p *Plugin) log(method string, err error, elapsed time.Duration) {
	p.logger.Info("rpc_access",
		"method", method,
		"code", status.Code(err).String(),
		"duration_ms", elapsed.Milliseconds(),
	)
}
