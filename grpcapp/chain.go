package grpcapp

import (
	"context"

	"google.golang.org/grpc"
)

// chainUnary composes interceptors into a single interceptor. The first
// interceptor is outermost: it sees an incoming call first and the outgoing
// response last. Returns nil for an empty chain.
func chainUnary(interceptors []grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	switch len(interceptors) {
	case 0:
		return nil
	case 1:
		return interceptors[0]
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		chained := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			ic := interceptors[i]
			next := chained
			chained = func(ctx context.Context, req any) (any, error) {
				return ic(ctx, req, info, next)
			}
		}
		return chained(ctx, req)
	}
}

// chainStream is the stream counterpart of chainUnary.
func chainStream(interceptors []grpc.StreamServerInterceptor) grpc.StreamServerInterceptor {
	switch len(interceptors) {
	case 0:
		return nil
	case 1:
		return interceptors[0]
	}
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		chained := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			ic := interceptors[i]
			next := chained
			chained = func(srv any, ss grpc.ServerStream) error {
				return ic(srv, ss, info, next)
			}
		}
		return chained(srv, ss)
	}
}

// wrapService rebuilds a service registration so that every method and stream
// handler runs under the given interceptor chains. Wrapping happens once per
// service; the server itself is constructed without server-level
// interceptors.
func wrapService(reg ServiceRegistration, unary grpc.UnaryServerInterceptor, stream grpc.StreamServerInterceptor) ServiceRegistration {
	if unary == nil && stream == nil {
		return reg
	}

	desc := *reg.Desc

	if unary != nil {
		methods := make([]grpc.MethodDesc, len(desc.Methods))
		for i, m := range desc.Methods {
			handler := m.Handler
			methods[i] = grpc.MethodDesc{
				MethodName: m.MethodName,
				Handler: func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
					return handler(srv, ctx, dec, unary)
				},
			}
		}
		desc.Methods = methods
	}

	if stream != nil {
		streams := make([]grpc.StreamDesc, len(desc.Streams))
		for i, s := range desc.Streams {
			handler := s.Handler
			info := &grpc.StreamServerInfo{
				FullMethod:     "/" + desc.ServiceName + "/" + s.StreamName,
				IsClientStream: s.ClientStreams,
				IsServerStream: s.ServerStreams,
			}
			streams[i] = grpc.StreamDesc{
				StreamName:    s.StreamName,
				ServerStreams: s.ServerStreams,
				ClientStreams: s.ClientStreams,
				Handler: func(srv any, ss grpc.ServerStream) error {
					return stream(srv, ss, info, handler)
				},
			}
		}
		desc.Streams = streams
	}

	return ServiceRegistration{Desc: &desc, Impl: reg.Impl}
}
