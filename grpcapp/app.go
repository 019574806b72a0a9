package grpcapp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"google.golang.org/grpc"

	"github.com/skekre98/chassis/core"
)

type options struct {
	core     []core.Option
	services []ServiceRegistration
	unary    []grpc.UnaryServerInterceptor
	stream   []grpc.StreamServerInterceptor
}

// Option customizes a gRPC Application at construction time.
type Option func(*options)

// WithPlugins registers candidate plugins with the underlying runtime.
func WithPlugins(plugins ...core.Plugin) Option {
	return func(o *options) { o.core = append(o.core, core.WithPlugins(plugins...)) }
}

// WithDisabled excludes plugins by exact name.
func WithDisabled(names ...string) Option {
	return func(o *options) { o.core = append(o.core, core.WithDisabled(names...)) }
}

// WithSorter replaces the default dependency sorter.
func WithSorter(s core.Sorter) Option {
	return func(o *options) { o.core = append(o.core, core.WithSorter(s)) }
}

// WithLogger sets the logger used for lifecycle logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.core = append(o.core, core.WithLogger(l)) }
}

// WithServices registers application-level service contributions. They
// precede every plugin contribution in the merged service list.
func WithServices(regs ...ServiceRegistration) Option {
	return func(o *options) { o.services = append(o.services, regs...) }
}

// WithUnaryInterceptors registers application-level unary interceptors. They
// precede every plugin interceptor in the chain and are therefore outermost.
func WithUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) Option {
	return func(o *options) { o.unary = append(o.unary, interceptors...) }
}

// WithStreamInterceptors registers application-level stream interceptors.
func WithStreamInterceptors(interceptors ...grpc.StreamServerInterceptor) Option {
	return func(o *options) { o.stream = append(o.stream, interceptors...) }
}

// Application is the networked specialization of the core runtime: on start
// it assembles every active plugin's service and interceptor contributions
// into a single gRPC server bound to the configured port, and on stop it
// force-terminates that server before the plugins shut down.
type Application[C ConfigProvider] struct {
	*core.Application[C]

	appServices []ServiceRegistration
	appUnary    []grpc.UnaryServerInterceptor
	appStream   []grpc.StreamServerInterceptor

	servicesOnce sync.Once
	services     []ServiceRegistration

	interceptorsOnce sync.Once
	unary            []grpc.UnaryServerInterceptor
	stream           []grpc.StreamServerInterceptor

	wrappedOnce sync.Once
	wrapped     []ServiceRegistration

	server   *grpc.Server
	listener net.Listener
}

// New builds a gRPC application. The server lifecycle is attached to the
// runtime's start and stop hooks: the server comes up after every plugin has
// started and goes down before any plugin stops.
func New[C ConfigProvider](configCtx core.ConfigContext[C], opts ...Option) (*Application[C], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &Application[C]{
		appServices: o.services,
		appUnary:    o.unary,
		appStream:   o.stream,
	}

	coreOpts := append(o.core, core.WithOnStart(a.startServer), core.WithOnStop(a.stopServer))
	base, err := core.New(configCtx, coreOpts...)
	if err != nil {
		return nil, err
	}
	a.Application = base

	return a, nil
}

// Services returns the merged service registrations: the application's own
// contributions first, then each gRPC-capable plugin's, plugins visited in
// dependency order. Computed once and memoized.
func (a *Application[C]) Services() []ServiceRegistration {
	a.servicesOnce.Do(func() {
		regs := append([]ServiceRegistration(nil), a.appServices...)
		for _, p := range a.grpcPlugins() {
			regs = append(regs, p.Services()...)
		}
		a.services = regs
	})
	return a.services
}

// UnaryInterceptors returns the merged unary interceptor list, application
// contributions first. Computed once and memoized.
func (a *Application[C]) UnaryInterceptors() []grpc.UnaryServerInterceptor {
	a.buildInterceptors()
	return a.unary
}

// StreamInterceptors returns the merged stream interceptor list, application
// contributions first. Computed once and memoized.
func (a *Application[C]) StreamInterceptors() []grpc.StreamServerInterceptor {
	a.buildInterceptors()
	return a.stream
}

func (a *Application[C]) buildInterceptors() {
	a.interceptorsOnce.Do(func() {
		unary := append([]grpc.UnaryServerInterceptor(nil), a.appUnary...)
		stream := append([]grpc.StreamServerInterceptor(nil), a.appStream...)
		for _, p := range a.grpcPlugins() {
			unary = append(unary, p.UnaryInterceptors()...)
			stream = append(stream, p.StreamInterceptors()...)
		}
		a.unary = unary
		a.stream = stream
	})
}

// WrappedServices returns the service registrations with the full interceptor
// chain applied to every handler, head of the chain outermost. This is what
// gets installed into the server.
func (a *Application[C]) WrappedServices() []ServiceRegistration {
	a.wrappedOnce.Do(func() {
		unary := chainUnary(a.UnaryInterceptors())
		stream := chainStream(a.StreamInterceptors())

		wrapped := make([]ServiceRegistration, 0, len(a.Services()))
		for _, reg := range a.Services() {
			wrapped = append(wrapped, wrapService(reg, unary, stream))
		}
		a.wrapped = wrapped
	})
	return a.wrapped
}

// Port returns the port the server is bound to. It differs from the
// configured port when that was 0. Fails until the application is started.
func (a *Application[C]) Port() (int, error) {
	if a.State() != core.StateStarted || a.listener == nil {
		return 0, fmt.Errorf("port: application is %s: %w", a.State(), core.ErrIllegalState)
	}
	return a.listener.Addr().(*net.TCPAddr).Port, nil
}

// Server returns the running gRPC server. Fails until the application is
// started.
func (a *Application[C]) Server() (*grpc.Server, error) {
	if a.State() != core.StateStarted || a.server == nil {
		return nil, fmt.Errorf("server: application is %s: %w", a.State(), core.ErrIllegalState)
	}
	return a.server, nil
}

func (a *Application[C]) grpcPlugins() []Plugin {
	return core.PluginsAs[Plugin](a.Plugins())
}

func (a *Application[C]) startServer(ctx context.Context) error {
	port := a.Config().GrpcConfig().Port

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("grpc listen on port %d: %w", port, err)
	}

	srv := grpc.NewServer()
	for _, reg := range a.WrappedServices() {
		srv.RegisterService(reg.Desc, reg.Impl)
	}

	a.listener = lis
	a.server = srv

	go func() {
		if err := srv.Serve(lis); err != nil {
			a.Logger().Error("grpc server error", "error", err)
		}
	}()

	a.Logger().Info("grpc server started", "port", lis.Addr().(*net.TCPAddr).Port)
	return nil
}

func (a *Application[C]) stopServer(ctx context.Context) error {
	if a.server == nil {
		// Start never got as far as binding.
		return nil
	}
	// Forced shutdown: in-flight calls are cut off, no drain.
	a.server.Stop()
	a.Logger().Info("grpc server stopped")
	return nil
}
