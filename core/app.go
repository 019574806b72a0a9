package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ConfigContext supplies the application's immutable configuration value.
// Implementations must return the same value for the process lifetime.
type ConfigContext[C any] interface {
	Config() C
}

// Hook is an application-level lifecycle callback. Hooks registered for the
// same transition run in registration order.
type Hook func(ctx context.Context) error

type options struct {
	plugins     []Plugin
	disabled    []string
	sorter      Sorter
	logger      *slog.Logger
	onConfigure []Hook
	onStart     []Hook
	onStop      []Hook
}

// Option customizes an Application at construction time.
type Option func(*options)

// WithPlugins registers candidate plugins. Call order defines the tie-break
// order used by the default sorter.
func WithPlugins(plugins ...Plugin) Option {
	return func(o *options) { o.plugins = append(o.plugins, plugins...) }
}

// WithDisabled excludes plugins by exact name. Disabling a name that no
// registered plugin carries is not an error.
func WithDisabled(names ...string) Option {
	return func(o *options) { o.disabled = append(o.disabled, names...) }
}

// WithSorter replaces the default dependency sorter.
func WithSorter(s Sorter) Option {
	return func(o *options) { o.sorter = s }
}

// WithLogger sets the logger used for lifecycle logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithOnConfigure registers a hook that runs after all plugins have been
// configured.
func WithOnConfigure(h Hook) Option {
	return func(o *options) { o.onConfigure = append(o.onConfigure, h) }
}

// WithOnStart registers a hook that runs after all plugins have been started.
func WithOnStart(h Hook) Option {
	return func(o *options) { o.onStart = append(o.onStart, h) }
}

// WithOnStop registers a hook that runs before any plugin is stopped.
func WithOnStop(h Hook) Option {
	return func(o *options) { o.onStop = append(o.onStop, h) }
}

// Application drives the configure/start/stop lifecycle across a fixed set of
// plugins. The plugin set, its order, and the configuration handle are all
// resolved at construction; transitions are synchronous and are expected to be
// driven from a single goroutine.
type Application[C any] struct {
	configCtx ConfigContext[C]
	logger    *slog.Logger

	state   State
	plugins []Plugin
	byName  map[string]Plugin

	onConfigure []Hook
	onStart     []Hook
	onStop      []Hook
}

// New builds an Application from the registered plugins. The disabled list is
// applied before sorting, so a dependency on a disabled plugin is simply not
// there to order against. New fails on a nil config context, duplicate plugin
// names, or a dependency cycle.
func New[C any](configCtx ConfigContext[C], opts ...Option) (*Application[C], error) {
	if configCtx == nil {
		return nil, ErrNilConfig
	}

	o := options{
		sorter: DependencySorter{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	disabled := make(map[string]bool, len(o.disabled))
	for _, name := range o.disabled {
		disabled[name] = true
	}

	seen := make(map[string]bool, len(o.plugins))
	active := make([]Plugin, 0, len(o.plugins))
	for _, p := range o.plugins {
		if seen[p.Name()] {
			return nil, fmt.Errorf("plugin %q: %w", p.Name(), ErrDuplicatePlugin)
		}
		seen[p.Name()] = true
		if disabled[p.Name()] {
			continue
		}
		active = append(active, p)
	}

	sorted, err := o.sorter.Sort(active)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Plugin, len(sorted))
	for _, p := range sorted {
		byName[p.Name()] = p
	}

	return &Application[C]{
		configCtx:   configCtx,
		logger:      o.logger,
		plugins:     sorted,
		byName:      byName,
		onConfigure: o.onConfigure,
		onStart:     o.onStart,
		onStop:      o.onStop,
	}, nil
}

// Config returns the application's configuration value.
func (a *Application[C]) Config() C {
	return a.configCtx.Config()
}

// ConfigContext returns the configuration handle the application was built
// with.
func (a *Application[C]) ConfigContext() ConfigContext[C] {
	return a.configCtx
}

// State reports the current lifecycle state.
func (a *Application[C]) State() State {
	return a.state
}

// Logger returns the application's logger.
func (a *Application[C]) Logger() *slog.Logger {
	return a.logger
}

// Configure runs the configure hook on every active plugin in dependency
// order, then the application's own configure hooks. It may only be called in
// the NotConfigured state.
//
// If a plugin fails, earlier plugins stay configured and the error is
// returned; the application does not unwind on the caller's behalf.
func (a *Application[C]) Configure(ctx context.Context) error {
	if a.state != StateNotConfigured {
		return fmt.Errorf("configure: application is %s: %w", a.state, ErrIllegalState)
	}
	a.state = StateConfigured

	for _, p := range a.plugins {
		a.logger.Debug("configuring plugin", "plugin", p.Name())
		if err := p.Configure(ctx); err != nil {
			return fmt.Errorf("configure plugin %s: %w", p.Name(), err)
		}
	}
	for _, h := range a.onConfigure {
		if err := h(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Start configures the application first if that has not happened yet, then
// runs the start hook on every active plugin in dependency order, then the
// application's own start hooks.
func (a *Application[C]) Start(ctx context.Context) error {
	switch a.state {
	case StateNotConfigured:
		if err := a.Configure(ctx); err != nil {
			return err
		}
	case StateConfigured:
	default:
		return fmt.Errorf("start: application is %s: %w", a.state, ErrIllegalState)
	}
	a.state = StateStarted

	for _, p := range a.plugins {
		a.logger.Info("starting plugin", "plugin", p.Name())
		if err := p.Start(ctx); err != nil {
			return fmt.Errorf("start plugin %s: %w", p.Name(), err)
		}
	}
	for _, h := range a.onStart {
		if err := h(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop runs the application's own stop hooks, then stops every plugin in
// reverse start order: a plugin is stopped only after everything that might
// still be using it has stopped. It may only be called in the Started state.
//
// Teardown runs to completion even when individual hooks fail; the first
// error is returned.
func (a *Application[C]) Stop(ctx context.Context) error {
	if a.state != StateStarted {
		return fmt.Errorf("stop: application is %s: %w", a.state, ErrIllegalState)
	}
	a.state = StateStopped

	var firstErr error
	for _, h := range a.onStop {
		if err := h(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for i := len(a.plugins) - 1; i >= 0; i-- {
		p := a.plugins[i]
		a.logger.Info("stopping plugin", "plugin", p.Name())
		if err := p.Stop(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop plugin %s: %w", p.Name(), err)
		}
	}
	return firstErr
}

// Run starts the application, blocks until the context is cancelled or a
// SIGINT/SIGTERM arrives, then stops it with a bounded shutdown context.
func (a *Application[C]) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case <-ctx.Done():
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return a.Stop(shutdownCtx)
}

// Plugin returns the active plugin with the given name. Plugins excluded by
// the disabled list are not found.
func (a *Application[C]) Plugin(name string) (Plugin, error) {
	if p, ok := a.byName[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("plugin %q: %w", name, ErrPluginNotFound)
}

// Plugins returns the active plugins in dependency order. The returned slice
// is the application's own; callers must not modify it.
func (a *Application[C]) Plugins() []Plugin {
	return a.plugins
}

// PluginsAs returns every plugin in the slice that implements the capability
// T, preserving order. It returns an empty slice rather than failing when
// nothing matches.
func PluginsAs[T any](plugins []Plugin) []T {
	matched := make([]T, 0, len(plugins))
	for _, p := range plugins {
		if t, ok := any(p).(T); ok {
			matched = append(matched, t)
		}
	}
	return matched
}
