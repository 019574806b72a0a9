package config

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Manager materializes configuration from an ordered list of sources,
// validates it, and notifies subscribers of changes.
//
// Sources are merged in order, later sources overriding earlier ones; the
// conventional chain is [file, env, cli] so that flags win over environment
// variables, which win over files. Updates are atomic: a load or validation
// failure leaves the current configuration untouched.
type Manager struct {
	sources   []Source
	config    any
	binder    *Binder
	mu        sync.RWMutex
	subs      []chan Event
	autoWatch bool
}

// Options configures a Manager.
type Options struct {
	// AutoReload starts a watcher per source and reloads the configuration
	// whenever one of them reports a change.
	AutoReload bool
}

// NewManager loads configuration from the given sources into cfg, which must
// be a pointer to a struct using `config` and `validate` tags. The initial
// load happens before NewManager returns; a bind or validation failure is
// returned as an error and no Manager is created.
func NewManager(cfg any, opts Options, sources ...Source) (*Manager, error) {
	m := &Manager{
		sources:   sources,
		config:    cfg,
		binder:    NewBinder(),
		autoWatch: opts.AutoReload,
	}

	if err := m.Reload(context.Background()); err != nil {
		return nil, err
	}

	if m.autoWatch {
		m.startWatchers()
	}

	return m, nil
}

// Reload loads every source, merges the results, binds and validates them
// into a fresh instance, and atomically swaps it into place. Subscribers are
// notified only when a field actually changed. On any failure the current
// configuration remains in effect.
func (m *Manager) Reload(ctx context.Context) error {
	merged := map[string]any{}
	for _, src := range m.sources {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		vals, err := src.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", src.Name(), err)
		}
		mergeMaps(merged, vals)
	}

	newCfg := reflect.New(reflect.TypeOf(m.config).Elem()).Interface()
	if err := m.binder.Bind(merged, newCfg); err != nil {
		return fmt.Errorf("failed to bind config: %w", err)
	}

	m.mu.Lock()
	oldCfg := reflect.New(reflect.TypeOf(m.config).Elem()).Interface()
	reflect.ValueOf(oldCfg).Elem().Set(reflect.ValueOf(m.config).Elem())
	reflect.ValueOf(m.config).Elem().Set(reflect.ValueOf(newCfg).Elem())
	m.mu.Unlock()

	if !reflect.DeepEqual(oldCfg, newCfg) {
		m.notify(diffEvent(oldCfg, newCfg))
	}
	return nil
}

// Subscribe registers a channel to receive change events. Sends are
// non-blocking; use a buffered channel to avoid dropped events. The Manager
// never closes subscribed channels.
func (m *Manager) Subscribe(ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, ch)
}

func (m *Manager) notify(evt Event) {
	m.mu.RLock()
	subs := append([]chan Event(nil), m.subs...)
	m.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (m *Manager) startWatchers() {
	for _, src := range m.sources {
		ch := make(chan Event)
		go func(src Source) {
			ctx := context.Background()
			if err := src.Watch(ctx, ch); err != nil {
				return
			}
			for range ch {
				_ = m.Reload(ctx)
			}
		}(src)
	}
}
