package config

import "sync"

// Context owns an immutable configuration value. It satisfies the core
// runtime's config handle contract: the value is resolved at most once and
// every call observes the same result.
type Context[C any] interface {
	Config() C
}

type staticContext[C any] struct {
	cfg C
}

func (s staticContext[C]) Config() C { return s.cfg }

// Static wraps an already-materialized configuration value.
func Static[C any](cfg C) Context[C] {
	return staticContext[C]{cfg: cfg}
}

type lazyContext[C any] struct {
	once sync.Once
	load func() C
	cfg  C
}

func (l *lazyContext[C]) Config() C {
	l.once.Do(func() {
		l.cfg = l.load()
		l.load = nil
	})
	return l.cfg
}

// Lazy defers resolution of the configuration value until the first Config
// call. The load function runs exactly once; the result is cached for the
// process lifetime. Fallible loading belongs in Manager, before the value is
// handed to the runtime.
func Lazy[C any](load func() C) Context[C] {
	return &lazyContext[C]{load: load}
}
