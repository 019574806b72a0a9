package config

import "context"

// Source is a provider of configuration data that can be loaded and
// optionally watched for changes. Implementations include YAML files,
// environment variables, and command-line flags.
type Source interface {
	// Load retrieves the source's data as a string-keyed map, possibly
	// nested. Implementations must return a copy the caller may own.
	Load(ctx context.Context) (map[string]any, error)

	// Watch monitors the source and sends an event on ch whenever its data
	// changes. Sources that cannot detect changes return nil immediately.
	// The implementation must not close ch.
	Watch(ctx context.Context, ch chan<- Event) error

	// Name is a short identifier used in errors and logs, such as "file"
	// or "env".
	Name() string
}

// Event is a configuration change notification carrying the old and new
// values and the top-level field names that differ between them.
type Event struct {
	ChangedKeys []string
	OldConfig   any
	NewConfig   any
}
