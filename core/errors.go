package core

import (
	"errors"
	"strings"
)

var (
	// ErrIllegalState is returned when a lifecycle transition is attempted
	// from a state that does not permit it.
	ErrIllegalState = errors.New("illegal application state")

	// ErrPluginNotFound is returned by Plugin lookups when no active plugin
	// has the requested name.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrNilConfig is returned by New when the config context is nil.
	ErrNilConfig = errors.New("config context must not be nil")

	// ErrDuplicatePlugin is returned by New when two plugins share a name.
	ErrDuplicatePlugin = errors.New("duplicate plugin name")
)

// CycleError reports a dependency cycle among the active plugins. Plugins
// lists the names that could not be ordered, in registration order.
type CycleError struct {
	Plugins []string
}

func (e *CycleError) Error() string {
	return "dependency cycle among plugins: " + strings.Join(e.Plugins, ", ")
}
