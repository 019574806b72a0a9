package core

import "context"

// Plugin is a unit of capability that participates in the application
// lifecycle. Plugins are identified by a stable name, which is also the key
// used for lookup and for the disabled list.
type Plugin interface {
	Name() string
	// DependsOn declares hard dependencies by plugin name. A dependency is
	// always configured and started before its dependents; names that are not
	// part of the active set are ignored.
	DependsOn() []string
	// Configure prepares the plugin. Called exactly once, before Start.
	Configure(ctx context.Context) error
	// Start begins any long-running work.
	Start(ctx context.Context) error
	// Stop tears the plugin down. Plugins are stopped in reverse start order.
	Stop(ctx context.Context) error
}

// PluginBase is a convenience embed for plugins that only care about a subset
// of the lifecycle. All hooks are no-ops and no dependencies are declared.
type PluginBase struct{}

func (PluginBase) DependsOn() []string               { return nil }
func (PluginBase) Configure(_ context.Context) error { return nil }
func (PluginBase) Start(_ context.Context) error     { return nil }
func (PluginBase) Stop(_ context.Context) error      { return nil }
