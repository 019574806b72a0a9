package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/skekre98/chassis/core"
)

type testConfig struct {
	Name string
}

type staticCtx struct {
	cfg testConfig
}

func (s staticCtx) Config() testConfig { return s.cfg }

// recordPlugin appends "<name>.<hook>" to a shared log on every call.
type recordPlugin struct {
	name  string
	deps  []string
	calls *[]string

	configureErr error
	startErr     error
}

func (p *recordPlugin) Name() string        { return p.name }
func (p *recordPlugin) DependsOn() []string { return p.deps }

func (p *recordPlugin) Configure(_ context.Context) error {
	*p.calls = append(*p.calls, p.name+".configure")
	return p.configureErr
}

func (p *recordPlugin) Start(_ context.Context) error {
	*p.calls = append(*p.calls, p.name+".start")
	return p.startErr
}

func (p *recordPlugin) Stop(_ context.Context) error {
	*p.calls = append(*p.calls, p.name+".stop")
	return nil
}

func newApp(t *testing.T, opts ...core.Option) *core.Application[testConfig] {
	t.Helper()
	app, err := core.New[testConfig](staticCtx{cfg: testConfig{Name: "test"}}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return app
}

func TestNewRejectsNilConfigContext(t *testing.T) {
	_, err := core.New[testConfig](nil)
	if !errors.Is(err, core.ErrNilConfig) {
		t.Fatalf("New(nil) error = %v, want ErrNilConfig", err)
	}
}

func TestNewRejectsDuplicatePluginNames(t *testing.T) {
	var calls []string
	_, err := core.New[testConfig](staticCtx{},
		core.WithPlugins(
			&recordPlugin{name: "dup", calls: &calls},
			&recordPlugin{name: "dup", calls: &calls},
		),
	)
	if !errors.Is(err, core.ErrDuplicatePlugin) {
		t.Fatalf("New() error = %v, want ErrDuplicatePlugin", err)
	}
}

func TestNewSurfacesCyclesBeforeAnyHookRuns(t *testing.T) {
	var calls []string
	_, err := core.New[testConfig](staticCtx{},
		core.WithPlugins(
			&recordPlugin{name: "a", deps: []string{"b"}, calls: &calls},
			&recordPlugin{name: "b", deps: []string{"a"}, calls: &calls},
		),
	)

	var cycleErr *core.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("New() error = %v, want CycleError", err)
	}
	if len(calls) != 0 {
		t.Fatalf("plugin hooks ran during construction: %v", calls)
	}
}

func TestConfigReturnsTheConfiguredValue(t *testing.T) {
	app := newApp(t)
	if got := app.Config().Name; got != "test" {
		t.Fatalf("Config().Name = %q, want %q", got, "test")
	}
}

func TestConfigureTwiceFails(t *testing.T) {
	app := newApp(t)

	if err := app.Configure(context.Background()); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	err := app.Configure(context.Background())
	if !errors.Is(err, core.ErrIllegalState) {
		t.Fatalf("second Configure() error = %v, want ErrIllegalState", err)
	}
	if app.State() != core.StateConfigured {
		t.Fatalf("State() = %v, want Configured", app.State())
	}
}

func TestStartConfiguresFirstIfNeeded(t *testing.T) {
	var calls []string
	app := newApp(t, core.WithPlugins(&recordPlugin{name: "a", calls: &calls}))

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	want := []string{"a.configure", "a.start"}
	assertCalls(t, calls, want)
	if app.State() != core.StateStarted {
		t.Fatalf("State() = %v, want Started", app.State())
	}
}

func TestStartDoesNotReconfigure(t *testing.T) {
	var calls []string
	app := newApp(t, core.WithPlugins(&recordPlugin{name: "a", calls: &calls}))

	if err := app.Configure(context.Background()); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	assertCalls(t, calls, []string{"a.configure", "a.start"})
}

func TestStartTwiceFails(t *testing.T) {
	app := newApp(t)

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := app.Start(context.Background()); !errors.Is(err, core.ErrIllegalState) {
		t.Fatalf("second Start() error = %v, want ErrIllegalState", err)
	}
}

func TestLifecycleVisitsPluginsInSortedOrderAndReverse(t *testing.T) {
	var calls []string
	// b depends on a; registration order is b first, so sorting is doing the
	// work here.
	app := newApp(t, core.WithPlugins(
		&recordPlugin{name: "b", deps: []string{"a"}, calls: &calls},
		&recordPlugin{name: "a", calls: &calls},
	))

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := app.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	want := []string{
		"a.configure", "b.configure",
		"a.start", "b.start",
		"b.stop", "a.stop",
	}
	assertCalls(t, calls, want)
}

func TestStopBeforeStartFails(t *testing.T) {
	app := newApp(t)
	if err := app.Stop(context.Background()); !errors.Is(err, core.ErrIllegalState) {
		t.Fatalf("Stop() error = %v, want ErrIllegalState", err)
	}
}

func TestStopTwiceFails(t *testing.T) {
	app := newApp(t)

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := app.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := app.Stop(context.Background()); !errors.Is(err, core.ErrIllegalState) {
		t.Fatalf("second Stop() error = %v, want ErrIllegalState", err)
	}
	if app.State() != core.StateStopped {
		t.Fatalf("State() = %v, want Stopped", app.State())
	}
}

func TestStartLeavesEarlierPluginsStartedWhenOneFails(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	app := newApp(t, core.WithPlugins(
		&recordPlugin{name: "a", calls: &calls},
		&recordPlugin{name: "b", calls: &calls, startErr: boom},
		&recordPlugin{name: "c", calls: &calls},
	))

	if err := app.Start(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Start() error = %v, want %v", err, boom)
	}

	// a started, b failed, c never started. The caller may still Stop to
	// unwind.
	assertCalls(t, calls, []string{
		"a.configure", "b.configure", "c.configure",
		"a.start", "b.start",
	})
	if err := app.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() after failed Start error = %v", err)
	}
}

func TestHooksRunInOrder(t *testing.T) {
	var calls []string
	hook := func(tag string) core.Hook {
		return func(context.Context) error {
			calls = append(calls, tag)
			return nil
		}
	}
	app := newApp(t,
		core.WithPlugins(&recordPlugin{name: "a", calls: &calls}),
		core.WithOnConfigure(hook("onConfigure")),
		core.WithOnStart(hook("onStart.1")),
		core.WithOnStart(hook("onStart.2")),
		core.WithOnStop(hook("onStop")),
	)

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := app.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// App hooks run after the plugin loop on configure/start, and before the
	// plugin loop on stop.
	want := []string{
		"a.configure", "onConfigure",
		"a.start", "onStart.1", "onStart.2",
		"onStop", "a.stop",
	}
	assertCalls(t, calls, want)
}

func TestPluginLookupByName(t *testing.T) {
	var calls []string
	a := &recordPlugin{name: "a", calls: &calls}
	app := newApp(t, core.WithPlugins(a))

	found, err := app.Plugin("a")
	if err != nil {
		t.Fatalf("Plugin(a) error = %v", err)
	}
	if found != core.Plugin(a) {
		t.Fatalf("Plugin(a) = %v, want the registered instance", found)
	}

	if _, err := app.Plugin("missing"); !errors.Is(err, core.ErrPluginNotFound) {
		t.Fatalf("Plugin(missing) error = %v, want ErrPluginNotFound", err)
	}
}

func TestPluginLookupExcludesDisabled(t *testing.T) {
	var calls []string
	app := newApp(t,
		core.WithPlugins(&recordPlugin{name: "a", calls: &calls}),
		core.WithDisabled("a"),
	)

	if _, err := app.Plugin("a"); !errors.Is(err, core.ErrPluginNotFound) {
		t.Fatalf("Plugin(a) error = %v, want ErrPluginNotFound", err)
	}
	if len(app.Plugins()) != 0 {
		t.Fatalf("Plugins() = %v, want empty", app.Plugins())
	}
}

func TestDisabledPluginsAreNeverDriven(t *testing.T) {
	var calls []string
	app := newApp(t,
		core.WithPlugins(
			&recordPlugin{name: "a", calls: &calls},
			&recordPlugin{name: "off", calls: &calls},
		),
		core.WithDisabled("off"),
	)

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := app.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	assertCalls(t, calls, []string{"a.configure", "a.start", "a.stop"})
}

func TestDependencyOnDisabledPluginIsIgnored(t *testing.T) {
	var calls []string
	app := newApp(t,
		core.WithPlugins(
			&recordPlugin{name: "b", deps: []string{"off"}, calls: &calls},
			&recordPlugin{name: "off", calls: &calls},
		),
		core.WithDisabled("off"),
	)

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	assertCalls(t, calls, []string{"b.configure", "b.start"})
}

func TestPluginsReturnsTheSameMemoizedSlice(t *testing.T) {
	var calls []string
	app := newApp(t, core.WithPlugins(&recordPlugin{name: "a", calls: &calls}))

	first := app.Plugins()
	second := app.Plugins()
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatalf("Plugins() returned different contents across calls")
	}
}

type greeter interface {
	Greet() string
}

type greeterPlugin struct {
	recordPlugin
	greeting string
}

func (p *greeterPlugin) Greet() string { return p.greeting }

func TestPluginsAsSelectsByCapability(t *testing.T) {
	var calls []string
	g1 := &greeterPlugin{recordPlugin: recordPlugin{name: "g1", calls: &calls}, greeting: "hi"}
	g2 := &greeterPlugin{recordPlugin: recordPlugin{name: "g2", calls: &calls}, greeting: "yo"}
	plain := &recordPlugin{name: "plain", calls: &calls}

	app := newApp(t, core.WithPlugins(g1, plain, g2))

	greeters := core.PluginsAs[greeter](app.Plugins())
	if len(greeters) != 2 {
		t.Fatalf("PluginsAs[greeter] returned %d plugins, want 2", len(greeters))
	}
	if greeters[0].Greet() != "hi" || greeters[1].Greet() != "yo" {
		t.Fatalf("PluginsAs[greeter] lost order: %v", greeters)
	}
}

func TestPluginsAsExcludesDisabledSiblingUnderSameCapability(t *testing.T) {
	var calls []string
	g1 := &greeterPlugin{recordPlugin: recordPlugin{name: "g1", calls: &calls}, greeting: "hi"}
	g2 := &greeterPlugin{recordPlugin: recordPlugin{name: "g2", calls: &calls}, greeting: "yo"}

	app := newApp(t, core.WithPlugins(g1, g2), core.WithDisabled("g1"))

	greeters := core.PluginsAs[greeter](app.Plugins())
	if len(greeters) != 1 || greeters[0].Greet() != "yo" {
		t.Fatalf("PluginsAs[greeter] = %v, want just g2", greeters)
	}
}

func TestPluginsAsReturnsEmptyNotNilWhenNothingMatches(t *testing.T) {
	var calls []string
	app := newApp(t, core.WithPlugins(&recordPlugin{name: "a", calls: &calls}))

	greeters := core.PluginsAs[greeter](app.Plugins())
	if greeters == nil || len(greeters) != 0 {
		t.Fatalf("PluginsAs[greeter] = %#v, want empty non-nil slice", greeters)
	}
}

func assertCalls(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
}
