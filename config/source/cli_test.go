package source

import (
	"context"
	"os"
	"testing"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"pingd"}, args...)
}

func TestCLISourceParsesDotNotation(t *testing.T) {
	withArgs(t, "--grpc.port=9090", "--app.name=pingd")

	data, err := (&CLISource{}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	grpc, ok := data["grpc"].(map[string]any)
	if !ok || grpc["port"] != "9090" {
		t.Fatalf("grpc section = %v", data["grpc"])
	}
	app, ok := data["app"].(map[string]any)
	if !ok || app["name"] != "pingd" {
		t.Fatalf("app section = %v", data["app"])
	}
}

func TestCLISourceSupportsDetachedValues(t *testing.T) {
	withArgs(t, "--grpc.port", "7070")

	data, err := (&CLISource{}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if data["grpc"].(map[string]any)["port"] != "7070" {
		t.Fatalf("grpc section = %v", data["grpc"])
	}
}

func TestCLISourceSupportsSingleDashLongFlags(t *testing.T) {
	withArgs(t, "-logging.level=debug")

	data, err := (&CLISource{}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if data["logging"].(map[string]any)["level"] != "debug" {
		t.Fatalf("logging section = %v", data["logging"])
	}
}

func TestCLISourceIgnoresNonFlagArguments(t *testing.T) {
	withArgs(t, "serve", "--grpc.port=9090")

	data, err := (&CLISource{}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(data) != 1 {
		t.Fatalf("data = %v, want only the grpc section", data)
	}
}
