package source

import (
	"context"
	"os"
	"strings"

	"github.com/skekre98/chassis/config"
)

// EnvPrefix is the required prefix for environment variables; anything else
// is ignored.
const EnvPrefix = "CHASSIS_"

// EnvSource loads configuration from environment variables.
//
// Variables are filtered by the CHASSIS_ prefix, lowercased, and split on
// underscores into a nested map:
//
//	CHASSIS_GRPC_PORT=9090      -> {grpc: {port: "9090"}}
//	CHASSIS_APP_NAME=pingd      -> {app: {name: "pingd"}}
//
// Values are strings; type conversion happens during binding. If a leaf value
// already exists at a path, deeper keys under it are skipped.
type EnvSource struct{}

// Name returns the identifier for this source.
func (e *EnvSource) Name() string { return "env" }

// Load reads all environment variables carrying the prefix. It never fails.
func (e *EnvSource) Load(ctx context.Context) (map[string]any, error) {
	result := make(map[string]any)

	for _, env := range os.Environ() {
		key, value, found := strings.Cut(env, "=")
		if !found || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}

		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		segments := strings.Split(key, "_")
		if len(segments) == 0 {
			continue
		}
		setNestedValue(result, segments, value)
	}

	return result, nil
}

// Watch is not implemented for EnvSource; the environment is effectively
// static for the process lifetime.
func (e *EnvSource) Watch(ctx context.Context, ch chan<- config.Event) error {
	return nil
}

func setNestedValue(m map[string]any, segments []string, value string) {
	current := m

	for i, segment := range segments {
		if segment == "" {
			continue
		}

		if i == len(segments)-1 {
			current[segment] = value
			return
		}

		if existing, exists := current[segment]; exists {
			nested, ok := existing.(map[string]any)
			if !ok {
				// A leaf already occupies this path.
				return
			}
			current = nested
		} else {
			nested := make(map[string]any)
			current[segment] = nested
			current = nested
		}
	}
}
