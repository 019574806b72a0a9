package source

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/skekre98/chassis/config"
)

// FileSource loads configuration from YAML files.
//
// The base file (application.yaml or application.yml) is loaded from
// BasePath; if Profile is set, application.{profile}.yaml is deep-merged on
// top. With ExpandEnv set, ${NAME} references in the file body are replaced
// with environment variable values before parsing, so files can carry
// secrets by reference:
//
//	database:
//	  password: ${DB_PASSWORD}
type FileSource struct {
	// BasePath is the directory containing the configuration files.
	BasePath string

	// Profile selects an optional overlay file. A missing overlay is
	// silently ignored.
	Profile string

	// ExpandEnv substitutes ${NAME} environment references in the raw file
	// content before parsing. Unset variables expand to the empty string.
	ExpandEnv bool
}

// Name returns the identifier for this source.
func (f *FileSource) Name() string { return "file" }

// Load reads the base file and the optional profile overlay.
// Returns os.ErrNotExist if the base file is missing.
func (f *FileSource) Load(ctx context.Context) (map[string]any, error) {
	baseFile := findYAMLFile(f.BasePath, "application")
	if baseFile == "" {
		return nil, os.ErrNotExist
	}

	data := map[string]any{}
	if err := f.readYAML(baseFile, data); err != nil {
		return nil, err
	}

	if f.Profile != "" {
		profileFile := findYAMLFile(f.BasePath, "application."+f.Profile)
		if profileFile != "" {
			overlay := map[string]any{}
			if err := f.readYAML(profileFile, overlay); err != nil {
				return nil, err
			}
			mergeMaps(data, overlay)
		}
	}

	return data, nil
}

// Watch is not implemented for FileSource; it returns nil immediately.
func (f *FileSource) Watch(ctx context.Context, ch chan<- config.Event) error { return nil }

func (f *FileSource) readYAML(path string, out map[string]any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if f.ExpandEnv {
		b = []byte(os.ExpandEnv(string(b)))
	}
	return yaml.Unmarshal(b, &out)
}

// findYAMLFile looks for a file with either a .yaml or .yml extension.
func findYAMLFile(dir, basename string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, basename+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// mergeMaps deep-merges src into dst, matching the manager's merge rules.
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if mv, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				mergeMaps(existing, mv)
				continue
			}
		}
		dst[k] = v
	}
}
