package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/skekre98/chassis/config"
)

// CLISource loads configuration from command-line flags.
//
// Dots in a flag name express nesting, and both --flag=value and
// --flag value forms are accepted:
//
//	--grpc.port=9090 --app.name pingd
//	  -> {grpc: {port: "9090"}, app: {name: "pingd"}}
//
// Values are strings; type conversion happens during binding. CLISource
// should normally be last in the source chain so flags override everything
// else.
type CLISource struct{}

// Name returns the identifier for this source.
func (c *CLISource) Name() string { return "cli" }

// Load parses flags from os.Args. Invalid flags are ignored rather than
// reported, since unrelated flags may belong to other parsers.
func (c *CLISource) Load(ctx context.Context) (map[string]any, error) {
	return parseCliFlags()
}

// Watch is not implemented for CLISource; arguments are static for the
// process lifetime.
func (c *CLISource) Watch(ctx context.Context, ch chan<- config.Event) error {
	return nil
}

func parseCliFlags() (map[string]any, error) {
	result := make(map[string]any)
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	registered := make(map[string]bool)
	args := normalizeArgs(os.Args[1:])

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		flagName := extractFlagName(arg)
		if flagName == "" {
			continue
		}

		if !registered[flagName] {
			fs.String(flagName, "", fmt.Sprintf("Config value for %s", flagName))
			registered[flagName] = true
		}

		// Skip a detached value so it isn't mistaken for a flag.
		if !strings.Contains(arg, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
		}
	}

	_ = fs.Parse(args)

	fs.VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			return
		}
		value := flag.Value.String()
		if value == "" {
			return
		}
		segments := strings.Split(flag.Name, ".")
		if len(segments) == 0 {
			return
		}
		setNestedValue(result, segments, value)
	})

	return result, nil
}

// normalizeArgs converts single-dash long flags to double-dash for pflag.
func normalizeArgs(args []string) []string {
	normalized := make([]string, len(args))
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") {
			withoutDash := strings.TrimPrefix(arg, "-")
			if len(withoutDash) > 1 && withoutDash[0] != '=' {
				normalized[i] = "-" + arg
			} else {
				normalized[i] = arg
			}
		} else {
			normalized[i] = arg
		}
	}
	return normalized
}

// extractFlagName strips leading dashes and any =value suffix.
func extractFlagName(arg string) string {
	arg = strings.TrimLeft(arg, "-")
	if arg == "" {
		return ""
	}
	if idx := strings.Index(arg, "="); idx != -1 {
		return arg[:idx]
	}
	return arg
}
