package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler and minimum level. Zero values mean text output
// at info level.
type Config struct {
	Level  string `config:"level"`
	Format string `config:"format"`
}

// New builds a logger from the config. Format "json" selects the JSON
// handler; anything else gets text, which is easier to read in dev.
func New(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
