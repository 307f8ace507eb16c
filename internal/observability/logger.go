package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoggingConfig selects the level, encoding and destination of the service
// log. Values come from the observability.logging config block.
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// NewLogger builds the slog logger every component of the ETL service shares.
// Unrecognized values degrade to info-level JSON on stdout, the shape the
// hosted log collector ingests.
func NewLogger(cfg LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	out := pickOutput(cfg.Output)

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func pickOutput(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}
