// Package logger builds the slog loggers shared by the command
// surfaces. Interactive output goes through a colored console handler;
// the MCP command must pass stderr so stdout stays a clean protocol
// stream.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
)

// NewColorHandler returns a colored console handler writing to w.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	var level slog.Leveler = slog.LevelInfo
	addSource := false
	if opts != nil {
		if opts.Level != nil {
			level = opts.Level
		}
		addSource = opts.AddSource
	}
	return console.NewHandler(w, &console.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	})
}

// NewDefaultLogger returns a colored logger on stderr at the given
// level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewHandler builds a handler from configuration values. Format "json"
// selects the stdlib JSON handler; any other format gets the colored
// console handler. Exposed separately from New so commands can wrap the
// handler before constructing the logger.
func NewHandler(level, format string, w io.Writer) slog.Handler {
	lvl := ParseLevel(level)
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	return NewColorHandler(w, &slog.HandlerOptions{Level: lvl})
}

// New builds a logger from configuration values.
func New(level, format string, w io.Writer) *slog.Logger {
	return slog.New(NewHandler(level, format, w))
}

// ParseLevel maps a level name to a slog.Level. Unknown names fall back
// to info.
func ParseLevel(level string) slog.Level {
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
