package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config selects the slog handler. Output is "stdout", "stderr" or a file path.
type Config struct {
	Level     Level
	Format    string
	Output    string
	Component string
}

func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Format: "text",
		Output: "stderr",
	}
}

// New builds a logger and returns a close func for file outputs.
func New(cfg Config) (*slog.Logger, func() error) {
	var level slog.Level
	switch Level(strings.ToLower(string(cfg.Level))) {
	case LevelDebug:
		level = slog.LevelDebug
	case LevelWarn:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var output io.Writer
	closeFn := func() error { return nil }
	switch cfg.Output {
	case "", "stderr":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		if file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			output = file
			closeFn = file.Close
		} else {
			output = os.Stderr
		}
	}

	return NewWithWriter(output, level, cfg.Format, cfg.Component), closeFn
}

func NewWithWriter(w io.Writer, level slog.Level, format, component string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	if component != "" {
		logger = logger.With("component", component)
	}
	return logger
}

// Discard is used by tests and by commands that must keep stdout clean.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
