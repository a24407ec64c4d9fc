// Package logging builds the zerolog loggers used by the CLI surfaces.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/diogo/ideagen/internal/config"
)

// EnvLogLevel overrides the configured level
const EnvLogLevel = "LOG_LEVEL"

// Component names attached to every log line
const (
	App    = "app"
	Chat   = "chat"
	Config = "config"
	Web    = "web"
)

// ParseLevel accepts zerolog level names in any case.
// Unknown or empty names yield info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// ResolveLevel picks the level from, in order, the flag, LOG_LEVEL and the config
func ResolveLevel(flag string, cfg config.Config) zerolog.Level {
	if flag != "" {
		return ParseLevel(flag)
	}
	if env := os.Getenv(EnvLogLevel); env != "" {
		return ParseLevel(env)
	}
	return ParseLevel(cfg.Log.Level)
}

// New returns a timestamped logger writing JSON lines to w
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// NewConsole returns a human-readable logger for stderr, used by serve
func NewConsole(w io.Writer, level zerolog.Level) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}, level)
}

// NewFile opens the configured log file in append mode for the terminal UI,
// which owns stdout and stderr. The returned closer must be closed on exit.
func NewFile(cfg config.Config, level zerolog.Level) (zerolog.Logger, io.Closer, error) {
	path, err := config.GetLogPath(cfg)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f, level), f, nil
}

// Component tags a logger with a component name
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
