// Package logging builds the zerolog loggers used across freewrite.
// The TUI owns the terminal, so logs normally go to a file in the data
// directory rather than stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// ParseLevel converts a configured level name to a zerolog level.
// An empty name yields DefaultLevel.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultLevel
	}

	switch name {
	case "debug", "info", "warn", "error":
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %s (must be debug, info, warn or error)", name)
	}

	return zerolog.ParseLevel(name)
}

// New creates a console-formatted logger writing to w.
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger(), nil
}

// NewFile creates a logger appending to the file at path.
// The returned closer must be closed when logging is done.
func NewFile(path, level string) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger, err := New(f, level)
	if err != nil {
		f.Close()
		return zerolog.Nop(), nil, err
	}

	return logger, f, nil
}
