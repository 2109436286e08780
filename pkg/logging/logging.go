/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Options controls how the default logger is built.
type Options struct {
	// Name of the application, added to every record.
	Name string
	// Version of the application, added to every record.
	Version string
	// Level is the minimum level; an empty value falls back to LOG_LEVEL, then info.
	Level string
	// JSON selects the JSON handler instead of the text handler.
	JSON bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// ParseLevel converts a level name (debug, info, warn, error) to slog.Level.
// Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// New builds a logger from opts. Each logger carries a fresh run_id so
// records of one invocation can be correlated.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := opts.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: ParseLevel(level) == slog.LevelDebug,
	}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(out, handlerOpts)
	} else {
		h = slog.NewTextHandler(out, handlerOpts)
	}

	return slog.New(h).With(
		slog.String("name", opts.Name),
		slog.String("version", opts.Version),
		slog.String("run_id", uuid.New().String()),
	)
}

// SetDefaultStructuredLogger installs a logger built from opts as the slog default.
func SetDefaultStructuredLogger(opts Options) *slog.Logger {
	l := New(opts)
	slog.SetDefault(l)
	return l
}
