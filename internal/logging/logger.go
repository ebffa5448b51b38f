// Package logging builds the service's zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is re-exported so callers depend on this package rather than on
// zerolog directly.
type Logger = zerolog.Logger

type Options struct {
	Level       string
	Format      string
	Environment string
	Output      io.Writer
}

// New constructs the root logger. Development environments and
// Format "console" get the human-readable console writer; everything else
// logs JSON.
func New(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
		if opts.Environment == "development" {
			level = zerolog.DebugLevel
		}
	}

	if opts.Format == "console" || (opts.Format == "" && opts.Environment == "development") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "brand-video").
		Logger()
}

// Nop returns a disabled logger for tests and optional collaborators.
func Nop() Logger {
	return zerolog.Nop()
}
