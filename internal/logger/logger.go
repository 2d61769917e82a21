// Package logger builds the application's root zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a logger writing to w. Development output is human readable;
// everything else is JSON. An unknown level falls back to info.
func New(w io.Writer, level, environment, service string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if environment == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

// Init builds the root logger on stderr and installs it as the global logger.
func Init(level, environment, service string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	l := New(os.Stderr, level, environment, service)
	log.Logger = l
	return l
}
