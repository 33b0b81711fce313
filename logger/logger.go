// logger.go - Builds the zerolog logger used across the service

package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a logger writing to stdout.
// format "console" gives human readable output, anything else JSON.
// Unknown levels fall back to info.
func New(level, format string) zerolog.Logger {
	return build(os.Stdout, level, format)
}

func build(out io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(out).With().Timestamp().Str("service", "user-service").Logger().Level(lvl)
	log.Logger = l // Set as global logger
	return l
}
