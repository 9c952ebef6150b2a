package main

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// newLogger writes human-readable logs to w. Info by default, debug with
// verbose, errors only with quiet.
func newLogger(w io.Writer, quiet, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case quiet:
		level = zerolog.ErrorLevel
	case verbose:
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
