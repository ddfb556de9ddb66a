// Package logging constructs the console logger used across the CLI.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to stderr. Verbose enables
// debug-level output globally.
func New(verbose bool) zerolog.Logger {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return NewWithWriter(os.Stderr)
}

// NewWithWriter returns a console logger writing to w.
func NewWithWriter(w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}
	return zerolog.New(output).With().Timestamp().Logger()
}
