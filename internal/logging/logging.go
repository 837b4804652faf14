// Package logging configures the zerolog logger shared by commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Options selects the level and destination of log output.
type Options struct {
	Level   string // from the Updatefile; overridden by Verbose and Quiet
	Verbose bool
	Quiet   bool
	Out     io.Writer // defaults to stderr
}

// ResolveLevel returns the effective level. Quiet wins over Verbose.
func ResolveLevel(opts Options) (zerolog.Level, error) {
	switch {
	case opts.Quiet:
		return zerolog.ErrorLevel, nil
	case opts.Verbose:
		return zerolog.DebugLevel, nil
	case opts.Level == "":
		return zerolog.WarnLevel, nil
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	return level, nil
}

// New creates a console logger. Colors are only used on a terminal.
func New(opts Options) (zerolog.Logger, error) {
	level, err := ResolveLevel(opts)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := opts.Out
	noColor := true
	if out == nil {
		out = os.Stderr
		noColor = !term.IsTerminal(int(os.Stderr.Fd()))
	}

	writer := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}
