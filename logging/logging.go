// Package logging builds the zerolog logger used by cliptrack, writing to the
// console and optionally shipping to Graylog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// Options defines where and at what level logs are written
type Options struct {
	// Level is one of trace, debug, info, warn or error
	Level string
	// Console receives human readable output, defaults to stderr
	Console io.Writer
	// NoColor disables colored console output
	NoColor bool
	// GraylogAddress enables shipping to a GELF UDP endpoint when set
	GraylogAddress string
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a logger for the options.  The returned closer releases the
// Graylog connection and must be called on shutdown.
func New(opts Options) (zerolog.Logger, io.Closer, error) {

	console := opts.Console

	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
			NoColor:    opts.NoColor,
		},
	}

	var closer io.Closer = nopCloser{}

	if opts.GraylogAddress != "" {
		gw, err := gelf.NewWriter(opts.GraylogAddress)

		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("error connecting to graylog: %w", err)
		}

		writers = append(writers, gw)
		closer = gw
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Logger()

	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
