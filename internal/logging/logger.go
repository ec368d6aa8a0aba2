// Package logging provides the leveled logger used by batch decoding.
// Level, prefix and file output come from SIM8086_LOG_* environment variables.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Options controls logger construction.
type Options struct {
	Level  log.Level
	Prefix string
	ToFile bool
}

// OptionsFromEnv reads SIM8086_LOG_LEVEL (debug, info, warn, error; default
// info), SIM8086_LOG_PREFIX (default "sim8086 ") and SIM8086_LOG_TO_FILE=1.
// debug forces the debug level.
func OptionsFromEnv(debug bool) Options {
	opts := Options{
		Level:  ParseLevel(os.Getenv("SIM8086_LOG_LEVEL")),
		Prefix: os.Getenv("SIM8086_LOG_PREFIX"),
		ToFile: os.Getenv("SIM8086_LOG_TO_FILE") == "1",
	}
	if debug {
		opts.Level = log.DebugLevel
	}
	if opts.Prefix == "" {
		opts.Prefix = "sim8086 "
	}
	return opts
}

// ParseLevel maps a level name to a log level. Unknown names are info.
func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Logger is a leveled logger that may own its output file.
type Logger struct {
	*log.Logger
	closer io.Closer
}

// Close closes the log file, if the logger opened one.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// ForListing returns a child logger tagged with one batch input and the
// listing it is written to.
func (l *Logger) ForListing(input, listing string) *log.Logger {
	return l.With("input", filepath.Base(input), "listing", listing)
}

// New creates a logger writing to w. w is never closed.
func New(w io.Writer, opts Options) *Logger {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           opts.Level,
		Prefix:          opts.Prefix,
	})
	return &Logger{Logger: lg}
}

// NewLogger creates the batch logger from the environment. With
// SIM8086_LOG_TO_FILE=1 it appends to sim8086-<timestamp>.log and falls back
// to stderr when the file cannot be opened.
func NewLogger(debug bool) *Logger {
	opts := OptionsFromEnv(debug)
	if !opts.ToFile {
		return New(os.Stderr, opts)
	}

	name := fmt.Sprintf("sim8086-%s.log", time.Now().Format("20060102-150405"))
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return New(os.Stderr, opts)
	}
	l := New(f, opts)
	l.closer = f
	return l
}
