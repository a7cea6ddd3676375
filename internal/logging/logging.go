// Package logging builds the charmbracelet/log logger used across tasklist.
//
// The interactive UI owns the terminal, so by default logs go to a
// size-rotated file managed by lumberjack. A File of "-" writes to stderr
// instead.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Stderr selects standard error as the log destination.
const Stderr = "-"

// Options holds configuration for a logger.
type Options struct {
	Level      log.Level
	Formatter  log.Formatter
	File       string
	Timestamps bool
	MaxSizeMB  int
	MaxBackups int
	Prefix     string
}

// DefaultOptions returns default options writing to stderr.
func DefaultOptions() Options {
	return Options{
		Level:      log.InfoLevel,
		Formatter:  log.TextFormatter,
		File:       Stderr,
		Timestamps: true,
		MaxSizeMB:  10,
		MaxBackups: 3,
		Prefix:     "tasklist",
	}
}

// OptionsFromStrings builds Options from string configuration values.
// This is useful when loading config from TOML or environment variables.
func OptionsFromStrings(level, format, file string, timestamps bool, maxSizeMB, maxBackups int) Options {
	opts := DefaultOptions()
	opts.Level = ParseLogLevel(level)
	opts.Formatter = ParseLogFormatter(format)
	opts.File = file
	opts.Timestamps = timestamps
	if maxSizeMB > 0 {
		opts.MaxSizeMB = maxSizeMB
	}
	if maxBackups >= 0 {
		opts.MaxBackups = maxBackups
	}
	return opts
}

// New creates a logger for opts. The returned closer releases the log file
// and must be called when the logger is no longer used.
func New(opts Options) (*log.Logger, io.Closer) {
	var w io.WriteCloser = nopCloser{os.Stderr}
	if opts.File != "" && opts.File != Stderr {
		w = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
	}
	return NewWithWriter(w, opts), w
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.Timestamps,
		Prefix:          opts.Prefix,
	})
}

// NewTest creates a debug-level logger with minimal formatting for easier
// test assertions.
func NewTest(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:     log.DebugLevel,
		Formatter: log.TextFormatter,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLogLevel parses a string log level to a charmbracelet/log Level.
// Unknown values map to info.
func ParseLogLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseLogFormatter parses a string formatter name to a charmbracelet/log Formatter.
func ParseLogFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
