// Package sysutil holds process-level setup helpers: global log level and the
// log sink (stdout, pretty console, optional rotated file).
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions describes where and how the process logs.
type LogOptions struct {
	Level  string // debug|info|warn|error|fatal|panic
	Pretty bool   // human-readable console output
	File   string // optional path; rotated by lumberjack when set
}

// SetLogLevel configures the global zerolog level based on a string value.
// Supported values (case-insensitive): debug, info, warn, error, fatal, panic.
func SetLogLevel(lvl string) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info", "":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// SetupLogger installs the global zerolog logger and makes it the fallback for
// zerolog.Ctx so code running outside a request still logs. The returned
// closer flushes the rotated file, if any.
func SetupLogger(opts LogOptions) (zerolog.Logger, io.Closer) {
	SetLogLevel(opts.Level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	w, closer := logWriter(opts, os.Stdout)
	l := zerolog.New(w).With().Timestamp().Logger()

	log.Logger = l
	zerolog.DefaultContextLogger = &log.Logger
	return l, closer
}

// logWriter builds the sink: stdout (JSON or console) plus an optional
// size-rotated file that always receives JSON.
func logWriter(opts LogOptions, stdout io.Writer) (io.Writer, io.Closer) {
	var out io.Writer = stdout
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.Kitchen}
	}
	if strings.TrimSpace(opts.File) == "" {
		return out, nopCloser{}
	}
	rot := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}
	return zerolog.MultiLevelWriter(out, rot), rot
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
