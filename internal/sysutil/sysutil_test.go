package sysutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetLogLevel_AllVariants(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestLogWriter_StdoutOnly(t *testing.T) {
	var buf bytes.Buffer
	w, closer := logWriter(LogOptions{}, &buf)
	defer closer.Close()

	l := zerolog.New(w)
	l.Info().Str("k", "v").Msg("hello")
	if !strings.Contains(buf.String(), `"k":"v"`) || !strings.Contains(buf.String(), "hello") {
		t.Fatalf("expected JSON line on stdout, got %q", buf.String())
	}
}

func TestLogWriter_FileIsRotatedJSON(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "app.log")
	w, closer := logWriter(LogOptions{Pretty: true, File: path}, &buf)

	l := zerolog.New(w)
	l.Warn().Str("summary_id", "abc").Msg("written twice")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"summary_id":"abc"`) {
		t.Fatalf("file sink should receive JSON, got %q", data)
	}
	if buf.Len() == 0 || strings.Contains(buf.String(), `"summary_id"`) {
		t.Fatalf("console sink should receive pretty output, got %q", buf.String())
	}
}

func TestSetupLogger_InstallsGlobalAndContextFallback(t *testing.T) {
	prevLogger := log.Logger
	prevCtx := zerolog.DefaultContextLogger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.DefaultContextLogger = prevCtx
		zerolog.SetGlobalLevel(prevLevel)
	})

	_, closer := SetupLogger(LogOptions{Level: "error"})
	defer closer.Close()

	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Fatalf("level not applied: %v", zerolog.GlobalLevel())
	}
	if zerolog.DefaultContextLogger != &log.Logger {
		t.Fatalf("DefaultContextLogger should point at the global logger")
	}
}
