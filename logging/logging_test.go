// ABOUTME: Tests for logger construction
// ABOUTME: Checks level filtering, JSON output and file logging

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}

	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONFiltersLevel(t *testing.T) {
	var buf bytes.Buffer

	log, closer, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()

	log.Info().Msg("hidden")
	log.Warn().Str("project", "p1").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered: %s", out)
	}

	if !strings.Contains(out, `"project":"p1"`) {
		t.Errorf("expected JSON field in output: %s", out)
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), DebugLogFile)

	log, closer, err := New(Config{Level: "debug", File: path})
	if err != nil {
		t.Fatal(err)
	}

	log.Debug().Msg("written to file")

	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file content = %q", data)
	}
}

func TestNew_BadFile(t *testing.T) {
	if _, _, err := New(Config{File: filepath.Join(t.TempDir(), "missing", "x.log")}); err == nil {
		t.Error("unwritable log path should fail")
	}
}
