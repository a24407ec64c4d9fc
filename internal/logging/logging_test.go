package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/diogo/ideagen/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.Level = "warn"

	t.Setenv(EnvLogLevel, "")
	if got := ResolveLevel("", cfg); got != zerolog.WarnLevel {
		t.Errorf("config level = %v", got)
	}

	t.Setenv(EnvLogLevel, "error")
	if got := ResolveLevel("", cfg); got != zerolog.ErrorLevel {
		t.Errorf("env should beat config, got %v", got)
	}

	if got := ResolveLevel("debug", cfg); got != zerolog.DebugLevel {
		t.Errorf("flag should beat env, got %v", got)
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(&buf, zerolog.WarnLevel), Chat)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, `"component":"chat"`) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsole(&buf, zerolog.InfoLevel)
	logger.Info().Str("addr", ":8080").Msg("listening")

	out := buf.String()
	if !strings.Contains(out, "listening") || strings.HasPrefix(out, "{") {
		t.Errorf("expected console formatted output, got %q", out)
	}
}

func TestNewFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Log.File = filepath.Join(dir, "test.log")

	logger, closer, err := NewFile(cfg, zerolog.InfoLevel)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}
	logger.Info().Msg("started")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(cfg.Log.File)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "started") {
		t.Errorf("log file missing entry: %q", data)
	}

	cfg.Log.File = filepath.Join(dir, "missing", "dir", "x.log")
	if _, _, err := NewFile(cfg, zerolog.InfoLevel); err == nil {
		t.Error("expected error for unwritable path")
	}
}
