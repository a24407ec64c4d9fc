package commands

import (
	"strings"
	"testing"

	"github.com/diogo/ideagen/internal/api"
	"github.com/diogo/ideagen/internal/config"
)

func TestConfigCmd_Show(t *testing.T) {
	td := newTestDeps(t, api.NewMockClientWithText("x"))
	t.Setenv(config.EnvAPIKey, "secret-key-abcd")
	t.Setenv("LC_ALL", "ja_JP.UTF-8")

	if err := td.run("config"); err != nil {
		t.Fatalf("config returned error: %v", err)
	}

	out := td.stdout.String()
	for _, want := range []string{
		"default_model", "gemini-2.5-flash", "abcd", "server.addr", ":8080",
		"request_timeout_seconds", "locale_currency", "JPY ¥",
		"server.max_sessions", "1000", "server.session_idle_minutes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "secret-key") {
		t.Error("API key must be redacted")
	}
}

func TestConfigCmd_Set(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(config.Config) bool
	}{
		{"currency", "default_currency", "eur", false, func(c config.Config) bool { return c.DefaultCurrency == "EUR" }},
		{"timeout", "request_timeout_seconds", "30", false, func(c config.Config) bool { return c.RequestTimeout == 30 }},
		{"markdown", "markdown.enabled", "true", false, func(c config.Config) bool { return c.Markdown.Enabled }},
		{"bad timeout", "request_timeout_seconds", "soon", true, nil},
		{"unknown key", "cookies", "x", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := newTestDeps(t, api.NewMockClientWithText("x"))

			err := td.run("config", "set", tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("config set returned error: %v", err)
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig() error: %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("%s not persisted: %+v", tt.key, cfg)
			}
		})
	}
}

func TestConfigCmd_Path(t *testing.T) {
	td := newTestDeps(t, api.NewMockClientWithText("x"))

	if err := td.run("config", "path"); err != nil {
		t.Fatalf("config path returned error: %v", err)
	}
	want, _ := config.GetConfigPath()
	if strings.TrimSpace(td.stdout.String()) != want {
		t.Errorf("path = %q, want %q", td.stdout.String(), want)
	}
}
