package commands

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diogo/ideagen/internal/api"
)

func TestServe_Addr(t *testing.T) {
	tests := []struct {
		name string
		args []string
		cfg  string
		want string
	}{
		{"config default", []string{"serve"}, ":8080", ":8080"},
		{"config value", []string{"serve"}, "127.0.0.1:9000", "127.0.0.1:9000"},
		{"flag wins", []string{"serve", "--addr", ":7000"}, ":8080", ":7000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := newTestDeps(t, api.NewMockClientWithText("idea"))
			td.cfg.Server.Addr = tt.cfg

			if err := td.run(tt.args...); err != nil {
				t.Fatalf("serve returned error: %v", err)
			}
			if td.servedAddr != tt.want {
				t.Errorf("addr = %q, want %q", td.servedAddr, tt.want)
			}
		})
	}
}

func TestServe_Router(t *testing.T) {
	td := newTestDeps(t, api.NewMockClientWithText("idea"))

	if err := td.run("serve"); err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
	if td.server == nil {
		t.Fatal("Serve was not called with a server")
	}

	rec := httptest.NewRecorder()
	td.server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d", rec.Code)
	}
	if td.server.Store().Len() != 1 {
		t.Errorf("expected one session, got %d", td.server.Store().Len())
	}
}

func TestServe_LogsAndSessionLimits(t *testing.T) {
	td := newTestDeps(t, api.NewMockClientWithText("idea"))
	td.cfg.Server.MaxSessions = 2

	if err := td.run("serve"); err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
	if !strings.Contains(td.stderr.String(), "Serving chat widget") {
		t.Errorf("startup line missing from stderr:\n%s", td.stderr.String())
	}

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		td.server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if n := td.server.Store().Len(); n != 2 {
		t.Errorf("store should be capped at 2 sessions, have %d", n)
	}
}
