package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"

	"github.com/diogo/ideagen/internal/api"
	"github.com/diogo/ideagen/internal/chat"
	"github.com/diogo/ideagen/internal/config"
	"github.com/diogo/ideagen/internal/models"
	"github.com/diogo/ideagen/internal/tui"
	"github.com/diogo/ideagen/internal/web"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// LoadConfig returns the effective config with the API key resolved.
	LoadConfig func() (config.Config, error)

	// NewClient builds the generateContent client.
	NewClient func(cfg config.Config, model models.Model) (api.GeminiClientInterface, error)

	// RunChat runs the terminal UI until the user quits.
	RunChat func(ctx context.Context, session *chat.Session, opts tui.Options) error

	// Serve runs the web widget until ctx is cancelled.
	Serve func(ctx context.Context, srv *web.Server, addr string) error

	// Copy puts text on the clipboard.
	Copy func(string) error

	// IsTTY reports whether stdout is a terminal.
	IsTTY func() bool

	// TerminalWidth returns the width of stdout.
	TerminalWidth func() int

	Stdout io.Writer
	Stderr io.Writer
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig: config.Load,
		NewClient:  newClient,
		RunChat:    tui.RunChat,
		Serve: func(ctx context.Context, srv *web.Server, addr string) error {
			return srv.ListenAndServe(ctx, addr)
		},
		Copy:          clipboard.WriteAll,
		IsTTY:         isStdoutTTY,
		TerminalWidth: getTerminalWidth,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
	}
}

func newClient(cfg config.Config, model models.Model) (api.GeminiClientInterface, error) {
	opts := []api.ClientOption{
		api.WithModel(model),
		api.WithTimeout(cfg.Timeout()),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, api.WithBaseURL(cfg.BaseURL))
	}
	return api.NewClient(cfg.APIKey, opts...)
}
