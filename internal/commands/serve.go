package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diogo/ideagen/internal/chat"
	"github.com/diogo/ideagen/internal/logging"
	"github.com/diogo/ideagen/internal/web"
)

func newServeCmd(deps *Dependencies, root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser chat widget",
		Long: `Serve the chat widget over HTTP.

Every browser gets its own in-memory conversation keyed by a cookie.
The API key stays on the server. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), deps, root, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, \":8080\")")
	return cmd
}

func runServe(ctx context.Context, deps *Dependencies, root *rootOptions, addr string) error {
	cfg, client, err := connect(deps, root)
	if err != nil {
		return err
	}
	defer client.Close()

	if addr == "" {
		addr = cfg.Server.Addr
	}

	logger := logging.NewConsole(deps.Stderr, root.level(cfg))
	model := root.modelFor(cfg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// sessions share the client; each owns its own in-flight token
	sessionLogger := logging.Component(logger, logging.Chat)
	newSession := func() *chat.Session {
		return chat.NewSession(client,
			chat.WithLogger(sessionLogger),
			chat.WithModel(model),
		)
	}

	srv, err := web.NewServer(newSession,
		web.WithLogger(logging.Component(logger, logging.Web)),
		web.WithBaseContext(ctx),
		web.WithSessionLimits(cfg.Server.MaxSessions, cfg.Server.SessionIdleTTL()),
	)
	if err != nil {
		return err
	}

	appLog := logging.Component(logger, logging.App)
	appLog.Info().
		Str("addr", addr).
		Str("model", model.Name).
		Int("max_sessions", cfg.Server.MaxSessions).
		Msg("Serving chat widget")

	return deps.Serve(ctx, srv, addr)
}
