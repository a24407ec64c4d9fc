package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/ideagen/internal/chat"
	"github.com/diogo/ideagen/internal/logging"
	"github.com/diogo/ideagen/internal/render"
	"github.com/diogo/ideagen/internal/tui"
)

func newChatCmd(deps *Dependencies, root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive idea chat",
		Long: `Start the interactive chat.

Fill in your industry, budget, currency and tone to get a first idea,
then keep chatting to refine it. Each message is sent on its own; the
model does not see earlier turns.

Press Ctrl+Y to copy the last reply, Esc or Ctrl+C to quit.
Logs are written to ~/.ideagen/ideagen.log unless log.file is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), deps, root)
		},
	}
}

func runChat(ctx context.Context, deps *Dependencies, root *rootOptions) error {
	cfg, client, err := connect(deps, root)
	if err != nil {
		return err
	}
	defer client.Close()

	// the terminal UI owns stdout and stderr
	logger, closer, err := logging.NewFile(cfg, root.level(cfg))
	if err != nil {
		fmt.Fprintln(deps.Stderr, warnStyle.Render(fmt.Sprintf("⚠ Logging disabled: %v", err)))
		logger = zerolog.Nop()
	} else {
		defer closer.Close()
	}

	model := root.modelFor(cfg)
	appLog := logging.Component(logger, logging.App)
	appLog.Info().
		Str("model", model.Name).
		Dur("timeout", cfg.Timeout()).
		Msg("Chat started")

	session := chat.NewSession(client,
		chat.WithLogger(logging.Component(logger, logging.Chat)),
		chat.WithModel(model),
	)

	tui.UpdatePalette(render.ResolvePalette(cfg.TUITheme))

	return deps.RunChat(ctx, session, tui.Options{
		ModelName:       model.Name,
		Render:          render.OptionsFromConfig(cfg.Markdown, 0),
		Logger:          appLog,
		Copy:            deps.Copy,
		DefaultCurrency: cfg.DefaultCurrency,
	})
}
