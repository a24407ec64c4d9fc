package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/ideagen/internal/api"
	"github.com/diogo/ideagen/internal/chat"
	"github.com/diogo/ideagen/internal/logging"
	"github.com/diogo/ideagen/internal/models"
	"github.com/diogo/ideagen/internal/profile"
	"github.com/diogo/ideagen/internal/render"
)

// errNoIdea is returned when the engine answered with the fallback entry
// and the client error is unknown
var errNoIdea = errors.New("no business idea was generated")

type generateOptions struct {
	industry string
	budget   string
	currency string
	tone     string
	html     bool
	copy     bool
	output   string
}

func newGenerateCmd(deps *Dependencies, root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one business idea from a profile",
		Long: `Submit a business profile once and print the reply.

The reply is decorated when stdout is a terminal and printed raw otherwise,
so it can be piped. --html prints the transcript as the browser widget
renders it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), deps, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.industry, "industry", "", "Industry (e.g., \"coffee shop\")")
	cmd.Flags().StringVar(&opts.budget, "budget", "", "Budget amount")
	cmd.Flags().StringVar(&opts.currency, "currency", "", "Currency code (USD, EUR, INR, GBP, JPY); default from config or locale")
	cmd.Flags().StringVar(&opts.tone, "tone", "", "Desired tone (e.g., funny, professional)")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Print the transcript as HTML")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the reply to the clipboard")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the reply to file")
	return cmd
}

func runGenerate(ctx context.Context, deps *Dependencies, root *rootOptions, opts *generateOptions) error {
	draft := models.ProfileDraft{
		Industry: opts.industry,
		Budget:   opts.budget,
		Currency: opts.currency,
		Tone:     opts.tone,
	}
	if !draft.Valid() {
		return fmt.Errorf("--industry, --budget and --tone are required")
	}

	cfg, client, err := connect(deps, root)
	if err != nil {
		return err
	}
	defer client.Close()

	if draft.Currency == "" {
		draft.Currency = cfg.DefaultCurrency
	}

	// the session swallows client errors; keep the last one for the exit message
	recorder := &errorRecorder{GeminiClientInterface: client}

	logger := zerolog.Nop()
	if level := root.level(cfg); level <= zerolog.DebugLevel {
		logger = logging.Component(logging.NewConsole(deps.Stderr, level), logging.Chat)
	}

	session := chat.NewSession(recorder,
		chat.WithoutGreeting(),
		chat.WithLogger(logger),
		chat.WithModel(root.modelFor(cfg)),
	)

	decorated := deps.IsTTY() && !opts.html
	var spin *spinner
	if decorated {
		spin = newSpinner(deps.Stderr, "Thinking...", render.ResolvePalette(cfg.TUITheme))
		spin.start()
	}

	profile.NewCollector(session).Submit(ctx, draft)

	state := session.Snapshot()
	reply := state.Transcript[len(state.Transcript)-1]
	if reply.Sender != models.SenderBot || !reply.IsRichText {
		if spin != nil {
			spin.stopWithError()
		}
		if err := recorder.Err(); err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}
		return errNoIdea
	}
	if spin != nil {
		spin.stopWithSuccess("Done")
	}

	text := reply.Text
	out := text
	if opts.html {
		out = render.Transcript(state.Transcript)
	}

	if opts.copy || cfg.CopyToClipboard {
		if err := deps.Copy(text); err != nil {
			fmt.Fprintln(deps.Stderr, warnStyle.Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else if decorated {
			fmt.Fprintln(deps.Stderr, successStyle.Render("✓ Copied to clipboard"))
		}
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(out), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if decorated {
			fmt.Fprintln(deps.Stderr, successStyle.Render(fmt.Sprintf("✓ Reply saved to %s", opts.output)))
		}
		return nil
	}

	if !decorated {
		fmt.Fprint(deps.Stdout, out)
		if !strings.HasSuffix(out, "\n") {
			fmt.Fprintln(deps.Stdout)
		}
		return nil
	}

	bubbleWidth, contentWidth := bubbleWidths(deps.TerminalWidth())
	rendered := render.Reply(text, render.OptionsFromConfig(cfg.Markdown, contentWidth))

	fmt.Fprintln(deps.Stdout, assistantLabelStyle.Render("✦ Idea Bot"))
	fmt.Fprintln(deps.Stdout, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
	return nil
}

// errorRecorder keeps the last error returned by the wrapped client
type errorRecorder struct {
	api.GeminiClientInterface

	mu  sync.Mutex
	err error
}

func (r *errorRecorder) GenerateContent(ctx context.Context, prompt string, opts *api.GenerateOptions) (*models.ModelOutput, error) {
	out, err := r.GeminiClientInterface.GenerateContent(ctx, prompt, opts)
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	return out, err
}

// Err returns the error of the latest call
func (r *errorRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
