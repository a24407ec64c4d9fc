// Package commands provides CLI commands for ideagen.
package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/ideagen/internal/api"
	"github.com/diogo/ideagen/internal/config"
	"github.com/diogo/ideagen/internal/logging"
	"github.com/diogo/ideagen/internal/models"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootOptions holds the persistent flags shared by every subcommand
type rootOptions struct {
	model    string
	logLevel string
}

// modelFor returns the model from the flag, falling back to the config
func (o *rootOptions) modelFor(cfg config.Config) models.Model {
	if o.model != "" {
		return models.ModelFromName(o.model)
	}
	return models.ModelFromName(cfg.DefaultModel)
}

func (o *rootOptions) level(cfg config.Config) zerolog.Level {
	return logging.ResolveLevel(o.logLevel, cfg)
}

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ideagen",
		Short: "Small business idea generator",
		Long: `ideagen asks for your industry, budget and tone and turns them into a
business idea, brand names and marketing copy using the Gemini API.

The API key is read from GEMINI_API_KEY (a .env file in the working
directory is loaded first).

Examples:
  ideagen chat                          Start the interactive chat
  ideagen generate --industry "coffee shop" --budget 5000 --tone funny
  ideagen serve --addr :8080            Serve the browser widget
  ideagen config set default_currency EUR`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "ideagen %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return cmd.Help()
		},
	}
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	cmd.PersistentFlags().StringVarP(&opts.model, "model", "m", "", "Model to use (e.g., gemini-2.5-flash, pro)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(
		newChatCmd(deps, opts),
		newGenerateCmd(deps, opts),
		newServeCmd(deps, opts),
		NewConfigCmd(deps),
	)
	return cmd
}

// connect loads the config and builds the client for the selected model
func connect(deps *Dependencies, opts *rootOptions) (config.Config, api.GeminiClientInterface, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return cfg, nil, err
	}
	client, err := deps.NewClient(cfg, opts.modelFor(cfg))
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to create client: %w", err)
	}
	return cfg, client, nil
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}
