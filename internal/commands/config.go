package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/ideagen/internal/config"
	"github.com/diogo/ideagen/internal/profile"
)

var (
	configKeyStyle   = lipgloss.NewStyle().Foreground(colorPrimary)
	configValueStyle = lipgloss.NewStyle().Foreground(colorText)
)

// NewConfigCmd creates the config command
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the configuration from ~/.ideagen/config.json.

The API key is read from GEMINI_API_KEY and shown redacted; it is never
written to the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			key, _ := config.LoadAPIKey()
			path, _ := config.GetConfigPath()
			printConfig(deps.Stdout, path, cfg, key)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Update a configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := config.Set(&cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, successStyle.Render(fmt.Sprintf("✓ %s updated", args[0])))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, path)
			return nil
		},
	})

	return cmd
}

func printConfig(w io.Writer, path string, cfg config.Config, apiKey string) {
	logFile, err := config.GetLogPath(cfg)
	if err != nil {
		logFile = cfg.Log.File
	}
	currency := cfg.DefaultCurrency
	if currency == "" {
		currency = "(locale)"
	}
	locale := profile.HostLocale()
	localeCurrency := "(unknown, uses " + profile.FallbackGlyph + ")"
	if code := profile.LocaleCode(locale); code != "" {
		localeCurrency = code + " " + profile.LocaleCurrency(locale)
	}

	rows := [][2]string{
		{"config_file", path},
		{"api_key", config.RedactedKey(apiKey)},
		{"default_model", cfg.DefaultModel},
		{"base_url", cfg.BaseURL},
		{"request_timeout_seconds", fmt.Sprint(int(cfg.Timeout().Seconds()))},
		{"default_currency", currency},
		{"locale_currency", localeCurrency},
		{"copy_to_clipboard", fmt.Sprint(cfg.CopyToClipboard)},
		{"tui_theme", cfg.TUITheme},
		{"markdown.enabled", fmt.Sprint(cfg.Markdown.Enabled)},
		{"markdown.style", cfg.Markdown.Style},
		{"server.addr", cfg.Server.Addr},
		{"server.max_sessions", fmt.Sprint(cfg.Server.MaxSessions)},
		{"server.session_idle_minutes", fmt.Sprint(cfg.Server.SessionIdleMinutes)},
		{"log.level", cfg.Log.Level},
		{"log.file", logFile},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", configKeyStyle.Render(fmt.Sprintf("%-29s", r[0])), configValueStyle.Render(r[1]))
	}
}
