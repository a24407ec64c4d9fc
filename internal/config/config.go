// Package config handles configuration and secrets for ideagen.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apierrors "github.com/diogo/ideagen/internal/errors"
)

// Environment variables
const (
	EnvAPIKey  = "GEMINI_API_KEY"
	EnvHomeDir = "IDEAGEN_HOME"
)

// MarkdownConfig configures the optional full-markdown reply display
type MarkdownConfig struct {
	Enabled          bool   `json:"enabled"`            // Render bot replies with glamour instead of the bold/line-break subset
	Style            string `json:"style"`              // "dark", "light", "notty" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// ServerConfig configures the web widget
type ServerConfig struct {
	Addr string `json:"addr"`
	// MaxSessions caps live browser sessions; the least recently seen idle one goes first
	MaxSessions int `json:"max_sessions"`
	// SessionIdleMinutes drops sessions nobody has touched for this long
	SessionIdleMinutes int `json:"session_idle_minutes"`
}

// LogConfig configures zerolog output
type LogConfig struct {
	Level string `json:"level"`
	// File receives logs for the terminal UI, which owns stdout/stderr.
	// Empty means <config dir>/ideagen.log.
	File string `json:"file,omitempty"`
}

// Config represents the user configuration
type Config struct {
	DefaultModel string `json:"default_model"`
	BaseURL      string `json:"base_url,omitempty"`
	// RequestTimeout bounds a single generateContent call, in seconds.
	// The busy flag is released when it expires.
	RequestTimeout int `json:"request_timeout_seconds"`
	// DefaultCurrency preselects the currency field (ISO code). Empty uses the locale.
	DefaultCurrency string         `json:"default_currency,omitempty"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown"`
	Server          ServerConfig   `json:"server"`
	Log             LogConfig      `json:"log"`

	// APIKey is never written to disk
	APIKey string `json:"-"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Enabled:          false,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		DefaultModel:    "gemini-2.5-flash",
		RequestTimeout:  120,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
		Server:          ServerConfig{Addr: ":8080", MaxSessions: 1000, SessionIdleMinutes: 30},
		Log:             LogConfig{Level: "info"},
	}
}

// Timeout returns RequestTimeout as a duration
func (c Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return time.Duration(DefaultConfig().RequestTimeout) * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// SessionIdleTTL returns SessionIdleMinutes as a duration
func (s ServerConfig) SessionIdleTTL() time.Duration {
	return time.Duration(s.SessionIdleMinutes) * time.Minute
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvHomeDir); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".ideagen"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the log file path from config, defaulting into the config dir
func GetLogPath(cfg Config) (string, error) {
	if cfg.Log.File != "" {
		return cfg.Log.File, nil
	}
	configDir, err := EnsureConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "ideagen.log"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads .env files into the process environment.
// Missing files are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadAPIKey reads the API key from the environment
func LoadAPIKey() (string, error) {
	key := strings.TrimSpace(os.Getenv(EnvAPIKey))
	if key == "" {
		return "", apierrors.NewConfigError("api_key", apierrors.ErrMissingAPIKey)
	}
	return key, nil
}

// Load returns the on-disk config with the API key resolved from .env/environment
func Load() (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return DefaultConfig(), err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return cfg, err
	}

	key, err := LoadAPIKey()
	if err != nil {
		return cfg, err
	}
	cfg.APIKey = key
	return cfg, nil
}

// Keys returns the keys accepted by Set
func Keys() []string {
	return []string{
		"default_model",
		"base_url",
		"request_timeout_seconds",
		"default_currency",
		"copy_to_clipboard",
		"tui_theme",
		"markdown.enabled",
		"markdown.style",
		"server.addr",
		"server.max_sessions",
		"server.session_idle_minutes",
		"log.level",
		"log.file",
	}
}

// Set updates a single field addressed by its JSON key
func Set(cfg *Config, key, value string) error {
	switch key {
	case "default_model":
		cfg.DefaultModel = value
	case "base_url":
		cfg.BaseURL = value
	case "request_timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return apierrors.NewConfigError(key, fmt.Errorf("must be a positive number of seconds, got %q", value))
		}
		cfg.RequestTimeout = n
	case "default_currency":
		cfg.DefaultCurrency = strings.ToUpper(value)
	case "copy_to_clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return apierrors.NewConfigError(key, err)
		}
		cfg.CopyToClipboard = b
	case "tui_theme":
		cfg.TUITheme = value
	case "markdown.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return apierrors.NewConfigError(key, err)
		}
		cfg.Markdown.Enabled = b
	case "markdown.style":
		cfg.Markdown.Style = value
	case "server.addr":
		cfg.Server.Addr = value
	case "server.max_sessions", "server.session_idle_minutes":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return apierrors.NewConfigError(key, fmt.Errorf("must be a positive number, got %q", value))
		}
		if key == "server.max_sessions" {
			cfg.Server.MaxSessions = n
		} else {
			cfg.Server.SessionIdleMinutes = n
		}
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	default:
		return apierrors.NewConfigError(key, fmt.Errorf("unknown key (valid: %s)", strings.Join(Keys(), ", ")))
	}
	return nil
}

// RedactedKey returns the API key with everything but the last four characters masked
func RedactedKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
