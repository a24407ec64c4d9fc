package render

import (
	"os"

	"github.com/diogo/ideagen/internal/config"
)

// Options configures how bot replies are drawn in the terminal
type Options struct {
	// Enabled switches from the bold/line-break transform to glamour markdown
	Enabled bool

	// Width wraps output; 0 disables wrapping
	Width int

	// Style is a glamour style name ("dark", "light", "dracula", ...) or a JSON path
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions mirrors config.DefaultMarkdownConfig with an 80 column width
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultMarkdownConfig(), 80)
}

// OptionsFromConfig builds options from the markdown section of the config.
// GLAMOUR_STYLE overrides the configured style.
func OptionsFromConfig(md config.MarkdownConfig, width int) Options {
	opts := Options{
		Enabled:          md.Enabled,
		Width:            width,
		Style:            md.Style,
		EnableEmoji:      md.EnableEmoji,
		PreserveNewLines: md.PreserveNewLines,
		TableWrap:        md.TableWrap,
		InlineTableLinks: md.InlineTableLinks,
	}
	if opts.Style == "" {
		opts.Style = "dark"
	}
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}
	return opts
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// withStyle returns Options with the specified style.
func (o Options) withStyle(style string) Options {
	o.Style = style
	return o
}

// WithMarkdown returns Options with glamour rendering switched on or off
func (o Options) WithMarkdown(enabled bool) Options {
	o.Enabled = enabled
	return o
}
