package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/ideagen/internal/config"
	"github.com/diogo/ideagen/internal/models"
)

func TestRichText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold and break", "**Idea**\nLine2", "<b>Idea</b><br />Line2"},
		{"non-greedy", "**a** and **b**", "<b>a</b> and <b>b</b>"},
		{"empty bold", "****", "<b></b>"},
		{"unpaired marker", "**open only", "**open only"},
		{"bold does not cross lines", "**a\nb**", "**a<br />b**"},
		{"crlf keeps the carriage return", "a\r\nb", "a\r<br />b"},
		{"single asterisks untouched", "*a* b", "*a* b"},
		{"html passes through", "<i>x</i>", "<i>x</i>"},
		{"plain", "hello", "hello"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RichText(tt.in); got != tt.want {
				t.Errorf("RichText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRichText_Idempotent(t *testing.T) {
	in := "**Brand Names:**\n- **Bean** There"
	first := RichText(in)
	if second := RichText(in); first != second {
		t.Errorf("rendering twice differs: %q vs %q", first, second)
	}
}

func TestEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry models.ChatEntry
		want  string
	}{
		{
			name:  "rich bot reply",
			entry: models.BotEntry("**Idea**\nLine2", true),
			want:  `<div class="message bot"><b>Idea</b><br />Line2</div>`,
		},
		{
			name:  "user text is not transformed",
			entry: models.UserEntry("**not bold**"),
			want:  `<div class="message user">**not bold**</div>`,
		},
		{
			name:  "markup is escaped",
			entry: models.BotEntry("<script>x</script> **ok**", true),
			want:  `<div class="message bot">&lt;script&gt;x&lt;/script&gt; <b>ok</b></div>`,
		},
		{
			name:  "fallback is plain",
			entry: models.BotEntry(models.FallbackText, false),
			want:  `<div class="message bot">` + models.FallbackText + `</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Entry(tt.entry); got != tt.want {
				t.Errorf("Entry() = %q, want %q", got, tt.want)
			}
			if again := Entry(tt.entry); again != tt.want {
				t.Error("Entry() should be deterministic")
			}
		})
	}
}

func TestTranscript(t *testing.T) {
	entries := []models.ChatEntry{
		models.BotEntry(models.GreetingText, false),
		models.UserEntry("hi"),
		models.BotEntry("**x**", true),
	}

	out := Transcript(entries)
	if strings.Count(out, `<div class="message`) != 3 {
		t.Fatalf("expected 3 blocks, got %q", out)
	}
	if strings.Index(out, "hi") > strings.Index(out, "<b>x</b>") {
		t.Error("entries should keep insertion order")
	}
}

func TestTerminal(t *testing.T) {
	out := Terminal("**Idea**\nLine2", 0)
	if strings.Contains(out, "**") {
		t.Errorf("bold markers should be consumed, got %q", out)
	}
	if !strings.Contains(out, "\n") || !strings.Contains(out, "Line2") {
		t.Errorf("line break should be preserved, got %q", out)
	}
	if !strings.Contains(out, lipgloss.NewStyle().Bold(true).Render("Idea")) {
		t.Errorf("expected bold span, got %q", out)
	}

	wrapped := Terminal(strings.Repeat("word ", 40), 20)
	for _, line := range strings.Split(wrapped, "\n") {
		if lipgloss.Width(line) > 20 {
			t.Errorf("line wider than 20 columns: %q", line)
		}
	}
}

func TestReply(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")
	defer clearCache()

	plain := Reply("**Idea**", DefaultOptions().WithWidth(0))
	if strings.Contains(plain, "**") {
		t.Errorf("plain reply kept markers: %q", plain)
	}

	md := Reply("# Title\n\n**Idea**", DefaultOptions().WithMarkdown(true).withStyle("dark"))
	if !strings.Contains(md, "Title") || strings.Contains(md, "**") {
		t.Errorf("markdown reply = %q", md)
	}

	// broken style falls back to the terminal transform
	bad := Reply("**Idea**", DefaultOptions().WithMarkdown(true).withStyle("no_such_style_path"))
	if !strings.Contains(bad, "Idea") || strings.Contains(bad, "**") {
		t.Errorf("fallback reply = %q", bad)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	md := config.DefaultMarkdownConfig()
	md.Enabled = true
	md.Style = "light"
	md.EnableEmoji = false

	opts := OptionsFromConfig(md, 72)
	if !opts.Enabled || opts.Width != 72 || opts.Style != "light" || opts.EnableEmoji {
		t.Errorf("unexpected options %+v", opts)
	}

	md.Style = ""
	if got := OptionsFromConfig(md, 0).Style; got != "dark" {
		t.Errorf("empty style should default to dark, got %q", got)
	}

	t.Setenv("GLAMOUR_STYLE", "dracula")
	if got := OptionsFromConfig(md, 0).Style; got != "dracula" {
		t.Errorf("GLAMOUR_STYLE should win, got %q", got)
	}
}

func TestDefaultOptions(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")
	opts := DefaultOptions()

	if opts.Enabled {
		t.Error("markdown should be off by default")
	}
	if opts.Width != 80 || opts.Style != "dark" {
		t.Errorf("unexpected defaults %+v", opts)
	}
	if !opts.EnableEmoji || !opts.PreserveNewLines || !opts.TableWrap || opts.InlineTableLinks {
		t.Errorf("unexpected flag defaults %+v", opts)
	}
}
