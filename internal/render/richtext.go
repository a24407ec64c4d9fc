// Package render turns transcript entries into display markup for the
// browser widget and the terminal.
package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/ideagen/internal/models"
)

// boldPattern matches the shortest **X** span on a single line
var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// RichText converts bold markers and line breaks into HTML.
// Nothing else is recognized or escaped.
func RichText(text string) string {
	out := boldPattern.ReplaceAllString(text, "<b>$1</b>")
	return strings.ReplaceAll(out, "\n", "<br />")
}

// Entry renders one transcript entry as an HTML block styled by sender.
// Text is HTML-escaped before the rich-text substitutions run, which
// leaves bold markers and line breaks untouched.
func Entry(entry models.ChatEntry) string {
	body := html.EscapeString(entry.Text)
	if entry.IsRichText {
		body = RichText(body)
	}
	return fmt.Sprintf(`<div class="message %s">%s</div>`, entry.Sender, body)
}

// Transcript renders every entry in order
func Transcript(entries []models.ChatEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(Entry(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

var boldStyle = lipgloss.NewStyle().Bold(true)

// Terminal applies the same two substitutions for a terminal: bold spans
// are emboldened and line breaks kept. Width > 0 wraps the result.
func Terminal(text string, width int) string {
	out := boldPattern.ReplaceAllStringFunc(text, func(m string) string {
		return boldStyle.Render(boldPattern.FindStringSubmatch(m)[1])
	})
	if width > 0 {
		out = lipgloss.NewStyle().Width(width).Render(out)
	}
	return out
}

// Reply renders a bot reply for the terminal. With markdown enabled the
// text goes through glamour, falling back to Terminal if that fails.
func Reply(text string, opts Options) string {
	if opts.Enabled {
		if out, err := Markdown(text, opts); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return Terminal(text, opts.Width)
}
