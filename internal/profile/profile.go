package profile

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/diogo/ideagen/internal/chat"
	"github.com/diogo/ideagen/internal/models"
)

// FormatBudget puts the currency in front of the figure for symbols
// and after it for plain codes ("¥5000", "5000 CHF").
func FormatBudget(budget, glyph string) string {
	budget = strings.TrimSpace(budget)
	glyph = strings.TrimSpace(glyph)
	if glyph == "" || strings.HasPrefix(budget, glyph) || strings.HasSuffix(budget, glyph) {
		return budget
	}
	if isCode(glyph) {
		return budget + " " + glyph
	}
	return glyph + budget
}

func isCode(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return len(s) > 1
}

// Synthesize builds the single sentence sent as the first user turn
func Synthesize(draft models.ProfileDraft) string {
	budget := FormatBudget(draft.Budget, ResolveCurrency(draft.Currency))
	return fmt.Sprintf("I am in the %s industry with a budget of %s and I want a %s tone.",
		strings.TrimSpace(draft.Industry), budget, strings.TrimSpace(draft.Tone))
}

// Collector submits a profile draft into a chat session
type Collector struct {
	session *chat.Session
}

// NewCollector creates a collector bound to a session
func NewCollector(session *chat.Session) *Collector {
	return &Collector{session: session}
}

// Submit validates the draft and, if valid, starts the conversation with it.
// Invalid drafts, repeated submissions and submissions while a turn is in
// flight change nothing and return false. Submit blocks until the reply
// (or the fallback) is in the transcript.
func (c *Collector) Submit(ctx context.Context, draft models.ProfileDraft) bool {
	if !draft.Valid() {
		return false
	}
	return c.session.Send(ctx, chat.OriginProfile, Synthesize(draft)) == nil
}

// Start is Submit without waiting for the reply
func (c *Collector) Start(ctx context.Context, draft models.ProfileDraft) bool {
	if !draft.Valid() {
		return false
	}
	return c.session.Start(ctx, chat.OriginProfile, Synthesize(draft)) == nil
}
