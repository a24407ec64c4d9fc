package models

import "strings"

// ProfileDraft is the business profile being filled in before the first turn
type ProfileDraft struct {
	Industry string
	Budget   string
	Currency string // ISO code or glyph; empty means the locale default
	Tone     string
}

// Valid reports whether the draft can be submitted
func (p ProfileDraft) Valid() bool {
	return strings.TrimSpace(p.Industry) != "" &&
		strings.TrimSpace(p.Budget) != "" &&
		strings.TrimSpace(p.Tone) != ""
}
