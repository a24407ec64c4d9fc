// Package profile turns a business profile into the first prompt of a session.
package profile

import (
	"os"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FallbackGlyph is used whenever the locale cannot tell us anything
const FallbackGlyph = "$"

// Supported ISO codes offered by the currency selector, in display order
var SupportedCodes = []string{"USD", "EUR", "INR", "GBP", "JPY"}

var glyphs = map[string]string{
	"USD": "$",
	"EUR": "€",
	"INR": "₹",
	"GBP": "£",
	"JPY": "¥",
}

// Glyph maps a supported ISO code to its symbol.
// Unmapped codes are returned unchanged.
func Glyph(code string) string {
	code = strings.TrimSpace(code)
	if g, ok := glyphs[strings.ToUpper(code)]; ok {
		return g
	}
	return code
}

// ResolveCurrency returns the glyph for an explicit code, or the locale default when code is empty
func ResolveCurrency(code string) string {
	if strings.TrimSpace(code) == "" {
		return LocaleCurrency(HostLocale())
	}
	return Glyph(code)
}

// HostLocale reads the host locale the way POSIX does: LC_ALL, LC_MONETARY, LANG
func HostLocale() string {
	for _, env := range []string{"LC_ALL", "LC_MONETARY", "LANG"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

// LocaleCode returns the ISO currency code for a locale, or "" if unknown
func LocaleCode(locale string) string {
	tag, ok := parseLocale(locale)
	if !ok {
		return ""
	}
	unit, conf := currency.FromTag(tag)
	if conf == language.No {
		return ""
	}
	return unit.String()
}

// LocaleCurrency derives a currency glyph from a POSIX or BCP 47 locale.
// It never fails; anything unresolvable yields FallbackGlyph.
func LocaleCurrency(locale string) (glyph string) {
	defer func() {
		if recover() != nil {
			glyph = FallbackGlyph
		}
	}()

	tag, ok := parseLocale(locale)
	if !ok {
		return FallbackGlyph
	}

	unit, conf := currency.FromTag(tag)
	if conf == language.No {
		return FallbackGlyph
	}

	if g, ok := glyphs[unit.String()]; ok {
		return g
	}

	// Ask x/text for the narrow symbol in the locale's own language
	symbol := strings.TrimSpace(message.NewPrinter(tag).Sprint(currency.NarrowSymbol(unit)))
	if symbol == "" {
		return FallbackGlyph
	}
	return symbol
}

// parseLocale accepts "en_US.UTF-8", "de-DE", "ja_JP" and friends
func parseLocale(locale string) (language.Tag, bool) {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	if locale == "" || locale == "C" || locale == "POSIX" {
		return language.Und, false
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}
