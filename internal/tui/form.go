package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/diogo/ideagen/internal/models"
	"github.com/diogo/ideagen/internal/profile"
)

// currencyOptions lists the locale default first, then every supported code
func currencyOptions() []huh.Option[string] {
	opts := []huh.Option[string]{
		huh.NewOption(fmt.Sprintf("Local default (%s)", profile.ResolveCurrency("")), ""),
	}
	for _, code := range profile.SupportedCodes {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", code, profile.Glyph(code)), code))
	}
	return opts
}

// newProfileForm binds a huh form to draft. Fields are not validated here:
// an incomplete draft is rejected by the collector and the form reopens.
func newProfileForm(draft *models.ProfileDraft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Industry").
				Placeholder("e.g. coffee shop").
				Value(&draft.Industry),
			huh.NewInput().
				Title("Budget").
				Placeholder("e.g. 5000").
				Value(&draft.Budget),
			huh.NewSelect[string]().
				Title("Currency").
				Options(currencyOptions()...).
				Value(&draft.Currency),
			huh.NewInput().
				Title("Tone").
				Placeholder("e.g. funny, professional").
				Value(&draft.Tone),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}
