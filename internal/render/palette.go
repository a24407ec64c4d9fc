package render

import "github.com/charmbracelet/lipgloss"

// Palette is the color scheme used by the terminal chat and the CLI
type Palette struct {
	Name        string
	Description string

	Surface lipgloss.Color
	Border  lipgloss.Color

	// User and Bot color the sender labels in the transcript
	User lipgloss.Color
	Bot  lipgloss.Color

	Accent  lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color
}

// DefaultPaletteName is used when the configured name is unknown
const DefaultPaletteName = "tokyonight"

var palettes = []Palette{
	{
		Name:        "tokyonight",
		Description: "Tokyo Night - Dark theme with blue accents",
		Surface:     "#24283b",
		Border:      "#414868",
		User:        "#7aa2f7",
		Bot:         "#9ece6a",
		Accent:      "#bb9af7",
		Warning:     "#e0af68",
		Error:       "#f7768e",
		Text:        "#c0caf5",
		TextDim:     "#565f89",
	},
	{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - Warm dark theme with pastel colors",
		Surface:     "#313244",
		Border:      "#45475a",
		User:        "#89b4fa",
		Bot:         "#a6e3a1",
		Accent:      "#cba6f7",
		Warning:     "#f9e2af",
		Error:       "#f38ba8",
		Text:        "#cdd6f4",
		TextDim:     "#6c7086",
	},
	{
		Name:        "nord",
		Description: "Nord - Arctic-inspired theme with cool tones",
		Surface:     "#3b4252",
		Border:      "#4c566a",
		User:        "#88c0d0",
		Bot:         "#a3be8c",
		Accent:      "#b48ead",
		Warning:     "#ebcb8b",
		Error:       "#bf616a",
		Text:        "#eceff4",
		TextDim:     "#7b88a1",
	},
	{
		Name:        "dracula",
		Description: "Dracula - Dark theme with vibrant colors",
		Surface:     "#44475a",
		Border:      "#6272a4",
		User:        "#8be9fd",
		Bot:         "#50fa7b",
		Accent:      "#ff79c6",
		Warning:     "#f1fa8c",
		Error:       "#ff5555",
		Text:        "#f8f8f2",
		TextDim:     "#6272a4",
	},
}

// PaletteByName looks a palette up by name
func PaletteByName(name string) (Palette, bool) {
	for _, p := range palettes {
		if p.Name == name {
			return p, true
		}
	}
	return Palette{}, false
}

// ResolvePalette returns the named palette or the default one
func ResolvePalette(name string) Palette {
	if p, ok := PaletteByName(name); ok {
		return p
	}
	p, _ := PaletteByName(DefaultPaletteName)
	return p
}

// Palettes returns a copy of every built-in palette
func Palettes() []Palette {
	return append([]Palette(nil), palettes...)
}

// PaletteNames lists palette names in display order
func PaletteNames() []string {
	names := make([]string, len(palettes))
	for i, p := range palettes {
		names[i] = p.Name
	}
	return names
}
