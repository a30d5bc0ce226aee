// Package theme provides the light and dark palettes used by the dashboard.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Name selects a theme.
type Name string

const (
	Light Name = "light"
	Dark  Name = "dark"
	Auto  Name = "auto"
)

// Theme is a set of terminal colors. Background is the chart surface.
type Theme struct {
	Name Name

	Background lipgloss.Color
	Base       lipgloss.Color
	Surface0   lipgloss.Color
	Surface1   lipgloss.Color
	Overlay    lipgloss.Color
	Text       lipgloss.Color
	Subtext    lipgloss.Color
	Primary    lipgloss.Color
	Lavender   lipgloss.Color
	Red        lipgloss.Color
	Green      lipgloss.Color
	Yellow     lipgloss.Color
}

// LightTheme is the light palette with the #e6f0ff chart surface.
func LightTheme() Theme {
	return Theme{
		Name:       Light,
		Background: lipgloss.Color("#e6f0ff"),
		Base:       lipgloss.Color("#eff1f5"),
		Surface0:   lipgloss.Color("#ccd0da"),
		Surface1:   lipgloss.Color("#bcc0cc"),
		Overlay:    lipgloss.Color("#8c8fa1"),
		Text:       lipgloss.Color("#1a1a1a"),
		Subtext:    lipgloss.Color("#5c5f77"),
		Primary:    lipgloss.Color("#1e66f5"),
		Lavender:   lipgloss.Color("#7287fd"),
		Red:        lipgloss.Color("#d20f39"),
		Green:      lipgloss.Color("#40a02b"),
		Yellow:     lipgloss.Color("#df8e1d"),
	}
}

// DarkTheme is the dark palette with the #3c3f41 chart surface.
func DarkTheme() Theme {
	return Theme{
		Name:       Dark,
		Background: lipgloss.Color("#3c3f41"),
		Base:       lipgloss.Color("#1e1e2e"),
		Surface0:   lipgloss.Color("#313244"),
		Surface1:   lipgloss.Color("#45475a"),
		Overlay:    lipgloss.Color("#6c7086"),
		Text:       lipgloss.Color("#cdd6f4"),
		Subtext:    lipgloss.Color("#a6adc8"),
		Primary:    lipgloss.Color("#89b4fa"),
		Lavender:   lipgloss.Color("#b4befe"),
		Red:        lipgloss.Color("#f38ba8"),
		Green:      lipgloss.Color("#a6e3a1"),
		Yellow:     lipgloss.Color("#f9e2af"),
	}
}

// hasDarkBackground is swapped in tests.
var hasDarkBackground = termenv.HasDarkBackground

// Resolve returns the theme for name. Auto asks the terminal for its
// background; unknown names fall back to Auto.
func Resolve(name string) Theme {
	switch Name(strings.ToLower(strings.TrimSpace(name))) {
	case Light:
		return LightTheme()
	case Dark:
		return DarkTheme()
	}
	if hasDarkBackground() {
		return DarkTheme()
	}
	return LightTheme()
}

// WithBackground overrides the chart surface when hex is non-empty.
func (t Theme) WithBackground(hex string) Theme {
	if hex != "" {
		t.Background = lipgloss.Color(hex)
	}
	return t
}

// ResolveWithBackgrounds resolves name and applies the chart surface
// configured for the resulting palette.
func ResolveWithBackgrounds(name, light, dark string) Theme {
	t := Resolve(name)
	if t.Name == Light {
		return t.WithBackground(light)
	}
	return t.WithBackground(dark)
}
