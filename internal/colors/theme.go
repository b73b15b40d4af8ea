package colors

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownTheme is returned for theme names outside the built-in table.
var ErrUnknownTheme = errors.New("invalid theme")

// Theme is a named board color preset.
type Theme struct {
	Name  string
	Dark  string
	Light string
}

const defaultThemeName = "green"

var themes = []Theme{
	{Name: "blue", Dark: "#4b648a", Light: "#d0dff4"},
	{Name: "green", Dark: "#769656", Light: "#eeeed2"},
	{Name: "gruvbox", Dark: "#282828", Light: "#ebdbb2"},
	{Name: "nord", Dark: "#3b4252", Light: "#d8dee9"},
}

// Themes returns the built-in themes in display order.
func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// DefaultTheme returns the theme new sessions start with.
func DefaultTheme() Theme {
	theme, _ := LookupTheme(defaultThemeName)
	return theme
}

// LookupTheme resolves a theme by case-insensitive name.
func LookupTheme(name string) (Theme, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, theme := range themes {
		if theme.Name == key {
			return theme, nil
		}
	}
	return Theme{}, ErrUnknownTheme
}

// Label returns the display name, e.g. "Gruvbox".
func (t Theme) Label() string {
	return cases.Title(language.English).String(t.Name)
}

// Pair validates the theme colors.
func (t Theme) Pair() (Pair, error) {
	return Validate(t.Dark, t.Light)
}
