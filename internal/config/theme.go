package config

import "github.com/samber/lo"

const (
	ThemeSystem       = "system"
	ThemeLight        = "light"
	ThemeDark         = "dark"
	ThemeHighContrast = "highcontrast"
)

// Themes lists the accepted theme preference values.
var Themes = []string{ThemeSystem, ThemeLight, ThemeDark, ThemeHighContrast}

// IsTheme reports whether value is an accepted theme preference.
func IsTheme(value string) bool {
	return lo.Contains(Themes, value)
}

// Stylesheet maps a theme preference to the frontend stylesheet path.
// The system theme follows the window colour scheme, high contrast first.
func Stylesheet(theme string, prefersDark, highContrast bool) string {
	switch theme {
	case ThemeLight:
		return "css/light.css"
	case ThemeDark:
		return "css/dark.css"
	case ThemeHighContrast:
		return "css/highcontrast.css"
	}

	if highContrast {
		return "css/highcontrast.css"
	}
	if prefersDark {
		return "css/dark.css"
	}
	return "css/light.css"
}
