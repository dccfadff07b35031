package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"xliff-manager/internal/domain"
)

// ErrUnknownTheme is returned by Save for a theme outside Themes.
var ErrUnknownTheme = errors.New("unknown theme")

// Store defines persistence operations for user preferences.
type Store interface {
	Load() (domain.Preferences, error)
	Save(domain.Preferences) error
}

// JSONStore persists preferences in a single JSON file on disk.
type JSONStore struct {
	path     string
	defaults domain.Preferences
}

// NewJSONStore creates a JSON-backed preferences store.
func NewJSONStore(path string, defaults domain.Preferences) *JSONStore {
	return &JSONStore{path: path, defaults: defaults}
}

// Defaults returns the record used for first launch and empty fields.
func (s *JSONStore) Defaults() domain.Preferences {
	return s.defaults
}

// Load reads preferences, writing the defaults first when the file is missing.
func (s *JSONStore) Load() (domain.Preferences, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return domain.Preferences{}, err
		}
		if err := s.Save(s.defaults); err != nil {
			return domain.Preferences{}, fmt.Errorf("create defaults: %w", err)
		}
		return Normalize(s.defaults, s.defaults), nil
	}

	var prefs domain.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return domain.Preferences{}, err
	}

	return Normalize(prefs, s.defaults), nil
}

// Save normalizes preferences and writes them as indented JSON.
// Theme names are case-sensitive; an unknown theme leaves the file untouched.
func (s *JSONStore) Save(prefs domain.Preferences) error {
	if theme := strings.TrimSpace(prefs.Theme); theme != "" && !IsTheme(theme) {
		return fmt.Errorf("%w %q", ErrUnknownTheme, prefs.Theme)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(Normalize(prefs, s.defaults), "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}

// Normalize trims values and fills empty fields from defaults. An unknown
// theme in a hand-edited file reads as ThemeSystem.
func Normalize(prefs, defaults domain.Preferences) domain.Preferences {
	fill := func(value, fallback string) string {
		value = strings.TrimSpace(value)
		if value == "" {
			return fallback
		}
		return value
	}

	prefs.SrcLang = fill(prefs.SrcLang, defaults.SrcLang)
	prefs.TgtLang = fill(prefs.TgtLang, defaults.TgtLang)
	prefs.Skeleton = fill(prefs.Skeleton, defaults.Skeleton)
	prefs.Catalog = fill(prefs.Catalog, defaults.Catalog)
	prefs.SRX = fill(prefs.SRX, defaults.SRX)
	prefs.AppLang = fill(prefs.AppLang, defaults.AppLang)
	prefs.Theme = fill(prefs.Theme, defaults.Theme)
	if !IsTheme(prefs.Theme) {
		prefs.Theme = ThemeSystem
	}
	return prefs
}
