package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// Fallback is used for unknown languages and missing keys.
const Fallback = "en"

// Catalog holds UI strings per language, grouped by section.
type Catalog struct {
	messages map[string]map[string]map[string]string
}

// Load parses the embedded locale files.
func Load() (*Catalog, error) {
	entries, err := localeFiles.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	catalog := &Catalog{messages: make(map[string]map[string]map[string]string)}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		data, err := localeFiles.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		var sections map[string]map[string]string
		if err := yaml.Unmarshal(data, &sections); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		catalog.messages[strings.TrimSuffix(entry.Name(), ".yaml")] = sections
	}

	if _, ok := catalog.messages[Fallback]; !ok {
		return nil, fmt.Errorf("missing %s locale", Fallback)
	}
	return catalog, nil
}

// MustLoad is Load for package-level initialization in tests and tools.
func MustLoad() *Catalog {
	catalog, err := Load()
	if err != nil {
		panic(err)
	}
	return catalog
}

// Languages lists available language codes in sorted order.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.messages))
	for lang := range c.messages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether lang has its own catalog.
func (c *Catalog) Supports(lang string) bool {
	_, ok := c.messages[lang]
	return ok
}

// Localizer resolves strings for one language.
func (c *Catalog) Localizer(lang string) Localizer {
	if !c.Supports(lang) {
		lang = Fallback
	}
	return Localizer{catalog: c, lang: lang}
}

// Localizer looks up strings for a fixed language with English fallback.
type Localizer struct {
	catalog *Catalog
	lang    string
}

// Lang returns the resolved language code.
func (l Localizer) Lang() string {
	return l.lang
}

// Get returns the string for section.key; the key itself when missing everywhere.
func (l Localizer) Get(section, key string) string {
	if l.catalog == nil {
		return key
	}
	if value, ok := lookup(l.catalog.messages[l.lang], section, key); ok {
		return value
	}
	if value, ok := lookup(l.catalog.messages[Fallback], section, key); ok {
		return value
	}
	return key
}

// Format applies fmt.Sprintf to the resolved string.
func (l Localizer) Format(section, key string, args ...any) string {
	return fmt.Sprintf(l.Get(section, key), args...)
}

func lookup(sections map[string]map[string]string, section, key string) (string, bool) {
	if sections == nil {
		return "", false
	}
	value, ok := sections[section][key]
	return value, ok && value != ""
}
