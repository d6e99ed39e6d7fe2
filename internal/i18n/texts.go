package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// DefaultLanguage is used when a user has no stored preference or the
// preferred table misses a key.
const DefaultLanguage = "uk"

// Translator holds all UI strings, loaded once at startup and immutable
// afterwards. Lookups never touch the filesystem.
type Translator struct {
	tables map[string]map[string]string
}

// Load builds the translator from the embedded locale files. Each
// locales/<lang>.yaml file becomes one flat key/value table.
func Load() (*Translator, error) {
	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: read locales: %w", err)
	}

	tables := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		lang := strings.TrimSuffix(name, path.Ext(name))

		raw, err := localeFS.ReadFile("locales/" + name)
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", name, err)
		}
		table := make(map[string]string)
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", name, err)
		}
		tables[lang] = table
	}

	if _, ok := tables[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("i18n: default language %q missing", DefaultLanguage)
	}
	return &Translator{tables: tables}, nil
}

// T resolves a key for the given language, falling back to the default
// language and finally to the key itself so a missing string is visible in
// chat instead of crashing.
func (t *Translator) T(lang, key string) string {
	if table, ok := t.tables[lang]; ok {
		if value, ok := table[key]; ok {
			return value
		}
	}
	if value, ok := t.tables[DefaultLanguage][key]; ok {
		return value
	}
	return key
}

// Languages lists available language codes, sorted.
func (t *Translator) Languages() []string {
	langs := make([]string, 0, len(t.tables))
	for lang := range t.tables {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Has reports whether the language has its own table.
func (t *Translator) Has(lang string) bool {
	_, ok := t.tables[lang]
	return ok
}
