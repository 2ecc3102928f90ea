// Package localization provides the user-facing strings of the bot.
// Bundles are JSON files embedded at build time, one per language code.
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
)

//go:embed locales/*.json
var localeFS embed.FS

// Localizer holds the translations for the application.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer loads every embedded bundle.
func NewLocalizer() (*Localizer, error) {
	l := &Localizer{translations: make(map[string]map[string]string)}

	files, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded locales: %w", err)
	}
	for _, file := range files {
		lang := strings.TrimSuffix(file.Name(), ".json")
		data, err := localeFS.ReadFile(path.Join("locales", file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", file.Name(), err)
		}
		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", file.Name(), err)
		}
		l.translations[lang] = translations
	}
	return l, nil
}

// GetString returns the localized string for a key. Unknown languages
// fall back to English; an unknown key falls back to the key itself so
// a missing translation is visible instead of silent.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if langTranslations, ok := l.translations[lang]; ok {
		if value, ok := langTranslations[key]; ok {
			return value
		}
	}
	if lang != "en" {
		if enTranslations, ok := l.translations["en"]; ok {
			if value, ok := enTranslations[key]; ok {
				return value
			}
		}
	}
	return key
}

// GetStringf localizes a key and applies fmt arguments to it.
func (l *Localizer) GetStringf(lang, key string, args ...interface{}) string {
	return fmt.Sprintf(l.GetString(lang, key), args...)
}

// Languages lists the loaded language codes.
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	langs := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		langs = append(langs, lang)
	}
	return langs
}
