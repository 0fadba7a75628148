package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Locales is the locale manifest: the default (canonical) locale documents
// are authored in, plus every locale translations may exist in.
type Locales struct {
	Default   string   `yaml:"default"`
	Supported []Locale `yaml:"supported"`
}

// Locale describes one supported locale.
type Locale struct {
	Code string `yaml:"code"`
	Name string `yaml:"name,omitempty"`
	// Fallback names the locale to serve when no translation exists.
	// Empty means the default locale.
	Fallback string `yaml:"fallback,omitempty"`
}

// DefaultLocales returns the manifest used when no file is configured.
func DefaultLocales() *Locales {
	return &Locales{
		Default: "en-US",
		Supported: []Locale{
			{Code: "en-US", Name: "English"},
			{Code: "de", Name: "Deutsch"},
			{Code: "es", Name: "Español"},
			{Code: "fr", Name: "Français"},
		},
	}
}

// LoadLocales reads and validates a YAML locale manifest. A missing file
// yields the built-in defaults.
func LoadLocales(path string) (*Locales, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultLocales(), nil
		}
		return nil, fmt.Errorf("read locales manifest: %w", err)
	}

	var locales Locales
	if err := yaml.Unmarshal(data, &locales); err != nil {
		return nil, fmt.Errorf("parse locales manifest: %w", err)
	}
	if err := locales.validate(); err != nil {
		return nil, fmt.Errorf("locales manifest %s: %w", path, err)
	}
	return &locales, nil
}

func (l *Locales) validate() error {
	if l.Default == "" {
		return errors.New("default locale is required")
	}
	if _, err := language.Parse(l.Default); err != nil {
		return fmt.Errorf("default locale %q: %w", l.Default, err)
	}
	if !l.IsSupported(l.Default) {
		return fmt.Errorf("default locale %q is not listed as supported", l.Default)
	}
	for _, loc := range l.Supported {
		if _, err := language.Parse(loc.Code); err != nil {
			return fmt.Errorf("locale %q: %w", loc.Code, err)
		}
		if loc.Fallback != "" && !l.IsSupported(loc.Fallback) {
			return fmt.Errorf("locale %q: fallback %q is not supported", loc.Code, loc.Fallback)
		}
	}
	return nil
}

// IsSupported reports whether the locale code is in the manifest.
func (l *Locales) IsSupported(code string) bool {
	for _, loc := range l.Supported {
		if loc.Code == code {
			return true
		}
	}
	return false
}

// FallbackFor returns the locale to serve when no translation exists in the
// given locale.
func (l *Locales) FallbackFor(code string) string {
	for _, loc := range l.Supported {
		if loc.Code == code && loc.Fallback != "" {
			return loc.Fallback
		}
	}
	return l.Default
}
