package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locales.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadLocalesMissingFileUsesDefaults(t *testing.T) {
	locales, err := LoadLocales(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if locales.Default != "en-US" {
		t.Errorf("default = %q, want en-US", locales.Default)
	}
	if !locales.IsSupported("de") {
		t.Error("built-in defaults should support de")
	}
}

func TestLoadLocales(t *testing.T) {
	path := writeManifest(t, `
default: en-US
supported:
  - code: en-US
    name: English
  - code: pt-BR
    name: Português
    fallback: en-US
  - code: nl
`)
	locales, err := LoadLocales(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !locales.IsSupported("pt-BR") {
		t.Error("pt-BR should be supported")
	}
	if locales.IsSupported("fr") {
		t.Error("fr is not in the manifest")
	}
	if got := locales.FallbackFor("pt-BR"); got != "en-US" {
		t.Errorf("fallback for pt-BR = %q, want en-US", got)
	}
	if got := locales.FallbackFor("nl"); got != "en-US" {
		t.Errorf("fallback for nl = %q, want the default locale", got)
	}
}

func TestLoadLocalesValidation(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"missing default", "supported:\n  - code: en-US\n"},
		{"default not supported", "default: en-US\nsupported:\n  - code: de\n"},
		{"bad locale code", "default: en-US\nsupported:\n  - code: en-US\n  - code: not a locale\n"},
		{"unknown fallback", "default: en-US\nsupported:\n  - code: en-US\n  - code: de\n    fallback: sv\n"},
		{"broken yaml", "default: [en-US\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, tt.manifest)
			if _, err := LoadLocales(path); err == nil {
				t.Error("want an error")
			}
		})
	}
}
