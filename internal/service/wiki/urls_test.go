package wiki

import (
	"errors"
	"testing"
)

func TestDocComponentsFromURL(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		requiredLocale string
		checkHost      bool
		wantLocale     string
		wantSlug       string
		wantNil        bool
		wantNotView    bool
	}{
		{
			name:       "plain document view",
			url:        "/en-US/kb/installation",
			wantLocale: "en-US",
			wantSlug:   "installation",
		},
		{
			name:       "other locale",
			url:        "/de/kb/installation",
			wantLocale: "de",
			wantSlug:   "installation",
		},
		{
			name:           "required locale matches",
			url:            "/de/kb/installation",
			requiredLocale: "de",
			wantLocale:     "de",
			wantSlug:       "installation",
		},
		{
			name:           "required locale mismatch",
			url:            "/de/kb/installation",
			requiredLocale: "en-US",
			wantNil:        true,
		},
		{
			name:      "host with checkHost",
			url:       "https://example.com/en-US/kb/installation",
			checkHost: true,
			wantNil:   true,
		},
		{
			name:       "host without checkHost",
			url:        "https://example.com/en-US/kb/installation",
			wantLocale: "en-US",
			wantSlug:   "installation",
		},
		{
			name:        "search view",
			url:         "/en-US/search",
			wantNotView: true,
		},
		{
			name:        "kb listing without slug",
			url:         "/en-US/kb/",
			wantNotView: true,
		},
		{
			name:        "nested path after slug",
			url:         "/en-US/kb/installation/history",
			wantNotView: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			components, err := docComponentsFromURL(tt.url, tt.requiredLocale, tt.checkHost)
			if tt.wantNotView {
				if !errors.Is(err, errNotDocumentView) {
					t.Fatalf("err = %v, want errNotDocumentView", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if tt.wantNil {
				if components != nil {
					t.Fatalf("components = %+v, want nil", components)
				}
				return
			}
			if components == nil {
				t.Fatal("components = nil, want a match")
			}
			if components.Locale != tt.wantLocale {
				t.Errorf("locale = %q, want %q", components.Locale, tt.wantLocale)
			}
			if components.Slug != tt.wantSlug {
				t.Errorf("slug = %q, want %q", components.Slug, tt.wantSlug)
			}
		})
	}
}

func TestPointsToDocumentView(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"/en-US/kb/installation", true},
		{"/en-US/search", false},
		{"https://example.com/en-US/kb/installation", false},
	}
	for _, tt := range tests {
		if got := PointsToDocumentView(tt.url, ""); got != tt.want {
			t.Errorf("PointsToDocumentView(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
