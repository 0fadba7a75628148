package wiki

import (
	"errors"
	"net/url"
	"strings"
)

// errNotDocumentView marks a URL that does not address the document view at
// all, as opposed to one that addresses it but resolves to nothing.
var errNotDocumentView = errors.New("url does not address the document view")

// docComponents are the pieces of a document-view URL, /<locale>/kb/<slug>.
type docComponents struct {
	Locale string
	Path   string
	Slug   string
}

// docComponentsFromURL extracts (locale, path, slug) from a URL addressing
// the document view. It returns (nil, nil) for URLs that cannot match (host
// component with checkHost set, locale mismatch) and errNotDocumentView for
// paths pointing at some other view.
func docComponentsFromURL(rawURL, requiredLocale string, checkHost bool) (*docComponents, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil
	}
	// A URL with a host is a needlessly verbose way to address an internal
	// document, so assume it points elsewhere unless told otherwise.
	if checkHost && parsed.Host != "" {
		return nil, nil
	}

	locale, rest := splitLocalePath(parsed.Path)
	if requiredLocale != "" && locale != requiredLocale {
		return nil, nil
	}

	slug, ok := documentViewSlug(rest)
	if !ok {
		return nil, errNotDocumentView
	}

	return &docComponents{Locale: locale, Path: "/" + rest, Slug: slug}, nil
}

// PointsToDocumentView reports whether a URL addresses the document view.
func PointsToDocumentView(rawURL, requiredLocale string) bool {
	components, err := docComponentsFromURL(rawURL, requiredLocale, true)
	return err == nil && components != nil
}

// splitLocalePath splits "/en-US/kb/slug" into ("en-US", "kb/slug").
func splitLocalePath(path string) (locale, rest string) {
	path = strings.TrimPrefix(path, "/")
	locale, rest, _ = strings.Cut(path, "/")
	return locale, rest
}

// documentViewSlug extracts the slug from a locale-stripped document-view
// path, "kb/<slug>".
func documentViewSlug(rest string) (string, bool) {
	slug, found := strings.CutPrefix(rest, "kb/")
	if !found || slug == "" || strings.Contains(slug, "/") {
		return "", false
	}
	return slug, true
}
