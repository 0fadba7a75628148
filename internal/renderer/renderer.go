// Package renderer turns wiki markup into sanitized HTML. It understands
// standard Markdown plus [[Document Title]] internal links, and reports the
// internal links it saw so callers can maintain the link graph.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	wikiSvc "github.com/Haizul/kitsune/internal/domain/services/wiki"
)

// LinkKindLink marks an ordinary [[...]] content link.
const LinkKindLink = "link"

// wikiLinkPattern matches [[Target]] and [[Target|Label]].
var wikiLinkPattern = regexp.MustCompile(`\[\[([^\]|]+)(?:\|([^\]]+))?\]\]`)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)

// WikiRenderer implements the Renderer collaborator interface.
// Safe for concurrent use.
type WikiRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

var policyOnce sync.Once
var sharedPolicy *bluemonday.Policy

func ugcPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowImages()
		p.RequireNoReferrerOnLinks(true)
		sharedPolicy = p
	})
	return sharedPolicy
}

// New creates a WikiRenderer.
func New() *WikiRenderer {
	return &WikiRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithXHTML(),
			),
		),
		policy: ugcPolicy(),
	}
}

// Render renders markup for a document in the given locale.
func (r *WikiRenderer) Render(ctx context.Context, content, locale, docID string) (string, error) {
	out, _, err := r.RenderWithLinks(ctx, content, locale, docID)
	return out, err
}

// RenderWithLinks renders and reports the internal links the markup
// contains. Each [[Target]] becomes a /<locale>/kb/<slug> hyperlink and one
// collected link; links are reported even when no document exists at the
// slug yet, since resolution is the caller's concern.
func (r *WikiRenderer) RenderWithLinks(ctx context.Context, content, locale, docID string) (string, []wikiSvc.CollectedLink, error) {
	expanded, links := r.expandWikiLinks(content, locale)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(expanded), &buf); err != nil {
		return "", nil, fmt.Errorf("render document %s: %w", docID, err)
	}
	return string(r.policy.SanitizeBytes(buf.Bytes())), links, nil
}

func (r *WikiRenderer) expandWikiLinks(content, locale string) (string, []wikiSvc.CollectedLink) {
	var links []wikiSvc.CollectedLink
	seen := make(map[string]struct{})

	expanded := wikiLinkPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := wikiLinkPattern.FindStringSubmatch(match)
		target := strings.TrimSpace(groups[1])
		label := target
		if groups[2] != "" {
			label = strings.TrimSpace(groups[2])
		}

		slug := Slugify(target)
		if slug == "" {
			return label
		}
		if _, dup := seen[slug]; !dup {
			seen[slug] = struct{}{}
			links = append(links, wikiSvc.CollectedLink{
				Slug:   slug,
				Locale: locale,
				Kind:   LinkKindLink,
			})
		}
		return fmt.Sprintf("[%s](/%s/kb/%s)", label, locale, slug)
	})
	return expanded, links
}

// Slugify derives a URL slug from a document title the same way the editing
// UI does, so [[Title]] links land on the document created from that title.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = nonSlugChars.ReplaceAllString(slug, "")
	slug = strings.Trim(slug, "-")
	return slug
}
