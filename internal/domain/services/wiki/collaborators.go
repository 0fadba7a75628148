package wiki

import (
	"context"

	"github.com/Haizul/kitsune/internal/domain/models/wiki"
)

// CollectedLink is an outbound link the renderer discovered while rendering
// wiki markup. Targets are addressed by slug within a locale.
type CollectedLink struct {
	Slug   string
	Locale string
	Kind   string
}

// Renderer turns wiki markup into HTML. Implementations must be pure and
// safe for concurrent use; the core treats rendering as a black box.
type Renderer interface {
	// Render renders markup for a document in the given locale.
	Render(ctx context.Context, content, locale, docID string) (string, error)

	// RenderWithLinks renders and additionally reports the internal links
	// the markup contains, for link-graph indexing.
	RenderWithLinks(ctx context.Context, content, locale, docID string) (string, []CollectedLink, error)
}

// MoreLikeThisQuery asks the search collaborator for documents similar to a
// given one, constrained to a locale and categories.
type MoreLikeThisQuery struct {
	DocumentID string
	Locale     string
	Categories []wiki.Category
	Fields     []string
	Limit      int
}

// Searchable is the search engine collaborator. The core only guarantees
// that it calls these on state transitions; ranking internals are external.
type Searchable interface {
	Index(ctx context.Context, rec *wiki.SearchRecord) error
	Unindex(ctx context.Context, docID string) error
	MoreLikeThis(ctx context.Context, q MoreLikeThisQuery) ([]wiki.RelatedDocument, error)
}

// Cache is a generic key-value cache with add-if-absent semantics, used for
// derived results such as related documents.
type Cache interface {
	Get(key string) (any, bool)
	// Add stores the value only if the key is absent.
	Add(key string, value any)
	Invalidate(key string)
}
