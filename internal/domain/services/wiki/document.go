package wiki

import (
	"context"

	"github.com/Haizul/kitsune/internal/domain/models/wiki"
)

// DocumentService orchestrates document creation, validation, rename
// handling and redirect generation.
type DocumentService interface {
	// Create validates and persists a new document.
	Create(ctx context.Context, req *CreateDocumentRequest) (*wiki.Document, error)

	// Save validates and persists changes to a loaded document. If the
	// document has an approved current revision and its title or slug
	// changed, a redirect document with one pre-approved revision is
	// created in the same transaction, then the outgoing link graph is
	// recomputed.
	Save(ctx context.Context, doc *wiki.Document) error

	// Validate runs the document-level invariants without persisting:
	// forced non-localizability outside the default locale, parent
	// localizability, no localizable->false flips while translations
	// exist, category presence and inheritance, is_archived inheritance.
	Validate(ctx context.Context, doc *wiki.Document) error

	// Get retrieves a document by id.
	Get(ctx context.Context, id string) (*wiki.Document, error)

	// FromURL resolves a URL to the document it addresses, or nil. With
	// checkHost set, URLs carrying a network host never match.
	FromURL(ctx context.Context, rawURL, requiredLocale string, checkHost bool) (*wiki.Document, error)

	// RedirectURL returns the target URL if the document is a redirect
	// stub, or "". The locale prefix is rewritten to the document's own
	// locale when the target was authored against the default locale.
	RedirectURL(ctx context.Context, doc *wiki.Document) (string, error)

	// RedirectDocument resolves a redirect stub to its target document,
	// or nil if the document is not a redirect.
	RedirectDocument(ctx context.Context, doc *wiki.Document) (*wiki.Document, error)

	// TranslatedTo returns the translation of a default-locale document
	// into the given locale, or nil.
	TranslatedTo(ctx context.Context, doc *wiki.Document, locale string) (*wiki.Document, error)

	// AllowsVote reports whether the given voter may vote on the
	// document: not archived, has a current revision, not a redirect, and
	// the voter has not voted yet.
	AllowsVote(ctx context.Context, doc *wiki.Document, creatorID, anonymousID string) (bool, error)

	// Rebuild recomputes the denormalized fields (current revision,
	// latest localizable revision, HTML, contributors) purely from the
	// revision history and persists the result. It is the repair
	// operation for the materialized view.
	Rebuild(ctx context.Context, docID string) error
}

// CreateDocumentRequest carries the fields a caller may set on a new
// document.
type CreateDocumentRequest struct {
	Title              string        `json:"title"`
	Slug               string        `json:"slug"`
	Locale             string        `json:"locale"`
	Category           wiki.Category `json:"category"`
	IsLocalizable      bool          `json:"is_localizable"`
	ParentID           *string       `json:"parent_id,omitempty"`
	NeedsChange        bool          `json:"needs_change"`
	NeedsChangeComment string        `json:"needs_change_comment"`
}

// LinkIndexer maintains the directed link graph between documents.
type LinkIndexer interface {
	// RecomputeOutgoingLinks drops and regenerates the document's
	// outgoing edges from its rendered current content. Returns the
	// rendered HTML as a byproduct; "" when there is no current revision.
	RecomputeOutgoingLinks(ctx context.Context, doc *wiki.Document) (string, error)

	// LinksTo lists the edges pointing at the document.
	LinksTo(ctx context.Context, docID string) ([]wiki.DocumentLink, error)
}

// RelatedContentService answers "more like this" lookups for documents,
// backed by the search collaborator and a cache.
type RelatedContentService interface {
	RelatedDocuments(ctx context.Context, doc *wiki.Document) ([]wiki.RelatedDocument, error)
}

// SearchProjector builds search index records from documents and pushes
// index/unindex transitions to the search collaborator.
type SearchProjector interface {
	// Project builds the flat search record for a document, or nil when
	// the document must not be indexed (no current revision, redirect).
	Project(ctx context.Context, doc *wiki.Document) (*wiki.SearchRecord, error)

	// Sync projects the document and indexes or unindexes it accordingly.
	Sync(ctx context.Context, doc *wiki.Document) error
}
