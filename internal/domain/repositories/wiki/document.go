package wiki

import (
	"context"

	"github.com/Haizul/kitsune/internal/domain/models/wiki"
)

// DocumentRepository defines data access operations for documents.
type DocumentRepository interface {
	// Create creates a new document. Locale-scoped title/slug uniqueness
	// is enforced by the storage layer as the backstop for the service
	// pre-checks.
	Create(ctx context.Context, doc *wiki.Document) error

	// GetByID retrieves a document by ID.
	GetByID(ctx context.Context, id string) (*wiki.Document, error)

	// GetByLocaleSlug retrieves a document by its (locale, slug) key.
	GetByLocaleSlug(ctx context.Context, locale, slug string) (*wiki.Document, error)

	// Update updates an existing document.
	Update(ctx context.Context, doc *wiki.Document) error

	// SetCurrentRevision advances current_revision_id (and the cached
	// HTML) to the given revision only when it is unset or older by id.
	// Reports whether the update happened; the guard enforces the
	// forward-only rule under concurrent approvers.
	SetCurrentRevision(ctx context.Context, docID string, revisionID int64, html string) (bool, error)

	// SetLatestLocalizableRevision advances latest_localizable_revision_id
	// under the same newer-by-id guard.
	SetLatestLocalizableRevision(ctx context.Context, docID string, revisionID int64) (bool, error)

	// ExistsWithAttr reports whether another document in the locale has
	// the given title or slug. attr is wiki.AttrTitle or wiki.AttrSlug;
	// excludeID may be empty.
	ExistsWithAttr(ctx context.Context, locale, attr, value, excludeID string) (bool, error)

	// Translation retrieves the translation of a parent document into the
	// given locale, or nil if there is none.
	Translation(ctx context.Context, parentID, locale string) (*wiki.Document, error)

	// CountTranslations counts the direct translations of a document.
	CountTranslations(ctx context.Context, parentID string) (int, error)

	// UpdateTranslationsAttr propagates a root document's category or
	// is_archived value to all of its direct translations. attr is
	// "category" or "is_archived".
	UpdateTranslationsAttr(ctx context.Context, parentID, attr string, value any) error

	// Contributors lists the user ids recorded as contributors.
	Contributors(ctx context.Context, docID string) ([]string, error)

	// AddContributors records new contributors, ignoring ones already
	// present.
	AddContributors(ctx context.Context, docID string, userIDs []string) error

	// ListIDs returns the ids of all documents, for maintenance sweeps.
	ListIDs(ctx context.Context) ([]string, error)
}
