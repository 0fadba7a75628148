package wiki

import (
	"context"

	"github.com/Haizul/kitsune/internal/domain/models/wiki"
)

// RevisionQuery narrows ordered revision lookups.
type RevisionQuery struct {
	Filter wiki.RevisionFilter
	// ExcludeID skips one revision, e.g. the one being deleted. Zero
	// means no exclusion.
	ExcludeID int64
	// BeforeID restricts to revisions with a smaller id. Zero means no
	// bound.
	BeforeID int64
}

// RevisionRepository defines data access operations for revisions.
type RevisionRepository interface {
	// Create persists a new revision and fills in its id.
	Create(ctx context.Context, rev *wiki.Revision) error

	// GetByID retrieves a revision by id.
	GetByID(ctx context.Context, id int64) (*wiki.Revision, error)

	// Update persists review and localization flag changes.
	Update(ctx context.Context, rev *wiki.Revision) error

	// Delete removes a revision. Callers re-point denormalized document
	// fields first; deletion never cascades.
	Delete(ctx context.Context, id int64) error

	// ClearBasedOn nulls based_on on every revision referencing the given
	// revision.
	ClearBasedOn(ctx context.Context, basedOnID int64) error

	// Latest returns the highest-id revision of the document matching the
	// query, or nil if there is none.
	Latest(ctx context.Context, docID string, q RevisionQuery) (*wiki.Revision, error)

	// CreatorsSince returns the distinct creators of the document's
	// not-explicitly-rejected revisions with id greater than afterID
	// (afterID 0 means all).
	CreatorsSince(ctx context.Context, docID string, afterID int64) ([]string, error)

	// HasReadySince reports whether the document has an approved,
	// ready-for-localization revision with significance >= min and id
	// greater than afterID (afterID 0 means any id).
	HasReadySince(ctx context.Context, docID string, min wiki.Significance, afterID int64) (bool, error)
}
