package wiki

import (
	"context"

	"github.com/Haizul/kitsune/internal/domain/models/wiki"
)

// RevisionService is the revision lifecycle and localization-consistency
// engine: it keeps a document's denormalized fields consistent with its
// revision history and answers cross-locale staleness queries.
type RevisionService interface {
	// SaveRevision validates and persists a new revision, then runs the
	// approval merge if the revision arrives pre-approved. based_on
	// violations surface as *domain.InvalidBasedOnError carrying the
	// suggested corrected revision id.
	SaveRevision(ctx context.Context, req *SaveRevisionRequest) (*wiki.Revision, error)

	// ApproveRevision marks a revision reviewed and approved, then
	// updates the document's denormalized fields under the monotonic
	// id-ordered merge rules.
	ApproveRevision(ctx context.Context, revisionID int64, reviewerID string) error

	// RejectRevision marks a revision reviewed without approval.
	RejectRevision(ctx context.Context, revisionID int64, reviewerID string) error

	// MarkReadyForLocalization flags an approved revision as the basis
	// for translators and advances the document's latest localizable
	// revision when newer by id.
	MarkReadyForLocalization(ctx context.Context, revisionID int64, userID string) error

	// DeleteRevision removes a revision, nulling based_on references to
	// it and re-pointing the document's current / latest localizable
	// revision to the next-best remaining candidates.
	DeleteRevision(ctx context.Context, revisionID int64) error

	// LocalizableOrLatestRevision resolves the revision translators
	// should work from: the latest localizable revision if set and the
	// document is localizable, else the latest approved, else the latest
	// unrejected, else (with includeRejected) the latest of any kind.
	LocalizableOrLatestRevision(ctx context.Context, doc *wiki.Document, includeRejected bool) (*wiki.Revision, error)

	// IsOutdated reports whether the translation's canonical source has
	// an approved ready-for-localization revision at or above the given
	// significance that is newer than what the translation is based on.
	IsOutdated(ctx context.Context, translation *wiki.Document, level wiki.Significance) (bool, error)

	// IsMajorlyOutdated is IsOutdated at major significance.
	IsMajorlyOutdated(ctx context.Context, translation *wiki.Document) (bool, error)

	// CanBeReadiedForLocalization reports whether the revision meets the
	// prerequisites: approved, significance above typo, default-locale
	// document.
	CanBeReadiedForLocalization(ctx context.Context, rev *wiki.Revision) (bool, error)

	// Previous returns the approved revision preceding this one in the
	// document's history, or nil.
	Previous(ctx context.Context, rev *wiki.Revision) (*wiki.Revision, error)
}

// SaveRevisionRequest carries a revision submission.
type SaveRevisionRequest struct {
	DocumentID   string             `json:"document_id"`
	Content      string             `json:"content"`
	Summary      string             `json:"summary"`
	Keywords     string             `json:"keywords"`
	Comment      string             `json:"comment"`
	Significance *wiki.Significance `json:"significance,omitempty"`
	CreatorID    string             `json:"creator_id"`
	BasedOnID    *int64             `json:"based_on_id,omitempty"`

	// Pre-review flags, honored for trusted callers such as redirect
	// generation.
	IsApproved             bool    `json:"is_approved"`
	ReviewerID             *string `json:"reviewer_id,omitempty"`
	IsReadyForLocalization bool    `json:"is_ready_for_localization"`
}
