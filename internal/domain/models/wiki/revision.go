package wiki

import (
	"time"
)

// Revision is one edit in a document's append-only history. Content is
// immutable after submission; only review and localization flags change.
type Revision struct {
	ID         int64  `json:"id" db:"id"`
	DocumentID string `json:"document_id" db:"document_id"`

	Content string `json:"content" db:"content"`
	Summary string `json:"summary" db:"summary"`

	// Keywords affect search ranking. They live on the revision so
	// translators can localize them alongside the content.
	Keywords string `json:"keywords" db:"keywords"`

	Comment string `json:"comment" db:"comment"`

	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`

	// Significance is nil for the first revision of a document.
	Significance *Significance `json:"significance,omitempty" db:"significance"`

	CreatorID  string  `json:"creator_id" db:"creator_id"`
	ReviewerID *string `json:"reviewer_id,omitempty" db:"reviewer_id"`

	IsApproved bool `json:"is_approved" db:"is_approved"`

	// BasedOnID is the default-locale revision this one was translated
	// from. It must reference a revision of the document's canonical
	// original, or be nil.
	BasedOnID *int64 `json:"based_on_id,omitempty" db:"based_on_id"`

	// IsReadyForLocalization implies IsApproved, a default-locale
	// document, and significance above typo.
	IsReadyForLocalization     bool       `json:"is_ready_for_localization" db:"is_ready_for_localization"`
	ReadiedForLocalizationAt   *time.Time `json:"readied_for_localization_at,omitempty" db:"readied_for_localization_at"`
	ReadiedForLocalizationByID *string    `json:"readied_for_localization_by_id,omitempty" db:"readied_for_localization_by_id"`
}

// IsRejected reports whether the revision was reviewed and not approved.
// Unreviewed revisions are neither approved nor rejected.
func (r *Revision) IsRejected() bool {
	return r.ReviewedAt != nil && !r.IsApproved
}

// RevisionFilter selects a subset of a document's revisions for ordered
// queries.
type RevisionFilter int

const (
	// RevisionAny matches every revision.
	RevisionAny RevisionFilter = iota
	// RevisionApproved matches approved revisions.
	RevisionApproved
	// RevisionLocalizable matches approved revisions that are also ready
	// for localization.
	RevisionLocalizable
	// RevisionUnrejected matches revisions that were not explicitly
	// rejected (reviewed without approval).
	RevisionUnrejected
)

// Matches reports whether the revision passes the filter.
func (f RevisionFilter) Matches(r *Revision) bool {
	switch f {
	case RevisionApproved:
		return r.IsApproved
	case RevisionLocalizable:
		return r.IsApproved && r.IsReadyForLocalization
	case RevisionUnrejected:
		return !r.IsRejected()
	default:
		return true
	}
}
