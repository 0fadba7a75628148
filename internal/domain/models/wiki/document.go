package wiki

import (
	"strings"
	"time"
)

// Document is a localized knowledge-base document, not revision-specific.
//
// CurrentRevisionID, LatestLocalizableRevisionID and HTML are denormalized
// from the revision history; they are a materialized view and must stay
// rebuildable from revisions alone.
type Document struct {
	ID    string `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
	Slug  string `json:"slug" db:"slug"`

	// Locale the document is written in. (title, locale), (slug, locale)
	// and (parent, locale) are each unique.
	Locale string `json:"locale" db:"locale"`

	// IsTemplate is derived from the title prefix on every save.
	IsTemplate bool `json:"is_template" db:"is_template"`

	// IsLocalizable means "allowed to have translations". Only documents
	// in the default locale may set it.
	IsLocalizable bool `json:"is_localizable" db:"is_localizable"`

	// ParentID points at the default-locale document this is a translation
	// of. NULL iff this document is default-locale or non-localizable.
	ParentID *string `json:"parent_id,omitempty" db:"parent_id"`

	// CurrentRevisionID is the latest approved revision. It only moves
	// forward in id order, except when that revision is deleted.
	CurrentRevisionID *int64 `json:"current_revision_id,omitempty" db:"current_revision_id"`

	// LatestLocalizableRevisionID is the latest approved revision that is
	// also ready for localization. May stay set after IsLocalizable turns
	// false.
	LatestLocalizableRevisionID *int64 `json:"latest_localizable_revision_id,omitempty" db:"latest_localizable_revision_id"`

	// HTML is the cached rendering of the current revision's content.
	HTML string `json:"html" db:"html"`

	// Category matches the parent's for translations; enforced on save.
	Category Category `json:"category" db:"category"`

	// IsArchived matches the parent's for translations; enforced on save.
	IsArchived bool `json:"is_archived" db:"is_archived"`

	NeedsChange        bool   `json:"needs_change" db:"needs_change"`
	NeedsChangeComment string `json:"needs_change_comment" db:"needs_change_comment"`

	// Topics and Products this document applies to. Translations inherit
	// their parent's sets.
	Topics   []string `json:"topics,omitempty" db:"topics"`
	Products []string `json:"products,omitempty" db:"products"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Pending-rename tracking, captured at the first real change after
	// load and compared at save time. Not persisted.
	oldTitle *string
	oldSlug  *string
}

// SetTitle changes the title, recording the pre-change value so a save can
// generate a redirect. A case-only change is not tracked; restoring the exact
// original value cancels the pending change.
func (d *Document) SetTitle(title string) {
	d.oldTitle = trackRename(d.ID, d.Title, title, d.oldTitle)
	d.Title = title
}

// SetSlug changes the slug with the same tracking rules as SetTitle.
func (d *Document) SetSlug(slug string) {
	d.oldSlug = trackRename(d.ID, d.Slug, slug, d.oldSlug)
	d.Slug = slug
}

func trackRename(id, current, next string, old *string) *string {
	if id == "" {
		// Never persisted, so not worthy of a redirect.
		return nil
	}
	if old == nil {
		if !strings.EqualFold(current, next) {
			captured := current
			return &captured
		}
		return nil
	}
	if next == *old {
		// Changed back to the original value.
		return nil
	}
	return old
}

// OldAttr returns the tracked pre-change value for AttrTitle or AttrSlug and
// whether one is pending.
func (d *Document) OldAttr(attr string) (string, bool) {
	var old *string
	switch attr {
	case AttrTitle:
		old = d.oldTitle
	case AttrSlug:
		old = d.oldSlug
	}
	if old == nil {
		return "", false
	}
	return *old, true
}

// Attr returns the current value of AttrTitle or AttrSlug.
func (d *Document) Attr(attr string) string {
	if attr == AttrTitle {
		return d.Title
	}
	return d.Slug
}

// TitleChanged reports whether a title change is pending since load.
func (d *Document) TitleChanged() bool { return d.oldTitle != nil }

// SlugChanged reports whether a slug change is pending since load.
func (d *Document) SlugChanged() bool { return d.oldSlug != nil }

// ClearPendingRename drops the rename tracking so a subsequent save does not
// create a second redirect.
func (d *Document) ClearPendingRename() {
	d.oldTitle = nil
	d.oldSlug = nil
}

// IsRedirect reports whether the cached HTML marks this document as a
// redirect stub.
func (d *Document) IsRedirect() bool {
	return strings.HasPrefix(d.HTML, RedirectHTMLPrefix)
}

// HasDefaultIACategory reports whether the document participates in
// related-content lookups.
func (d *Document) HasDefaultIACategory() bool {
	for _, c := range DefaultIACategories {
		if d.Category == c {
			return true
		}
	}
	return false
}
