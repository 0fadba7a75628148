package wiki

import "time"

// SearchRecord is the flat projection of a document handed to the search
// collaborator. Field names follow the index mapping, not the models.
type SearchRecord struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Title    string `json:"document_title"`
	Locale   string `json:"document_locale"`
	ParentID string `json:"document_parent_id,omitempty"`

	Content  string   `json:"document_content"`
	Summary  string   `json:"document_summary,omitempty"`
	Keywords string   `json:"document_keywords,omitempty"`
	Category Category `json:"document_category"`
	Slug     string   `json:"document_slug"`

	IsArchived bool `json:"document_is_archived"`

	CurrentRevisionID  int64 `json:"document_current_id,omitempty"`
	RecentHelpfulVotes int   `json:"document_recent_helpful_votes"`

	Topics   []string `json:"topic,omitempty"`
	Products []string `json:"product,omitempty"`

	UpdatedAt time.Time `json:"updated,omitempty"`
	IndexedAt time.Time `json:"indexed_on"`
}

// RelatedDocument is one more-like-this result for a document.
type RelatedDocument struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Locale string `json:"locale"`
}
