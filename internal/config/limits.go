package config

const (
	// MaxTitleLength is the maximum length for document titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxTitleLength = 255

	// MaxSlugLength is the maximum length for document slugs.
	// Same bound as titles; slugs are derived from them.
	MaxSlugLength = 255

	// MaxNeedsChangeCommentLength bounds the needs-change annotation.
	MaxNeedsChangeCommentLength = 500

	// MaxKeywordsLength bounds the revision keywords field.
	MaxKeywordsLength = 255

	// MaxRevisionCommentLength bounds the reviewer-facing comment field.
	MaxRevisionCommentLength = 255
)
