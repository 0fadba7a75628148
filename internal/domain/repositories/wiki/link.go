package wiki

import (
	"context"

	"github.com/Haizul/kitsune/internal/domain/models/wiki"
)

// LinkRepository defines data access operations for the document link graph.
type LinkRepository interface {
	// Add inserts a directed edge. Returns domain.ErrConflict (wrapped)
	// when the edge already exists.
	Add(ctx context.Context, link *wiki.DocumentLink) error

	// DeleteFrom removes every edge going out from the document.
	DeleteFrom(ctx context.Context, docID string) error

	// ListFrom lists edges going out from the document.
	ListFrom(ctx context.Context, docID string) ([]wiki.DocumentLink, error)

	// ListTo lists edges pointing at the document ("what links here").
	ListTo(ctx context.Context, docID string) ([]wiki.DocumentLink, error)
}
