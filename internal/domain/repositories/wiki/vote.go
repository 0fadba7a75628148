package wiki

import (
	"context"
	"time"

	"github.com/Haizul/kitsune/internal/domain/models/wiki"
)

// VoteRepository defines data access operations for helpful-vote records.
// Votes are append-only; there is no update or delete.
type VoteRepository interface {
	// Add records a vote and fills in its id.
	Add(ctx context.Context, vote *wiki.HelpfulVote) error

	// AddMetadata attaches a key/value annotation to a vote.
	AddMetadata(ctx context.Context, meta *wiki.HelpfulVoteMetadata) error

	// HasVoted reports whether the user (or, failing that, the anonymous
	// id) already voted on the revision.
	HasVoted(ctx context.Context, revisionID int64, creatorID, anonymousID string) (bool, error)

	// CountHelpfulSince counts helpful votes across all of a document's
	// revisions created after the given time.
	CountHelpfulSince(ctx context.Context, docID string, since time.Time) (int, error)
}
