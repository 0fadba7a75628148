package wiki

import "time"

// HelpfulVote is an append-only helpful / not-helpful vote on a revision,
// keyed by revision + (user or anonymous id).
type HelpfulVote struct {
	ID          int64     `json:"id" db:"id"`
	RevisionID  int64     `json:"revision_id" db:"revision_id"`
	Helpful     bool      `json:"helpful" db:"helpful"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	CreatorID   *string   `json:"creator_id,omitempty" db:"creator_id"`
	AnonymousID string    `json:"anonymous_id" db:"anonymous_id"`
	UserAgent   string    `json:"user_agent" db:"user_agent"`
}

// HelpfulVoteMetadata is a free-form key/value annotation on a vote.
type HelpfulVoteMetadata struct {
	ID     int64  `json:"id" db:"id"`
	VoteID int64  `json:"vote_id" db:"vote_id"`
	Key    string `json:"key" db:"key"`
	Value  string `json:"value" db:"value"`
}
