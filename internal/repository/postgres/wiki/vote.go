package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	models "github.com/Haizul/kitsune/internal/domain/models/wiki"
	wikiRepo "github.com/Haizul/kitsune/internal/domain/repositories/wiki"
	"github.com/Haizul/kitsune/internal/repository/postgres"
)

// PostgresVoteRepository implements the VoteRepository interface.
type PostgresVoteRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewVoteRepository creates a new vote repository.
func NewVoteRepository(config *postgres.RepositoryConfig) wikiRepo.VoteRepository {
	return &PostgresVoteRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Add records a vote and fills in its id.
func (r *PostgresVoteRepository) Add(ctx context.Context, vote *models.HelpfulVote) error {
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (revision_id, helpful, created_at, creator_id,
			anonymous_id, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, r.tables.Votes)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		vote.RevisionID,
		vote.Helpful,
		vote.CreatedAt,
		vote.CreatorID,
		vote.AnonymousID,
		vote.UserAgent,
	).Scan(&vote.ID)
	if err != nil {
		return fmt.Errorf("add helpful vote: %w", err)
	}
	return nil
}

// AddMetadata attaches a key/value annotation to a vote.
func (r *PostgresVoteRepository) AddMetadata(ctx context.Context, meta *models.HelpfulVoteMetadata) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (vote_id, key, value)
		VALUES ($1, $2, $3)
		RETURNING id
	`, r.tables.VoteMetadata)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, meta.VoteID, meta.Key, meta.Value).Scan(&meta.ID)
	if err != nil {
		return fmt.Errorf("add vote metadata: %w", err)
	}
	return nil
}

// HasVoted reports whether the user (or anonymous id) already voted on the
// revision. An empty creatorID falls back to the anonymous id; with neither,
// the answer is false.
func (r *PostgresVoteRepository) HasVoted(ctx context.Context, revisionID int64, creatorID, anonymousID string) (bool, error) {
	var query string
	var who string

	switch {
	case creatorID != "":
		query = fmt.Sprintf(`
			SELECT EXISTS (SELECT 1 FROM %s WHERE revision_id = $1 AND creator_id = $2)
		`, r.tables.Votes)
		who = creatorID
	case anonymousID != "":
		query = fmt.Sprintf(`
			SELECT EXISTS (SELECT 1 FROM %s WHERE revision_id = $1 AND anonymous_id = $2)
		`, r.tables.Votes)
		who = anonymousID
	default:
		return false, nil
	}

	var voted bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, revisionID, who).Scan(&voted); err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}
	return voted, nil
}

// CountHelpfulSince counts helpful votes across all of a document's
// revisions created after the given time.
func (r *PostgresVoteRepository) CountHelpfulSince(ctx context.Context, docID string, since time.Time) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s v
		JOIN %s r ON r.id = v.revision_id
		WHERE r.document_id = $1 AND v.helpful AND v.created_at > $2
	`, r.tables.Votes, r.tables.Revisions)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, docID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count helpful votes: %w", err)
	}
	return count, nil
}
