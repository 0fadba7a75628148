package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haizul/kitsune/internal/domain/repositories"
)

// RepositoryConfig holds shared configuration for repository implementations.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names.
type TableNames struct {
	Documents    string
	Revisions    string
	Links        string
	Votes        string
	VoteMetadata string
	Contributors string
}

// NewTableNames creates table names with the given prefix. The prefix is set
// per environment (dev_, test_, prod_) so environments can share a database.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Documents:    fmt.Sprintf("%swiki_documents", prefix),
		Revisions:    fmt.Sprintf("%swiki_revisions", prefix),
		Links:        fmt.Sprintf("%swiki_document_links", prefix),
		Votes:        fmt.Sprintf("%swiki_helpful_votes", prefix),
		VoteMetadata: fmt.Sprintf("%swiki_helpful_vote_metadata", prefix),
		Contributors: fmt.Sprintf("%swiki_document_contributors", prefix),
	}
}

// CreateConnectionPool creates a pgx connection pool and verifies it with a
// ping. Table name interpolation happens before statements reach the server,
// so each environment prefix gets its own prepared statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction carried by the context when present,
// otherwise the pool. Repositories automatically participate in enclosing
// transactions this way.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
