package wiki

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haizul/kitsune/internal/domain"
	models "github.com/Haizul/kitsune/internal/domain/models/wiki"
	wikiRepo "github.com/Haizul/kitsune/internal/domain/repositories/wiki"
	"github.com/Haizul/kitsune/internal/repository/postgres"
)

// PostgresLinkRepository implements the LinkRepository interface.
type PostgresLinkRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewLinkRepository creates a new link repository.
func NewLinkRepository(config *postgres.RepositoryConfig) wikiRepo.LinkRepository {
	return &PostgresLinkRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Add inserts a directed edge.
func (r *PostgresLinkRepository) Add(ctx context.Context, link *models.DocumentLink) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (linked_from_id, linked_to_id, kind)
		VALUES ($1, $2, $3)
	`, r.tables.Links)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, link.LinkedFromID, link.LinkedToID, link.Kind)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("link %s -> %s: %w",
				link.LinkedFromID, link.LinkedToID, domain.ErrConflict)
		}
		return fmt.Errorf("add document link: %w", err)
	}
	return nil
}

// DeleteFrom removes every edge going out from the document.
func (r *PostgresLinkRepository) DeleteFrom(ctx context.Context, docID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE linked_from_id = $1`, r.tables.Links)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, docID); err != nil {
		return fmt.Errorf("delete outgoing links: %w", err)
	}
	return nil
}

// ListFrom lists edges going out from the document.
func (r *PostgresLinkRepository) ListFrom(ctx context.Context, docID string) ([]models.DocumentLink, error) {
	return r.list(ctx, "linked_from_id", docID)
}

// ListTo lists edges pointing at the document.
func (r *PostgresLinkRepository) ListTo(ctx context.Context, docID string) ([]models.DocumentLink, error) {
	return r.list(ctx, "linked_to_id", docID)
}

func (r *PostgresLinkRepository) list(ctx context.Context, column, docID string) ([]models.DocumentLink, error) {
	query := fmt.Sprintf(`
		SELECT linked_from_id, linked_to_id, kind FROM %s
		WHERE %s = $1
		ORDER BY linked_from_id, linked_to_id
	`, r.tables.Links, column)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, docID)
	if err != nil {
		return nil, fmt.Errorf("list document links: %w", err)
	}
	defer rows.Close()

	var links []models.DocumentLink
	for rows.Next() {
		var link models.DocumentLink
		if err := rows.Scan(&link.LinkedFromID, &link.LinkedToID, &link.Kind); err != nil {
			return nil, fmt.Errorf("scan document link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}
