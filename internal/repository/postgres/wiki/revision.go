package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haizul/kitsune/internal/domain"
	models "github.com/Haizul/kitsune/internal/domain/models/wiki"
	wikiRepo "github.com/Haizul/kitsune/internal/domain/repositories/wiki"
	"github.com/Haizul/kitsune/internal/repository/postgres"
)

const revisionColumns = `id, document_id, content, summary, keywords, comment,
	created_at, reviewed_at, significance, creator_id, reviewer_id,
	is_approved, based_on_id, is_ready_for_localization,
	readied_for_localization_at, readied_for_localization_by_id`

// PostgresRevisionRepository implements the RevisionRepository interface.
// Revision ids come from a bigserial sequence, so id order is the total
// order the merge rules depend on.
type PostgresRevisionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewRevisionRepository creates a new revision repository.
func NewRevisionRepository(config *postgres.RepositoryConfig) wikiRepo.RevisionRepository {
	return &PostgresRevisionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create persists a new revision and fills in its id.
func (r *PostgresRevisionRepository) Create(ctx context.Context, rev *models.Revision) error {
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, content, summary, keywords, comment,
			created_at, reviewed_at, significance, creator_id, reviewer_id,
			is_approved, based_on_id, is_ready_for_localization,
			readied_for_localization_at, readied_for_localization_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`, r.tables.Revisions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		rev.DocumentID,
		rev.Content,
		rev.Summary,
		rev.Keywords,
		rev.Comment,
		rev.CreatedAt,
		rev.ReviewedAt,
		rev.Significance,
		rev.CreatorID,
		rev.ReviewerID,
		rev.IsApproved,
		rev.BasedOnID,
		rev.IsReadyForLocalization,
		rev.ReadiedForLocalizationAt,
		rev.ReadiedForLocalizationByID,
	).Scan(&rev.ID)
	if err != nil {
		return fmt.Errorf("create revision: %w", err)
	}

	return nil
}

// GetByID retrieves a revision by id.
func (r *PostgresRevisionRepository) GetByID(ctx context.Context, id int64) (*models.Revision, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`,
		revisionColumns, r.tables.Revisions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rev, err := scanRevision(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("revision %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get revision: %w", err)
	}
	return rev, nil
}

// Update persists review and localization flag changes. Content is immutable
// after submission and deliberately not part of the update.
func (r *PostgresRevisionRepository) Update(ctx context.Context, rev *models.Revision) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET reviewed_at = $2, significance = $3, reviewer_id = $4,
			is_approved = $5, based_on_id = $6,
			is_ready_for_localization = $7,
			readied_for_localization_at = $8,
			readied_for_localization_by_id = $9
		WHERE id = $1
	`, r.tables.Revisions)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		rev.ID,
		rev.ReviewedAt,
		rev.Significance,
		rev.ReviewerID,
		rev.IsApproved,
		rev.BasedOnID,
		rev.IsReadyForLocalization,
		rev.ReadiedForLocalizationAt,
		rev.ReadiedForLocalizationByID,
	)
	if err != nil {
		return fmt.Errorf("update revision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("revision %d: %w", rev.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a revision.
func (r *PostgresRevisionRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Revisions)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete revision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("revision %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ClearBasedOn nulls based_on on every revision referencing the given one.
func (r *PostgresRevisionRepository) ClearBasedOn(ctx context.Context, basedOnID int64) error {
	query := fmt.Sprintf(`UPDATE %s SET based_on_id = NULL WHERE based_on_id = $1`,
		r.tables.Revisions)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, basedOnID); err != nil {
		return fmt.Errorf("clear based_on references: %w", err)
	}
	return nil
}

// Latest returns the highest-id revision of the document matching the query,
// or nil if there is none.
func (r *PostgresRevisionRepository) Latest(ctx context.Context, docID string, q wikiRepo.RevisionQuery) (*models.Revision, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE document_id = $1`,
		revisionColumns, r.tables.Revisions)
	args := []interface{}{docID}

	switch q.Filter {
	case models.RevisionApproved:
		query += ` AND is_approved`
	case models.RevisionLocalizable:
		query += ` AND is_approved AND is_ready_for_localization`
	case models.RevisionUnrejected:
		query += ` AND NOT (reviewed_at IS NOT NULL AND NOT is_approved)`
	}
	if q.ExcludeID != 0 {
		args = append(args, q.ExcludeID)
		query += fmt.Sprintf(` AND id <> $%d`, len(args))
	}
	if q.BeforeID != 0 {
		args = append(args, q.BeforeID)
		query += fmt.Sprintf(` AND id < $%d`, len(args))
	}
	query += ` ORDER BY id DESC LIMIT 1`

	executor := postgres.GetExecutor(ctx, r.pool)
	rev, err := scanRevision(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest revision: %w", err)
	}
	return rev, nil
}

// CreatorsSince returns the distinct creators of the document's unrejected
// revisions with id greater than afterID.
func (r *PostgresRevisionRepository) CreatorsSince(ctx context.Context, docID string, afterID int64) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT creator_id FROM %s
		WHERE document_id = $1
			AND NOT (reviewed_at IS NOT NULL AND NOT is_approved)
			AND id > $2
		ORDER BY creator_id
	`, r.tables.Revisions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, docID, afterID)
	if err != nil {
		return nil, fmt.Errorf("list revision creators: %w", err)
	}
	defer rows.Close()

	var creators []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan creator: %w", err)
		}
		creators = append(creators, id)
	}
	return creators, rows.Err()
}

// HasReadySince reports whether the document has an approved,
// ready-for-localization revision at or above the significance with id
// greater than afterID.
func (r *PostgresRevisionRepository) HasReadySince(ctx context.Context, docID string, min models.Significance, afterID int64) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE document_id = $1 AND is_approved
				AND is_ready_for_localization
				AND significance >= $2 AND id > $3
		)
	`, r.tables.Revisions)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, docID, min, afterID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check ready revisions: %w", err)
	}
	return exists, nil
}

func scanRevision(row pgx.Row) (*models.Revision, error) {
	var rev models.Revision
	err := row.Scan(
		&rev.ID,
		&rev.DocumentID,
		&rev.Content,
		&rev.Summary,
		&rev.Keywords,
		&rev.Comment,
		&rev.CreatedAt,
		&rev.ReviewedAt,
		&rev.Significance,
		&rev.CreatorID,
		&rev.ReviewerID,
		&rev.IsApproved,
		&rev.BasedOnID,
		&rev.IsReadyForLocalization,
		&rev.ReadiedForLocalizationAt,
		&rev.ReadiedForLocalizationByID,
	)
	if err != nil {
		return nil, err
	}
	return &rev, nil
}
