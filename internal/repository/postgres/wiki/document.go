package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haizul/kitsune/internal/domain"
	models "github.com/Haizul/kitsune/internal/domain/models/wiki"
	wikiRepo "github.com/Haizul/kitsune/internal/domain/repositories/wiki"
	"github.com/Haizul/kitsune/internal/repository/postgres"
)

const documentColumns = `id, title, slug, locale, is_template, is_localizable,
	parent_id, current_revision_id, latest_localizable_revision_id, html,
	category, is_archived, needs_change, needs_change_comment,
	topics, products, created_at, updated_at`

// PostgresDocumentRepository implements the DocumentRepository interface.
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(config *postgres.RepositoryConfig) wikiRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new document.
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, slug, locale, is_template, is_localizable,
			parent_id, current_revision_id, latest_localizable_revision_id,
			html, category, is_archived, needs_change, needs_change_comment,
			topics, products, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18)
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		doc.ID,
		doc.Title,
		doc.Slug,
		doc.Locale,
		doc.IsTemplate,
		doc.IsLocalizable,
		doc.ParentID,
		doc.CurrentRevisionID,
		doc.LatestLocalizableRevisionID,
		doc.HTML,
		doc.Category,
		doc.IsArchived,
		doc.NeedsChange,
		doc.NeedsChangeComment,
		doc.Topics,
		doc.Products,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		if collision := r.classifyCollision(err, doc); collision != nil {
			return collision
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// classifyCollision maps a unique violation onto the title/slug collision
// error kinds using the violated constraint's name.
func (r *PostgresDocumentRepository) classifyCollision(err error, doc *models.Document) error {
	if !postgres.IsPgDuplicateError(err) {
		return nil
	}
	if strings.Contains(err.Error(), "title") {
		return &domain.TitleCollisionError{Locale: doc.Locale, Title: doc.Title}
	}
	if strings.Contains(err.Error(), "slug") {
		return &domain.SlugCollisionError{Locale: doc.Locale, Slug: doc.Slug}
	}
	return fmt.Errorf("document %q already exists: %w", doc.Title, domain.ErrConflict)
}

// GetByID retrieves a document by ID.
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`,
		documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// GetByLocaleSlug retrieves a document by its (locale, slug) key.
func (r *PostgresDocumentRepository) GetByLocaleSlug(ctx context.Context, locale, slug string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE locale = $1 AND slug = $2`,
		documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, locale, slug))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s/%s: %w", locale, slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document by slug: %w", err)
	}
	return doc, nil
}

// Update updates an existing document.
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	doc.UpdatedAt = time.Now().UTC()

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, slug = $3, locale = $4, is_template = $5,
			is_localizable = $6, parent_id = $7, current_revision_id = $8,
			latest_localizable_revision_id = $9, html = $10, category = $11,
			is_archived = $12, needs_change = $13, needs_change_comment = $14,
			topics = $15, products = $16, updated_at = $17
		WHERE id = $1
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		doc.ID,
		doc.Title,
		doc.Slug,
		doc.Locale,
		doc.IsTemplate,
		doc.IsLocalizable,
		doc.ParentID,
		doc.CurrentRevisionID,
		doc.LatestLocalizableRevisionID,
		doc.HTML,
		doc.Category,
		doc.IsArchived,
		doc.NeedsChange,
		doc.NeedsChangeComment,
		doc.Topics,
		doc.Products,
		doc.UpdatedAt,
	)
	if err != nil {
		if collision := r.classifyCollision(err, doc); collision != nil {
			return collision
		}
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// SetCurrentRevision advances current_revision_id and the cached HTML under
// the newer-by-id guard.
func (r *PostgresDocumentRepository) SetCurrentRevision(ctx context.Context, docID string, revisionID int64, html string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET current_revision_id = $2, html = $3, updated_at = $4
		WHERE id = $1
			AND (current_revision_id IS NULL OR current_revision_id < $2)
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, docID, revisionID, html, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("set current revision: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetLatestLocalizableRevision advances latest_localizable_revision_id under
// the newer-by-id guard.
func (r *PostgresDocumentRepository) SetLatestLocalizableRevision(ctx context.Context, docID string, revisionID int64) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET latest_localizable_revision_id = $2, updated_at = $3
		WHERE id = $1
			AND (latest_localizable_revision_id IS NULL
				OR latest_localizable_revision_id < $2)
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, docID, revisionID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("set latest localizable revision: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ExistsWithAttr reports whether another document in the locale has the given
// title or slug. Matching is case-insensitive.
func (r *PostgresDocumentRepository) ExistsWithAttr(ctx context.Context, locale, attr, value, excludeID string) (bool, error) {
	column, err := attrColumn(attr)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s WHERE locale = $1 AND lower(%s) = lower($2) AND id <> $3
		)
	`, r.tables.Documents, column)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, locale, value, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s collision: %w", attr, err)
	}
	return exists, nil
}

// Translation retrieves the translation of a parent document into a locale.
func (r *PostgresDocumentRepository) Translation(ctx context.Context, parentID, locale string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE parent_id = $1 AND locale = $2`,
		documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, parentID, locale))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get translation: %w", err)
	}
	return doc, nil
}

// CountTranslations counts the direct translations of a document.
func (r *PostgresDocumentRepository) CountTranslations(ctx context.Context, parentID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE parent_id = $1`,
		r.tables.Documents)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, parentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count translations: %w", err)
	}
	return count, nil
}

// UpdateTranslationsAttr propagates a root document's category or is_archived
// value to all direct translations.
func (r *PostgresDocumentRepository) UpdateTranslationsAttr(ctx context.Context, parentID, attr string, value any) error {
	column, err := inheritedColumn(attr)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $2, updated_at = $3 WHERE parent_id = $1`,
		r.tables.Documents, column)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, parentID, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("propagate %s to translations: %w", attr, err)
	}
	return nil
}

// Contributors lists the user ids recorded as contributors.
func (r *PostgresDocumentRepository) Contributors(ctx context.Context, docID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT user_id FROM %s WHERE document_id = $1 ORDER BY user_id`,
		r.tables.Contributors)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, docID)
	if err != nil {
		return nil, fmt.Errorf("list contributors: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan contributor: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// AddContributors records new contributors, ignoring ones already present.
func (r *PostgresDocumentRepository) AddContributors(ctx context.Context, docID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (document_id, user_id) DO NOTHING
	`, r.tables.Contributors)

	executor := postgres.GetExecutor(ctx, r.pool)
	for _, userID := range userIDs {
		if _, err := executor.Exec(ctx, query, docID, userID); err != nil {
			return fmt.Errorf("add contributor %s: %w", userID, err)
		}
	}
	return nil
}

// ListIDs returns the ids of all documents.
func (r *PostgresDocumentRepository) ListIDs(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s ORDER BY created_at`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list document ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan document id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Slug,
		&doc.Locale,
		&doc.IsTemplate,
		&doc.IsLocalizable,
		&doc.ParentID,
		&doc.CurrentRevisionID,
		&doc.LatestLocalizableRevisionID,
		&doc.HTML,
		&doc.Category,
		&doc.IsArchived,
		&doc.NeedsChange,
		&doc.NeedsChangeComment,
		&doc.Topics,
		&doc.Products,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func attrColumn(attr string) (string, error) {
	switch attr {
	case models.AttrTitle:
		return "title", nil
	case models.AttrSlug:
		return "slug", nil
	}
	return "", fmt.Errorf("unknown document attribute %q", attr)
}

func inheritedColumn(attr string) (string, error) {
	switch attr {
	case "category":
		return "category", nil
	case "is_archived":
		return "is_archived", nil
	}
	return "", fmt.Errorf("attribute %q is not inherited", attr)
}
