package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Haizul/kitsune/internal/domain"
	models "github.com/Haizul/kitsune/internal/domain/models/wiki"
	wikiRepo "github.com/Haizul/kitsune/internal/domain/repositories/wiki"
	wikiSvc "github.com/Haizul/kitsune/internal/domain/services/wiki"
)

// linkIndexer implements the LinkIndexer interface.
type linkIndexer struct {
	docRepo  wikiRepo.DocumentRepository
	revRepo  wikiRepo.RevisionRepository
	linkRepo wikiRepo.LinkRepository
	renderer wikiSvc.Renderer
	logger   *slog.Logger
}

// NewLinkIndexer creates a new link-graph indexer.
func NewLinkIndexer(
	docRepo wikiRepo.DocumentRepository,
	revRepo wikiRepo.RevisionRepository,
	linkRepo wikiRepo.LinkRepository,
	renderer wikiSvc.Renderer,
	logger *slog.Logger,
) wikiSvc.LinkIndexer {
	return &linkIndexer{
		docRepo:  docRepo,
		revRepo:  revRepo,
		linkRepo: linkRepo,
		renderer: renderer,
		logger:   logger,
	}
}

// RecomputeOutgoingLinks drops and regenerates the document's outgoing
// edges. Existing edges might be stale, so they are removed first and the
// renderer's collected targets re-inserted wholesale; re-running with
// unchanged content yields the same edge set.
func (s *linkIndexer) RecomputeOutgoingLinks(ctx context.Context, doc *models.Document) (string, error) {
	if doc.CurrentRevisionID == nil {
		return "", nil
	}

	current, err := s.revRepo.GetByID(ctx, *doc.CurrentRevisionID)
	if err != nil {
		return "", fmt.Errorf("load current revision: %w", err)
	}

	if err := s.linkRepo.DeleteFrom(ctx, doc.ID); err != nil {
		return "", err
	}

	html, collected, err := s.renderer.RenderWithLinks(ctx, current.Content, doc.Locale, doc.ID)
	if err != nil {
		return "", fmt.Errorf("render for link graph: %w", err)
	}

	for _, link := range collected {
		locale := link.Locale
		if locale == "" {
			locale = doc.Locale
		}
		target, err := s.docRepo.GetByLocaleSlug(ctx, locale, link.Slug)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Links to nonexistent documents carry no edge.
				continue
			}
			return "", err
		}
		err = s.linkRepo.Add(ctx, &models.DocumentLink{
			LinkedFromID: doc.ID,
			LinkedToID:   target.ID,
			Kind:         link.Kind,
		})
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// The edge already exists, ok.
				continue
			}
			return "", err
		}
	}

	return html, nil
}

// LinksTo lists the edges pointing at the document.
func (s *linkIndexer) LinksTo(ctx context.Context, docID string) ([]models.DocumentLink, error) {
	return s.linkRepo.ListTo(ctx, docID)
}
