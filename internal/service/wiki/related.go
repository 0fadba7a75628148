package wiki

import (
	"context"
	"log/slog"

	models "github.com/Haizul/kitsune/internal/domain/models/wiki"
	wikiSvc "github.com/Haizul/kitsune/internal/domain/services/wiki"
	"github.com/Haizul/kitsune/internal/metrics"
)

const (
	relatedCacheKeyPrefix = "wiki_document:related_docs:"
	relatedLimit          = 3
)

// relatedContentService serves "people also viewed" style suggestions,
// backed by a more-like-this search with an LRU cache in front.
type relatedContentService struct {
	searchable wikiSvc.Searchable
	cache      wikiSvc.Cache
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// NewRelatedContentService creates a new related-content service.
func NewRelatedContentService(
	searchable wikiSvc.Searchable,
	cache wikiSvc.Cache,
	recorder metrics.Recorder,
	logger *slog.Logger,
) wikiSvc.RelatedContentService {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &relatedContentService{
		searchable: searchable,
		cache:      cache,
		recorder:   recorder,
		logger:     logger,
	}
}

// RelatedDocuments returns up to three approved knowledge-base documents
// similar to the given one. Redirects, unapproved documents, and documents
// outside the default information-architecture categories get none. Search
// failures degrade to an empty result; suggestions are never worth failing
// a page for.
func (s *relatedContentService) RelatedDocuments(ctx context.Context, doc *models.Document) ([]models.RelatedDocument, error) {
	if doc.IsRedirect() || doc.CurrentRevisionID == nil || !doc.HasDefaultIACategory() {
		return nil, nil
	}

	key := relatedCacheKeyPrefix + doc.ID
	if cached, ok := s.cache.Get(key); ok {
		if docs, ok := cached.([]models.RelatedDocument); ok {
			s.recorder.IncRelatedLookup("hit")
			return docs, nil
		}
	}
	s.recorder.IncRelatedLookup("miss")

	results, err := s.searchable.MoreLikeThis(ctx, wikiSvc.MoreLikeThisQuery{
		DocumentID: doc.ID,
		Locale:     doc.Locale,
		Categories: models.DefaultIACategories,
		Fields:     []string{"document_summary", "document_content"},
		Limit:      relatedLimit,
	})
	if err != nil {
		s.recorder.IncRelatedLookup("error")
		s.logger.Warn("related document lookup failed",
			"document_id", doc.ID,
			"error", err,
		)
		return nil, nil
	}

	s.cache.Add(key, results)
	return results, nil
}
