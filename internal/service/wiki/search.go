package wiki

import (
	"context"
	"log/slog"
	"time"

	models "github.com/Haizul/kitsune/internal/domain/models/wiki"
	wikiRepo "github.com/Haizul/kitsune/internal/domain/repositories/wiki"
	wikiSvc "github.com/Haizul/kitsune/internal/domain/services/wiki"
	"github.com/Haizul/kitsune/internal/metrics"
)

// recentVoteWindow bounds the helpful-vote count that feeds search ranking.
const recentVoteWindow = 30 * 24 * time.Hour

// searchProjector flattens documents into search records and keeps the
// index in step with document state transitions.
type searchProjector struct {
	docRepo    wikiRepo.DocumentRepository
	revRepo    wikiRepo.RevisionRepository
	voteRepo   wikiRepo.VoteRepository
	searchable wikiSvc.Searchable
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// NewSearchProjector creates a new search projector.
func NewSearchProjector(
	docRepo wikiRepo.DocumentRepository,
	revRepo wikiRepo.RevisionRepository,
	voteRepo wikiRepo.VoteRepository,
	searchable wikiSvc.Searchable,
	recorder metrics.Recorder,
	logger *slog.Logger,
) wikiSvc.SearchProjector {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &searchProjector{
		docRepo:    docRepo,
		revRepo:    revRepo,
		voteRepo:   voteRepo,
		searchable: searchable,
		recorder:   recorder,
		logger:     logger,
	}
}

// Project builds the flat search record for a document. Documents without
// an approved revision and redirect stubs project to nil; they must not be
// searchable.
func (s *searchProjector) Project(ctx context.Context, doc *models.Document) (*models.SearchRecord, error) {
	if doc.CurrentRevisionID == nil || doc.IsRedirect() {
		return nil, nil
	}

	current, err := s.revRepo.GetByID(ctx, *doc.CurrentRevisionID)
	if err != nil {
		return nil, err
	}

	rec := &models.SearchRecord{
		ID:                doc.ID,
		URL:               "/" + doc.Locale + "/kb/" + doc.Slug,
		Title:             doc.Title,
		Locale:            doc.Locale,
		Content:           doc.HTML,
		Summary:           current.Summary,
		Keywords:          current.Keywords,
		Category:          doc.Category,
		Slug:              doc.Slug,
		IsArchived:        doc.IsArchived,
		CurrentRevisionID: current.ID,
		Topics:            doc.Topics,
		Products:          doc.Products,
		UpdatedAt:         doc.UpdatedAt,
		IndexedAt:         time.Now().UTC(),
	}
	if doc.ParentID != nil {
		rec.ParentID = *doc.ParentID

		// Translations carry the parent's taxonomy; tagging happens on
		// the default-locale document only.
		parent, err := s.docRepo.GetByID(ctx, *doc.ParentID)
		if err != nil {
			return nil, err
		}
		rec.Topics = parent.Topics
		rec.Products = parent.Products
	}

	// Votes only influence ranking for ordinary knowledge-base articles.
	if !doc.IsTemplate && doc.Category != models.CategoryNavigation {
		since := time.Now().UTC().Add(-recentVoteWindow)
		votes, err := s.voteRepo.CountHelpfulSince(ctx, doc.ID, since)
		if err != nil {
			return nil, err
		}
		rec.RecentHelpfulVotes = votes
	}

	return rec, nil
}

// Sync projects the document and pushes the result to the search engine,
// indexing when a record exists and unindexing when it does not.
func (s *searchProjector) Sync(ctx context.Context, doc *models.Document) error {
	rec, err := s.Project(ctx, doc)
	if err != nil {
		return err
	}
	if rec == nil {
		if err := s.searchable.Unindex(ctx, doc.ID); err != nil {
			return err
		}
		s.recorder.IncSearchSync("unindex")
		return nil
	}
	if err := s.searchable.Index(ctx, rec); err != nil {
		return err
	}
	s.recorder.IncSearchSync("index")
	return nil
}
