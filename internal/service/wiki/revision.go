package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Haizul/kitsune/internal/config"
	"github.com/Haizul/kitsune/internal/domain"
	models "github.com/Haizul/kitsune/internal/domain/models/wiki"
	"github.com/Haizul/kitsune/internal/domain/repositories"
	wikiRepo "github.com/Haizul/kitsune/internal/domain/repositories/wiki"
	wikiSvc "github.com/Haizul/kitsune/internal/domain/services/wiki"
)

// revisionService implements the RevisionService interface. It owns the
// monotonic id-ordered merge that keeps a document's denormalized fields
// consistent with its revision history.
type revisionService struct {
	docRepo       wikiRepo.DocumentRepository
	revRepo       wikiRepo.RevisionRepository
	txManager     repositories.TransactionManager
	renderer      wikiSvc.Renderer
	linkIndexer   wikiSvc.LinkIndexer
	defaultLocale string
	logger        *slog.Logger
}

// NewRevisionService creates a new revision lifecycle service.
func NewRevisionService(
	docRepo wikiRepo.DocumentRepository,
	revRepo wikiRepo.RevisionRepository,
	txManager repositories.TransactionManager,
	renderer wikiSvc.Renderer,
	linkIndexer wikiSvc.LinkIndexer,
	defaultLocale string,
	logger *slog.Logger,
) wikiSvc.RevisionService {
	return &revisionService{
		docRepo:       docRepo,
		revRepo:       revRepo,
		txManager:     txManager,
		renderer:      renderer,
		linkIndexer:   linkIndexer,
		defaultLocale: defaultLocale,
		logger:        logger,
	}
}

// SaveRevision validates and persists a new revision, then runs the approval
// merge if the revision arrives pre-approved.
func (s *revisionService) SaveRevision(ctx context.Context, req *wikiSvc.SaveRevisionRequest) (*models.Revision, error) {
	if err := validateSaveRevisionRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var rev *models.Revision
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetByID(txCtx, req.DocumentID)
		if err != nil {
			return err
		}

		rev = &models.Revision{
			DocumentID:   doc.ID,
			Content:      req.Content,
			Summary:      req.Summary,
			Keywords:     req.Keywords,
			Comment:      req.Comment,
			Significance: req.Significance,
			CreatorID:    req.CreatorID,
			BasedOnID:    req.BasedOnID,
			IsApproved:   req.IsApproved,
			ReviewerID:   req.ReviewerID,

			IsReadyForLocalization: req.IsReadyForLocalization,
		}
		if rev.IsApproved {
			now := time.Now().UTC()
			rev.ReviewedAt = &now
		}

		// based_on must reference a revision of the canonical original.
		// An invalid value is never silently corrected; the error
		// carries the suggested replacement for the caller to re-offer.
		if err := s.checkBasedOn(txCtx, doc, rev); err != nil {
			return err
		}

		// Police the ready flag rather than failing the save; the flag
		// is only meaningful on approved default-locale revisions.
		if rev.IsReadyForLocalization && !s.canBeReadied(doc, rev) {
			rev.IsReadyForLocalization = false
		}

		if err := s.revRepo.Create(txCtx, rev); err != nil {
			return err
		}

		return s.applyApproved(txCtx, doc, rev)
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// ApproveRevision marks a revision reviewed and approved, then merges it
// into the document's denormalized state.
func (s *revisionService) ApproveRevision(ctx context.Context, revisionID int64, reviewerID string) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		rev, err := s.revRepo.GetByID(txCtx, revisionID)
		if err != nil {
			return err
		}
		doc, err := s.docRepo.GetByID(txCtx, rev.DocumentID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		rev.IsApproved = true
		rev.ReviewedAt = &now
		rev.ReviewerID = &reviewerID
		if rev.IsReadyForLocalization && !s.canBeReadied(doc, rev) {
			rev.IsReadyForLocalization = false
		}
		if err := s.revRepo.Update(txCtx, rev); err != nil {
			return err
		}

		return s.applyApproved(txCtx, doc, rev)
	})
}

// RejectRevision marks a revision reviewed without approval.
func (s *revisionService) RejectRevision(ctx context.Context, revisionID int64, reviewerID string) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		rev, err := s.revRepo.GetByID(txCtx, revisionID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		rev.IsApproved = false
		rev.ReviewedAt = &now
		rev.ReviewerID = &reviewerID
		rev.IsReadyForLocalization = false
		return s.revRepo.Update(txCtx, rev)
	})
}

// MarkReadyForLocalization flags an approved revision as the localization
// basis and advances the document's latest localizable revision when newer.
func (s *revisionService) MarkReadyForLocalization(ctx context.Context, revisionID int64, userID string) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		rev, err := s.revRepo.GetByID(txCtx, revisionID)
		if err != nil {
			return err
		}
		doc, err := s.docRepo.GetByID(txCtx, rev.DocumentID)
		if err != nil {
			return err
		}

		if !s.canBeReadied(doc, rev) {
			return fmt.Errorf("%w: revision %d cannot be readied for localization",
				domain.ErrValidation, rev.ID)
		}

		now := time.Now().UTC()
		rev.IsReadyForLocalization = true
		rev.ReadiedForLocalizationAt = &now
		rev.ReadiedForLocalizationByID = &userID
		if err := s.revRepo.Update(txCtx, rev); err != nil {
			return err
		}

		advanced, err := s.docRepo.SetLatestLocalizableRevision(txCtx, doc.ID, rev.ID)
		if err != nil {
			return err
		}
		if advanced {
			doc.LatestLocalizableRevisionID = &rev.ID
		}
		return nil
	})
}

// DeleteRevision removes a revision, dodging any cascade: based_on pointers
// at it are nulled and the document's denormalized fields re-pointed to the
// next-best remaining revisions.
func (s *revisionService) DeleteRevision(ctx context.Context, revisionID int64) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		rev, err := s.revRepo.GetByID(txCtx, revisionID)
		if err != nil {
			return err
		}
		doc, err := s.docRepo.GetByID(txCtx, rev.DocumentID)
		if err != nil {
			return err
		}

		if err := s.revRepo.ClearBasedOn(txCtx, rev.ID); err != nil {
			return err
		}

		changed := false
		if doc.CurrentRevisionID != nil && *doc.CurrentRevisionID == rev.ID {
			newCurrent, err := s.revRepo.Latest(txCtx, doc.ID, wikiRepo.RevisionQuery{
				Filter:    models.RevisionApproved,
				ExcludeID: rev.ID,
			})
			if err != nil {
				return err
			}
			if newCurrent != nil {
				html, err := s.renderer.Render(txCtx, newCurrent.Content, doc.Locale, doc.ID)
				if err != nil {
					return err
				}
				doc.CurrentRevisionID = &newCurrent.ID
				doc.HTML = html
			} else {
				doc.CurrentRevisionID = nil
				doc.HTML = ""
			}
			changed = true
		}

		if doc.LatestLocalizableRevisionID != nil && *doc.LatestLocalizableRevisionID == rev.ID {
			newLocalizable, err := s.revRepo.Latest(txCtx, doc.ID, wikiRepo.RevisionQuery{
				Filter:    models.RevisionLocalizable,
				ExcludeID: rev.ID,
			})
			if err != nil {
				return err
			}
			if newLocalizable != nil {
				doc.LatestLocalizableRevisionID = &newLocalizable.ID
			} else {
				doc.LatestLocalizableRevisionID = nil
			}
			changed = true
		}

		if changed {
			if err := s.docRepo.Update(txCtx, doc); err != nil {
				return err
			}
		}

		return s.revRepo.Delete(txCtx, rev.ID)
	})
}

// LocalizableOrLatestRevision resolves the revision translators should work
// from.
func (s *revisionService) LocalizableOrLatestRevision(ctx context.Context, doc *models.Document, includeRejected bool) (*models.Revision, error) {
	if doc.LatestLocalizableRevisionID != nil && doc.IsLocalizable {
		return s.revRepo.GetByID(ctx, *doc.LatestLocalizableRevisionID)
	}

	filters := []models.RevisionFilter{models.RevisionApproved, models.RevisionUnrejected}
	if includeRejected {
		filters = append(filters, models.RevisionAny)
	}
	for _, filter := range filters {
		rev, err := s.revRepo.Latest(ctx, doc.ID, wikiRepo.RevisionQuery{Filter: filter})
		if err != nil {
			return nil, err
		}
		if rev != nil {
			return rev, nil
		}
	}
	return nil, nil
}

// IsOutdated reports whether an update of the given magnitude has occurred
// to the canonical document since this translation was last approved against
// it.
func (s *revisionService) IsOutdated(ctx context.Context, translation *models.Document, level models.Significance) (bool, error) {
	if translation.ParentID == nil || translation.CurrentRevisionID == nil {
		return false, nil
	}

	current, err := s.revRepo.GetByID(ctx, *translation.CurrentRevisionID)
	if err != nil {
		return false, err
	}

	var afterID int64
	if current.BasedOnID != nil {
		afterID = *current.BasedOnID
	}
	return s.revRepo.HasReadySince(ctx, *translation.ParentID, level, afterID)
}

// IsMajorlyOutdated is IsOutdated at major significance.
func (s *revisionService) IsMajorlyOutdated(ctx context.Context, translation *models.Document) (bool, error) {
	return s.IsOutdated(ctx, translation, models.SignificanceMajor)
}

// CanBeReadiedForLocalization reports whether the revision can be marked as
// the localization basis.
func (s *revisionService) CanBeReadiedForLocalization(ctx context.Context, rev *models.Revision) (bool, error) {
	doc, err := s.docRepo.GetByID(ctx, rev.DocumentID)
	if err != nil {
		return false, err
	}
	return s.canBeReadied(doc, rev), nil
}

// Previous returns the approved revision preceding this one, or nil.
func (s *revisionService) Previous(ctx context.Context, rev *models.Revision) (*models.Revision, error) {
	return s.revRepo.Latest(ctx, rev.DocumentID, wikiRepo.RevisionQuery{
		Filter:   models.RevisionApproved,
		BeforeID: rev.ID,
	})
}

// canBeReadied checks the ready-for-localization prerequisites: approved,
// significance above typo, default-locale document.
func (s *revisionService) canBeReadied(doc *models.Document, rev *models.Revision) bool {
	return rev.IsApproved &&
		rev.Significance != nil && *rev.Significance > models.SignificanceTypo &&
		doc.Locale == s.defaultLocale
}

// checkBasedOn enforces the canonical-origin rule for based_on. When
// violated it resolves the most likely correct value and returns it inside
// the error.
func (s *revisionService) checkBasedOn(ctx context.Context, doc *models.Document, rev *models.Revision) error {
	if rev.BasedOnID == nil {
		// Even nil is permissible, e.g. for a brand new document.
		return nil
	}

	basedOn, err := s.revRepo.GetByID(ctx, *rev.BasedOnID)
	if err != nil {
		return err
	}

	originalID := doc.ID
	if doc.ParentID != nil {
		originalID = *doc.ParentID
	}
	if basedOn.DocumentID == originalID {
		return nil
	}

	original, err := s.docRepo.GetByID(ctx, originalID)
	if err != nil {
		return err
	}
	suggested, err := s.LocalizableOrLatestRevision(ctx, original, false)
	if err != nil {
		return err
	}

	invalid := &domain.InvalidBasedOnError{BasedOnID: *rev.BasedOnID}
	if suggested != nil {
		invalid.SuggestedID = &suggested.ID
	}
	return invalid
}

// applyApproved merges an approved revision into the document's denormalized
// fields. Once a revision is current only a strictly-newer one (by id) can
// displace it; the repository guard enforces that even under concurrent
// approvers.
func (s *revisionService) applyApproved(ctx context.Context, doc *models.Document, rev *models.Revision) error {
	switch {
	case rev.IsApproved &&
		(doc.CurrentRevisionID == nil || *doc.CurrentRevisionID < rev.ID):
		var previousID int64
		if doc.CurrentRevisionID != nil {
			previousID = *doc.CurrentRevisionID
		}

		if err := s.mergeContributors(ctx, doc, previousID); err != nil {
			return err
		}

		html, err := s.renderer.Render(ctx, rev.Content, doc.Locale, doc.ID)
		if err != nil {
			return fmt.Errorf("render revision %d: %w", rev.ID, err)
		}
		advanced, err := s.docRepo.SetCurrentRevision(ctx, doc.ID, rev.ID, html)
		if err != nil {
			return err
		}
		if !advanced {
			// A newer revision won the race; nothing else to update.
			s.logger.Debug("current revision already newer",
				"document_id", doc.ID, "revision_id", rev.ID)
			return nil
		}
		doc.CurrentRevisionID = &rev.ID
		doc.HTML = html

		if rev.IsReadyForLocalization {
			if _, err := s.docRepo.SetLatestLocalizableRevision(ctx, doc.ID, rev.ID); err != nil {
				return err
			}
			doc.LatestLocalizableRevisionID = &rev.ID
		}

		if _, err := s.linkIndexer.RecomputeOutgoingLinks(ctx, doc); err != nil {
			return err
		}

	case rev.IsReadyForLocalization &&
		(doc.LatestLocalizableRevisionID == nil || rev.ID > *doc.LatestLocalizableRevisionID):
		// A newer revision was marked ready without becoming current.
		advanced, err := s.docRepo.SetLatestLocalizableRevision(ctx, doc.ID, rev.ID)
		if err != nil {
			return err
		}
		if advanced {
			doc.LatestLocalizableRevisionID = &rev.ID
		}
	}

	return nil
}

// mergeContributors adds the creators of every unrejected revision newer
// than the previous current revision to the document's contributor set.
func (s *revisionService) mergeContributors(ctx context.Context, doc *models.Document, afterID int64) error {
	creators, err := s.revRepo.CreatorsSince(ctx, doc.ID, afterID)
	if err != nil {
		return err
	}
	existing, err := s.docRepo.Contributors(ctx, doc.ID)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}
	var added []string
	for _, id := range creators {
		if !known[id] {
			added = append(added, id)
		}
	}
	return s.docRepo.AddContributors(ctx, doc.ID, added)
}

func validateSaveRevisionRequest(req *wikiSvc.SaveRevisionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.Content, validation.Required),
		validation.Field(&req.CreatorID, validation.Required),
		validation.Field(&req.Comment,
			validation.Length(0, config.MaxRevisionCommentLength),
		),
		validation.Field(&req.Keywords,
			validation.Length(0, config.MaxKeywordsLength),
		),
	)
}
