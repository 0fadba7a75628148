package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Haizul/kitsune/internal/config"
	"github.com/Haizul/kitsune/internal/domain"
	models "github.com/Haizul/kitsune/internal/domain/models/wiki"
	"github.com/Haizul/kitsune/internal/domain/repositories"
	wikiRepo "github.com/Haizul/kitsune/internal/domain/repositories/wiki"
	wikiSvc "github.com/Haizul/kitsune/internal/domain/services/wiki"
	"github.com/Haizul/kitsune/internal/metrics"
)

// hrefPattern pulls the first hyperlink target out of cached redirect HTML.
// This trick saves parsing the HTML on every redirect hop.
var hrefPattern = regexp.MustCompile(`<a[^>]+href="([^"]+)"`)

// documentService implements the DocumentService interface.
type documentService struct {
	docRepo       wikiRepo.DocumentRepository
	revRepo       wikiRepo.RevisionRepository
	voteRepo      wikiRepo.VoteRepository
	txManager     repositories.TransactionManager
	revisions     wikiSvc.RevisionService
	linkIndexer   wikiSvc.LinkIndexer
	redirects     *RedirectAttrGenerator
	recorder      metrics.Recorder
	defaultLocale string
	logger        *slog.Logger
}

// NewDocumentService creates a new document lifecycle service.
func NewDocumentService(
	docRepo wikiRepo.DocumentRepository,
	revRepo wikiRepo.RevisionRepository,
	voteRepo wikiRepo.VoteRepository,
	txManager repositories.TransactionManager,
	revisions wikiSvc.RevisionService,
	linkIndexer wikiSvc.LinkIndexer,
	redirects *RedirectAttrGenerator,
	recorder metrics.Recorder,
	defaultLocale string,
	logger *slog.Logger,
) wikiSvc.DocumentService {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &documentService{
		docRepo:       docRepo,
		revRepo:       revRepo,
		voteRepo:      voteRepo,
		txManager:     txManager,
		revisions:     revisions,
		linkIndexer:   linkIndexer,
		redirects:     redirects,
		recorder:      recorder,
		defaultLocale: defaultLocale,
		logger:        logger,
	}
}

// Create validates and persists a new document.
func (s *documentService) Create(ctx context.Context, req *wikiSvc.CreateDocumentRequest) (*models.Document, error) {
	if err := validateCreateDocumentRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	doc := &models.Document{
		Title:              req.Title,
		Slug:               req.Slug,
		Locale:             req.Locale,
		Category:           req.Category,
		IsLocalizable:      req.IsLocalizable,
		ParentID:           req.ParentID,
		NeedsChange:        req.NeedsChange,
		NeedsChangeComment: req.NeedsChangeComment,
	}
	if err := s.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save validates and persists a document, creating a redirect stub when a
// rename left an approved revision behind, then recomputes the link graph.
// The whole sequence shares one transaction; a renamed document without its
// redirect is a consistency violation.
func (s *documentService) Save(ctx context.Context, doc *models.Document) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc.IsTemplate = strings.HasPrefix(doc.Title, models.TemplateTitlePrefix)

		if err := s.raiseIfCollides(txCtx, doc, models.AttrSlug); err != nil {
			return err
		}
		if err := s.raiseIfCollides(txCtx, doc, models.AttrTitle); err != nil {
			return err
		}

		parent, err := s.parentOf(txCtx, doc)
		if err != nil {
			return err
		}
		if err := s.validate(txCtx, doc, parent); err != nil {
			return err
		}

		isNew := doc.ID == ""
		if isNew {
			if err := s.docRepo.Create(txCtx, doc); err != nil {
				return err
			}
		} else {
			if err := s.docRepo.Update(txCtx, doc); err != nil {
				return err
			}
		}

		// Roots push the inherited attributes down to their
		// translations; the parent is the source of truth.
		if doc.ParentID == nil && !isNew {
			if err := s.docRepo.UpdateTranslationsAttr(txCtx, doc.ID, "category", doc.Category); err != nil {
				return err
			}
			if err := s.docRepo.UpdateTranslationsAttr(txCtx, doc.ID, "is_archived", doc.IsArchived); err != nil {
				return err
			}
		}

		// Make a redirect if there's an approved revision and the title
		// or slug changed. Redirects for unapproved documents would be
		// of little use and have no creator to attribute.
		if doc.CurrentRevisionID != nil && (doc.SlugChanged() || doc.TitleChanged()) {
			if err := s.createRedirect(txCtx, doc); err != nil {
				return err
			}
			doc.ClearPendingRename()
		}

		_, err = s.linkIndexer.RecomputeOutgoingLinks(txCtx, doc)
		return err
	})
}

// Validate runs the document-level invariants without persisting. The
// document may be mutated (forced non-localizability, inherited fields).
func (s *documentService) Validate(ctx context.Context, doc *models.Document) error {
	parent, err := s.parentOf(ctx, doc)
	if err != nil {
		return err
	}
	return s.validate(ctx, doc, parent)
}

func (s *documentService) parentOf(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if doc.ParentID == nil {
		return nil, nil
	}
	parent, err := s.docRepo.GetByID(ctx, *doc.ParentID)
	if err != nil {
		return nil, fmt.Errorf("load parent document: %w", err)
	}
	return parent, nil
}

func (s *documentService) validate(ctx context.Context, doc *models.Document, parent *models.Document) error {
	// Translations can't be localizable; only the default locale may
	// have translations of its own.
	if doc.Locale != s.defaultLocale {
		doc.IsLocalizable = false
	}
	if parent != nil && !parent.IsLocalizable {
		return &domain.InvalidParentError{
			DocumentTitle: doc.Title,
			ParentTitle:   parent.Title,
		}
	}
	if doc.ID != "" && !doc.IsLocalizable {
		count, err := s.docRepo.CountTranslations(ctx, doc.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return &domain.HasTranslationsError{
				DocumentTitle: doc.Title,
				Translations:  count,
			}
		}
	}

	// Category and is_archived always come from the parent when there is
	// one; a root needs a valid category of its own.
	if parent == nil && !doc.Category.Valid() {
		return &domain.MissingCategoryError{DocumentTitle: doc.Title}
	}
	if parent != nil {
		doc.Category = parent.Category
		doc.IsArchived = parent.IsArchived
	}

	return nil
}

// raiseIfCollides pre-checks locale-scoped uniqueness for new documents and
// pending renames. The storage constraint remains the backstop for races.
func (s *documentService) raiseIfCollides(ctx context.Context, doc *models.Document, attr string) error {
	_, changed := doc.OldAttr(attr)
	if doc.ID != "" && !changed {
		return nil
	}

	exists, err := s.docRepo.ExistsWithAttr(ctx, doc.Locale, attr, doc.Attr(attr), doc.ID)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if attr == models.AttrTitle {
		return &domain.TitleCollisionError{Locale: doc.Locale, Title: doc.Title}
	}
	return &domain.SlugCollisionError{Locale: doc.Locale, Slug: doc.Slug}
}

// createRedirect leaves a stub document behind at the pre-rename title/slug,
// with one pre-approved revision pointing readers at the new name.
func (s *documentService) createRedirect(ctx context.Context, doc *models.Document) error {
	current, err := s.revRepo.GetByID(ctx, *doc.CurrentRevisionID)
	if err != nil {
		return fmt.Errorf("load current revision: %w", err)
	}

	title, err := s.redirects.Generate(ctx, doc, models.AttrTitle, models.RedirectTitleTemplate)
	if err != nil {
		return err
	}
	slug, err := s.redirects.Generate(ctx, doc, models.AttrSlug, models.RedirectSlugTemplate)
	if err != nil {
		return err
	}

	redirect := &models.Document{
		Title:         title,
		Slug:          slug,
		Locale:        doc.Locale,
		Category:      doc.Category,
		IsLocalizable: false,
	}
	redirect.IsTemplate = strings.HasPrefix(redirect.Title, models.TemplateTitlePrefix)
	if err := s.docRepo.Create(ctx, redirect); err != nil {
		return err
	}

	creator := current.CreatorID
	_, err = s.revisions.SaveRevision(ctx, &wikiSvc.SaveRevisionRequest{
		DocumentID: redirect.ID,
		Content:    fmt.Sprintf(models.RedirectContentTemplate, doc.Title),
		CreatorID:  creator,
		IsApproved: true,
		ReviewerID: &creator,
	})
	if err != nil {
		return fmt.Errorf("create redirect revision: %w", err)
	}

	s.recorder.IncRedirectCreated()
	s.logger.Info("redirect created",
		"document_id", doc.ID,
		"redirect_id", redirect.ID,
		"slug", redirect.Slug,
	)
	return nil
}

// Get retrieves a document by id.
func (s *documentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

// FromURL resolves a URL to the document it addresses, or nil. When no
// document exists at the URL's locale, the default-locale document with that
// slug answers, preferring its translation into the requested locale.
func (s *documentService) FromURL(ctx context.Context, rawURL, requiredLocale string, checkHost bool) (*models.Document, error) {
	components, err := docComponentsFromURL(rawURL, requiredLocale, checkHost)
	if err != nil || components == nil {
		return nil, nil
	}

	doc, err := s.docRepo.GetByLocaleSlug(ctx, components.Locale, components.Slug)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	doc, err = s.docRepo.GetByLocaleSlug(ctx, s.defaultLocale, components.Slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	translation, err := s.docRepo.Translation(ctx, doc.ID, components.Locale)
	if err != nil {
		return nil, err
	}
	if translation != nil {
		return translation, nil
	}
	return doc, nil
}

// RedirectURL returns the URL a redirect stub points at, or "". Redirect
// revisions are often authored against the default locale; when the target's
// locale is the default and the stub's is not, the prefix is rewritten so
// readers stay in their locale.
func (s *documentService) RedirectURL(ctx context.Context, doc *models.Document) (string, error) {
	if !doc.IsRedirect() {
		return "", nil
	}
	match := hrefPattern.FindStringSubmatch(doc.HTML)
	if match == nil {
		return "", nil
	}
	fullURL := match[1]

	destLocale, rest := splitLocalePath(fullURL)
	if doc.Locale != destLocale && destLocale == s.defaultLocale {
		return "/" + doc.Locale + "/" + rest, nil
	}
	return fullURL, nil
}

// RedirectDocument resolves a redirect stub to its target document, or nil.
func (s *documentService) RedirectDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	target, err := s.RedirectURL(ctx, doc)
	if err != nil || target == "" {
		return nil, err
	}
	return s.FromURL(ctx, target, "", true)
}

// TranslatedTo returns the translation of a default-locale document into the
// given locale, or nil.
func (s *documentService) TranslatedTo(ctx context.Context, doc *models.Document, locale string) (*models.Document, error) {
	if doc.Locale != s.defaultLocale {
		return nil, fmt.Errorf("%w: translations are tracked on default-locale documents only",
			domain.ErrValidation)
	}
	return s.docRepo.Translation(ctx, doc.ID, locale)
}

// AllowsVote reports whether the given voter may vote on the document.
func (s *documentService) AllowsVote(ctx context.Context, doc *models.Document, creatorID, anonymousID string) (bool, error) {
	if doc.IsArchived || doc.CurrentRevisionID == nil {
		return false, nil
	}
	voted, err := s.voteRepo.HasVoted(ctx, *doc.CurrentRevisionID, creatorID, anonymousID)
	if err != nil {
		return false, err
	}
	if voted {
		return false, nil
	}
	redirect, err := s.RedirectDocument(ctx, doc)
	if err != nil {
		return false, err
	}
	return redirect == nil, nil
}

// Rebuild recomputes the denormalized fields purely from revision history.
// The stored fields are a materialized view; this is the repair operation
// that makes that promise real.
func (s *documentService) Rebuild(ctx context.Context, docID string) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetByID(txCtx, docID)
		if err != nil {
			return err
		}

		current, err := s.revRepo.Latest(txCtx, doc.ID, wikiRepo.RevisionQuery{
			Filter: models.RevisionApproved,
		})
		if err != nil {
			return err
		}
		localizable, err := s.revRepo.Latest(txCtx, doc.ID, wikiRepo.RevisionQuery{
			Filter: models.RevisionLocalizable,
		})
		if err != nil {
			return err
		}

		if current != nil {
			doc.CurrentRevisionID = &current.ID
		} else {
			doc.CurrentRevisionID = nil
		}
		if localizable != nil {
			doc.LatestLocalizableRevisionID = &localizable.ID
		} else {
			doc.LatestLocalizableRevisionID = nil
		}

		// RecomputeOutgoingLinks re-renders the current revision, so it
		// also delivers the fresh HTML for the document row.
		html, err := s.linkIndexer.RecomputeOutgoingLinks(txCtx, doc)
		if err != nil {
			return err
		}
		doc.HTML = html

		if err := s.docRepo.Update(txCtx, doc); err != nil {
			return err
		}

		// Contributor set: creators of every unrejected revision.
		creators, err := s.revRepo.CreatorsSince(txCtx, doc.ID, 0)
		if err != nil {
			return err
		}
		return s.docRepo.AddContributors(txCtx, doc.ID, creators)
	})
}

func validateCreateDocumentRequest(req *wikiSvc.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxTitleLength),
		),
		validation.Field(&req.Slug,
			validation.Required,
			validation.Length(1, config.MaxSlugLength),
		),
		validation.Field(&req.Locale, validation.Required),
		validation.Field(&req.NeedsChangeComment,
			validation.Length(0, config.MaxNeedsChangeCommentLength),
		),
	)
}
