package wiki

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Haizul/kitsune/internal/domain"
	models "github.com/Haizul/kitsune/internal/domain/models/wiki"
	"github.com/Haizul/kitsune/internal/domain/repositories"
	wikiRepo "github.com/Haizul/kitsune/internal/domain/repositories/wiki"
	wikiSvc "github.com/Haizul/kitsune/internal/domain/services/wiki"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTxManager runs the function directly; the in-memory fakes have no
// transactions to manage.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

type fakeDocRepo struct {
	docs         map[string]*models.Document
	contributors map[string][]string
	nextID       int
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{
		docs:         make(map[string]*models.Document),
		contributors: make(map[string][]string),
	}
}

func (r *fakeDocRepo) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		r.nextID++
		doc.ID = fmt.Sprintf("doc-%d", r.nextID)
	}
	for _, other := range r.docs {
		if other.Locale == doc.Locale && strings.EqualFold(other.Title, doc.Title) {
			return &domain.TitleCollisionError{Locale: doc.Locale, Title: doc.Title}
		}
		if other.Locale == doc.Locale && other.Slug == doc.Slug {
			return &domain.SlugCollisionError{Locale: doc.Locale, Slug: doc.Slug}
		}
	}
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "document " + id + " not found"}
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeDocRepo) GetByLocaleSlug(ctx context.Context, locale, slug string) (*models.Document, error) {
	for _, doc := range r.docs {
		if doc.Locale == locale && doc.Slug == slug {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "document " + locale + "/" + slug + " not found"}
}

func (r *fakeDocRepo) Update(ctx context.Context, doc *models.Document) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return &domain.NotFoundError{Message: "document " + doc.ID + " not found"}
	}
	doc.UpdatedAt = time.Now().UTC()
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocRepo) SetCurrentRevision(ctx context.Context, docID string, revisionID int64, html string) (bool, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return false, &domain.NotFoundError{Message: "document " + docID + " not found"}
	}
	if doc.CurrentRevisionID != nil && *doc.CurrentRevisionID >= revisionID {
		return false, nil
	}
	doc.CurrentRevisionID = &revisionID
	doc.HTML = html
	return true, nil
}

func (r *fakeDocRepo) SetLatestLocalizableRevision(ctx context.Context, docID string, revisionID int64) (bool, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return false, &domain.NotFoundError{Message: "document " + docID + " not found"}
	}
	if doc.LatestLocalizableRevisionID != nil && *doc.LatestLocalizableRevisionID >= revisionID {
		return false, nil
	}
	doc.LatestLocalizableRevisionID = &revisionID
	return true, nil
}

func (r *fakeDocRepo) ExistsWithAttr(ctx context.Context, locale, attr, value, excludeID string) (bool, error) {
	for _, doc := range r.docs {
		if doc.ID == excludeID || doc.Locale != locale {
			continue
		}
		if attr == models.AttrTitle && strings.EqualFold(doc.Title, value) {
			return true, nil
		}
		if attr == models.AttrSlug && doc.Slug == value {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeDocRepo) Translation(ctx context.Context, parentID, locale string) (*models.Document, error) {
	for _, doc := range r.docs {
		if doc.ParentID != nil && *doc.ParentID == parentID && doc.Locale == locale {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeDocRepo) CountTranslations(ctx context.Context, parentID string) (int, error) {
	count := 0
	for _, doc := range r.docs {
		if doc.ParentID != nil && *doc.ParentID == parentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeDocRepo) UpdateTranslationsAttr(ctx context.Context, parentID, attr string, value any) error {
	for _, doc := range r.docs {
		if doc.ParentID == nil || *doc.ParentID != parentID {
			continue
		}
		switch attr {
		case "category":
			doc.Category = value.(models.Category)
		case "is_archived":
			doc.IsArchived = value.(bool)
		default:
			return fmt.Errorf("unexpected attr %q", attr)
		}
	}
	return nil
}

func (r *fakeDocRepo) Contributors(ctx context.Context, docID string) ([]string, error) {
	return append([]string(nil), r.contributors[docID]...), nil
}

func (r *fakeDocRepo) AddContributors(ctx context.Context, docID string, userIDs []string) error {
	known := make(map[string]bool)
	for _, id := range r.contributors[docID] {
		known[id] = true
	}
	for _, id := range userIDs {
		if !known[id] {
			r.contributors[docID] = append(r.contributors[docID], id)
			known[id] = true
		}
	}
	return nil
}

func (r *fakeDocRepo) ListIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type fakeRevRepo struct {
	revs   map[int64]*models.Revision
	nextID int64
}

func newFakeRevRepo() *fakeRevRepo {
	return &fakeRevRepo{revs: make(map[int64]*models.Revision)}
}

func (r *fakeRevRepo) Create(ctx context.Context, rev *models.Revision) error {
	r.nextID++
	rev.ID = r.nextID
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now().UTC()
	}
	copied := *rev
	r.revs[rev.ID] = &copied
	return nil
}

func (r *fakeRevRepo) GetByID(ctx context.Context, id int64) (*models.Revision, error) {
	rev, ok := r.revs[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("revision %d not found", id)}
	}
	copied := *rev
	return &copied, nil
}

func (r *fakeRevRepo) Update(ctx context.Context, rev *models.Revision) error {
	if _, ok := r.revs[rev.ID]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("revision %d not found", rev.ID)}
	}
	copied := *rev
	r.revs[rev.ID] = &copied
	return nil
}

func (r *fakeRevRepo) Delete(ctx context.Context, id int64) error {
	delete(r.revs, id)
	return nil
}

func (r *fakeRevRepo) ClearBasedOn(ctx context.Context, basedOnID int64) error {
	for _, rev := range r.revs {
		if rev.BasedOnID != nil && *rev.BasedOnID == basedOnID {
			rev.BasedOnID = nil
		}
	}
	return nil
}

func (r *fakeRevRepo) Latest(ctx context.Context, docID string, q wikiRepo.RevisionQuery) (*models.Revision, error) {
	var best *models.Revision
	for _, rev := range r.revs {
		if rev.DocumentID != docID || !q.Filter.Matches(rev) {
			continue
		}
		if q.ExcludeID != 0 && rev.ID == q.ExcludeID {
			continue
		}
		if q.BeforeID != 0 && rev.ID >= q.BeforeID {
			continue
		}
		if best == nil || rev.ID > best.ID {
			best = rev
		}
	}
	if best == nil {
		return nil, nil
	}
	copied := *best
	return &copied, nil
}

func (r *fakeRevRepo) CreatorsSince(ctx context.Context, docID string, afterID int64) ([]string, error) {
	seen := make(map[string]bool)
	var ids []int64
	for id := range r.revs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var creators []string
	for _, id := range ids {
		rev := r.revs[id]
		if rev.DocumentID != docID || rev.ID <= afterID || rev.IsRejected() {
			continue
		}
		if !seen[rev.CreatorID] {
			seen[rev.CreatorID] = true
			creators = append(creators, rev.CreatorID)
		}
	}
	return creators, nil
}

func (r *fakeRevRepo) HasReadySince(ctx context.Context, docID string, min models.Significance, afterID int64) (bool, error) {
	for _, rev := range r.revs {
		if rev.DocumentID != docID || rev.ID <= afterID {
			continue
		}
		if !rev.IsApproved || !rev.IsReadyForLocalization {
			continue
		}
		if rev.Significance != nil && *rev.Significance >= min {
			return true, nil
		}
	}
	return false, nil
}

type fakeLinkRepo struct {
	links []models.DocumentLink
}

func (r *fakeLinkRepo) Add(ctx context.Context, link *models.DocumentLink) error {
	for _, existing := range r.links {
		if existing.LinkedFromID == link.LinkedFromID && existing.LinkedToID == link.LinkedToID {
			return fmt.Errorf("edge exists: %w", domain.ErrConflict)
		}
	}
	r.links = append(r.links, *link)
	return nil
}

func (r *fakeLinkRepo) DeleteFrom(ctx context.Context, docID string) error {
	kept := r.links[:0]
	for _, link := range r.links {
		if link.LinkedFromID != docID {
			kept = append(kept, link)
		}
	}
	r.links = kept
	return nil
}

func (r *fakeLinkRepo) ListFrom(ctx context.Context, docID string) ([]models.DocumentLink, error) {
	var out []models.DocumentLink
	for _, link := range r.links {
		if link.LinkedFromID == docID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (r *fakeLinkRepo) ListTo(ctx context.Context, docID string) ([]models.DocumentLink, error) {
	var out []models.DocumentLink
	for _, link := range r.links {
		if link.LinkedToID == docID {
			out = append(out, link)
		}
	}
	return out, nil
}

type fakeVoteRepo struct {
	votes map[int64][]models.HelpfulVote
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{votes: make(map[int64][]models.HelpfulVote)}
}

func (r *fakeVoteRepo) Add(ctx context.Context, vote *models.HelpfulVote) error {
	r.votes[vote.RevisionID] = append(r.votes[vote.RevisionID], *vote)
	return nil
}

func (r *fakeVoteRepo) AddMetadata(ctx context.Context, meta *models.HelpfulVoteMetadata) error {
	return nil
}

func (r *fakeVoteRepo) HasVoted(ctx context.Context, revisionID int64, creatorID, anonymousID string) (bool, error) {
	for _, vote := range r.votes[revisionID] {
		if creatorID != "" && vote.CreatorID != nil && *vote.CreatorID == creatorID {
			return true, nil
		}
		if creatorID == "" && anonymousID != "" && vote.AnonymousID == anonymousID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeVoteRepo) CountHelpfulSince(ctx context.Context, docID string, since time.Time) (int, error) {
	count := 0
	for _, votes := range r.votes {
		for _, vote := range votes {
			if vote.Helpful && vote.CreatedAt.After(since) {
				count++
			}
		}
	}
	return count, nil
}

// fakeRenderer expands [[Target]] wiki links the way the real renderer does,
// without pulling markdown into service tests.
type fakeRenderer struct{}

var fakeLinkPattern = regexp.MustCompile(`\[\[([^\]|]+)(?:\|([^\]]+))?\]\]`)

func fakeSlugify(title string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "-")
}

func (fakeRenderer) Render(ctx context.Context, content, locale, docID string) (string, error) {
	html, _, err := fakeRenderer{}.RenderWithLinks(ctx, content, locale, docID)
	return html, err
}

func (fakeRenderer) RenderWithLinks(ctx context.Context, content, locale, docID string) (string, []wikiSvc.CollectedLink, error) {
	var links []wikiSvc.CollectedLink
	html := fakeLinkPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := fakeLinkPattern.FindStringSubmatch(match)
		target := strings.TrimSpace(groups[1])
		label := target
		if groups[2] != "" {
			label = strings.TrimSpace(groups[2])
		}
		slug := fakeSlugify(target)
		links = append(links, wikiSvc.CollectedLink{Slug: slug, Locale: locale, Kind: "link"})
		return fmt.Sprintf(`<a href="/%s/kb/%s">%s</a>`, locale, slug, label)
	})
	return "<p>" + html + "</p>", links, nil
}

type fakeSearchable struct {
	indexed   map[string]*models.SearchRecord
	unindexed []string
	related   []models.RelatedDocument
	err       error
}

func newFakeSearchable() *fakeSearchable {
	return &fakeSearchable{indexed: make(map[string]*models.SearchRecord)}
}

func (s *fakeSearchable) Index(ctx context.Context, rec *models.SearchRecord) error {
	s.indexed[rec.ID] = rec
	return nil
}

func (s *fakeSearchable) Unindex(ctx context.Context, docID string) error {
	delete(s.indexed, docID)
	s.unindexed = append(s.unindexed, docID)
	return nil
}

func (s *fakeSearchable) MoreLikeThis(ctx context.Context, q wikiSvc.MoreLikeThisQuery) ([]models.RelatedDocument, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.related, nil
}

type fakeCache struct {
	entries map[string]any
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]any)}
}

func (c *fakeCache) Get(key string) (any, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Add(key string, value any) {
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = value
	}
}

func (c *fakeCache) Invalidate(key string) {
	delete(c.entries, key)
}
