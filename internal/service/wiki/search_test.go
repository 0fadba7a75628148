package wiki

import (
	"context"
	"testing"
	"time"

	models "github.com/Haizul/kitsune/internal/domain/models/wiki"
	wikiSvc "github.com/Haizul/kitsune/internal/domain/services/wiki"
)

type searchFixture struct {
	docRepo    *fakeDocRepo
	revRepo    *fakeRevRepo
	voteRepo   *fakeVoteRepo
	searchable *fakeSearchable
	svc        wikiSvc.SearchProjector
}

func newSearchFixture() *searchFixture {
	docRepo := newFakeDocRepo()
	revRepo := newFakeRevRepo()
	voteRepo := newFakeVoteRepo()
	searchable := newFakeSearchable()
	svc := NewSearchProjector(docRepo, revRepo, voteRepo, searchable, nil, testLogger())
	return &searchFixture{
		docRepo: docRepo, revRepo: revRepo, voteRepo: voteRepo,
		searchable: searchable, svc: svc,
	}
}

func (f *searchFixture) approvedDoc(t *testing.T, doc *models.Document, content string) *models.Document {
	t.Helper()
	ctx := context.Background()
	if err := f.docRepo.Create(ctx, doc); err != nil {
		t.Fatalf("create doc: %v", err)
	}
	now := time.Now().UTC()
	rev := &models.Revision{
		DocumentID: doc.ID, Content: content, Summary: "summary of " + doc.Slug,
		Keywords: "kw", CreatorID: "alice", IsApproved: true, ReviewedAt: &now,
	}
	if err := f.revRepo.Create(ctx, rev); err != nil {
		t.Fatalf("create rev: %v", err)
	}
	if _, err := f.docRepo.SetCurrentRevision(ctx, doc.ID, rev.ID, "<p>"+content+"</p>"); err != nil {
		t.Fatalf("set current: %v", err)
	}
	got, err := f.docRepo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("reload doc: %v", err)
	}
	return got
}

func TestProjectBuildsRecord(t *testing.T) {
	f := newSearchFixture()
	doc := f.approvedDoc(t, &models.Document{
		Title: "Install", Slug: "install", Locale: "en-US",
		Category: models.CategoryHowTo,
		Topics:   []string{"setup"}, Products: []string{"browser"},
	}, "How to install.")

	rec, err := f.svc.Project(context.Background(), doc)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if rec == nil {
		t.Fatal("record = nil, want a projection")
	}
	if rec.URL != "/en-US/kb/install" {
		t.Errorf("url = %q, want /en-US/kb/install", rec.URL)
	}
	if rec.Summary != "summary of install" {
		t.Errorf("summary = %q, want the current revision's", rec.Summary)
	}
	if rec.CurrentRevisionID == 0 {
		t.Error("record should carry the current revision id")
	}
	if len(rec.Topics) != 1 || rec.Topics[0] != "setup" {
		t.Errorf("topics = %v, want [setup]", rec.Topics)
	}
}

func TestProjectSkipsUnindexable(t *testing.T) {
	f := newSearchFixture()
	ctx := context.Background()

	noCurrent := &models.Document{Title: "Draft", Slug: "draft", Locale: "en-US", Category: models.CategoryHowTo}
	if err := f.docRepo.Create(ctx, noCurrent); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, err := f.svc.Project(ctx, noCurrent)
	if err != nil || rec != nil {
		t.Errorf("no current revision: got %v, %v; want nil, nil", rec, err)
	}

	redirect := f.approvedDoc(t, &models.Document{
		Title: "Old Name", Slug: "old-name", Locale: "en-US", Category: models.CategoryHowTo,
	}, "ignored")
	redirect.HTML = `<p>REDIRECT <a href="/en-US/kb/new-name">New Name</a></p>`
	rec, err = f.svc.Project(ctx, redirect)
	if err != nil || rec != nil {
		t.Errorf("redirect: got %v, %v; want nil, nil", rec, err)
	}
}

func TestProjectInheritsTaxonomyFromParent(t *testing.T) {
	f := newSearchFixture()
	parent := f.approvedDoc(t, &models.Document{
		Title: "Install", Slug: "install", Locale: "en-US",
		Category: models.CategoryHowTo, IsLocalizable: true,
		Topics: []string{"setup"}, Products: []string{"browser"},
	}, "canonical")
	translation := f.approvedDoc(t, &models.Document{
		Title: "Installation", Slug: "installation", Locale: "de",
		Category: models.CategoryHowTo, ParentID: &parent.ID,
	}, "übersetzt")

	rec, err := f.svc.Project(context.Background(), translation)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if rec.ParentID != parent.ID {
		t.Errorf("parent id = %q, want %q", rec.ParentID, parent.ID)
	}
	if len(rec.Topics) != 1 || rec.Topics[0] != "setup" {
		t.Errorf("topics = %v, want inherited [setup]", rec.Topics)
	}
	if len(rec.Products) != 1 || rec.Products[0] != "browser" {
		t.Errorf("products = %v, want inherited [browser]", rec.Products)
	}
}

func TestProjectCountsVotesConditionally(t *testing.T) {
	ctx := context.Background()
	creator := "voter"

	vote := func(f *searchFixture, revID int64) {
		if err := f.voteRepo.Add(ctx, &models.HelpfulVote{
			RevisionID: revID, Helpful: true, CreatedAt: time.Now().UTC(), CreatorID: &creator,
		}); err != nil {
			panic(err)
		}
	}

	t.Run("ordinary article counts votes", func(t *testing.T) {
		f := newSearchFixture()
		doc := f.approvedDoc(t, &models.Document{
			Title: "Install", Slug: "install", Locale: "en-US", Category: models.CategoryHowTo,
		}, "content")
		vote(f, *doc.CurrentRevisionID)

		rec, err := f.svc.Project(ctx, doc)
		if err != nil {
			t.Fatalf("project: %v", err)
		}
		if rec.RecentHelpfulVotes != 1 {
			t.Errorf("recent helpful votes = %d, want 1", rec.RecentHelpfulVotes)
		}
	})

	t.Run("navigation docs skip vote counting", func(t *testing.T) {
		f := newSearchFixture()
		doc := f.approvedDoc(t, &models.Document{
			Title: "Sidebar", Slug: "sidebar", Locale: "en-US", Category: models.CategoryNavigation,
		}, "content")
		vote(f, *doc.CurrentRevisionID)

		rec, err := f.svc.Project(ctx, doc)
		if err != nil {
			t.Fatalf("project: %v", err)
		}
		if rec.RecentHelpfulVotes != 0 {
			t.Errorf("recent helpful votes = %d, want 0", rec.RecentHelpfulVotes)
		}
	})

	t.Run("templates skip vote counting", func(t *testing.T) {
		f := newSearchFixture()
		doc := f.approvedDoc(t, &models.Document{
			Title: "Template:closebutton", Slug: "template-closebutton", Locale: "en-US",
			Category: models.CategoryTemplates, IsTemplate: true,
		}, "content")
		vote(f, *doc.CurrentRevisionID)

		rec, err := f.svc.Project(ctx, doc)
		if err != nil {
			t.Fatalf("project: %v", err)
		}
		if rec.RecentHelpfulVotes != 0 {
			t.Errorf("recent helpful votes = %d, want 0", rec.RecentHelpfulVotes)
		}
	})
}

func TestSyncIndexesAndUnindexes(t *testing.T) {
	ctx := context.Background()
	f := newSearchFixture()
	doc := f.approvedDoc(t, &models.Document{
		Title: "Install", Slug: "install", Locale: "en-US", Category: models.CategoryHowTo,
	}, "content")

	if err := f.svc.Sync(ctx, doc); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if _, ok := f.searchable.indexed[doc.ID]; !ok {
		t.Fatal("document not indexed")
	}

	doc.CurrentRevisionID = nil
	if err := f.svc.Sync(ctx, doc); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if _, ok := f.searchable.indexed[doc.ID]; ok {
		t.Error("document should be unindexed once no revision is current")
	}
}
