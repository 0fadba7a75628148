package wiki

import (
	"testing"
	"time"
)

func TestRevisionIsRejected(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name       string
		reviewedAt *time.Time
		approved   bool
		want       bool
	}{
		{"unreviewed", nil, false, false},
		{"approved", &now, true, false},
		{"reviewed without approval", &now, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rev := &Revision{ReviewedAt: tt.reviewedAt, IsApproved: tt.approved}
			if got := rev.IsRejected(); got != tt.want {
				t.Errorf("IsRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRevisionFilterMatches(t *testing.T) {
	now := time.Now()
	unreviewed := &Revision{}
	approved := &Revision{ReviewedAt: &now, IsApproved: true}
	rejected := &Revision{ReviewedAt: &now, IsApproved: false}
	localizable := &Revision{ReviewedAt: &now, IsApproved: true, IsReadyForLocalization: true}

	tests := []struct {
		name   string
		filter RevisionFilter
		rev    *Revision
		want   bool
	}{
		{"any matches unreviewed", RevisionAny, unreviewed, true},
		{"any matches rejected", RevisionAny, rejected, true},
		{"approved rejects unreviewed", RevisionApproved, unreviewed, false},
		{"approved matches approved", RevisionApproved, approved, true},
		{"localizable rejects plain approved", RevisionLocalizable, approved, false},
		{"localizable matches ready", RevisionLocalizable, localizable, true},
		{"unrejected matches unreviewed", RevisionUnrejected, unreviewed, true},
		{"unrejected matches approved", RevisionUnrejected, approved, true},
		{"unrejected rejects rejected", RevisionUnrejected, rejected, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.rev); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("category %d should be valid", c)
		}
	}
	for _, c := range []Category{0, 15, 70} {
		if c.Valid() {
			t.Errorf("category %d should be invalid", c)
		}
	}
}
