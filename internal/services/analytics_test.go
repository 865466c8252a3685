package services

import (
	"testing"
	"time"

	"github.com/findajob/jobboard/internal/models"
)

func scoredApplication(id uint, status models.ApplicationStatus, cv, letter *int, applied time.Time) models.Application {
	app := models.Application{ID: id, Status: status, AppliedAt: applied}
	app.User.Email = "user" + string(rune('a'+id)) + "@example.com"
	if cv != nil {
		app.CVDocument = &models.UserDocument{AIScore: cv}
	}
	if letter != nil {
		app.CoverLetterDocument = &models.UserDocument{AIScore: letter}
	}
	return app
}

func analyticsFixture() []models.Application {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []models.Application{
		scoredApplication(1, models.StatusUnderReview, intPtr(60), intPtr(70), base),
		scoredApplication(2, models.StatusShortlisted, intPtr(80), nil, base.Add(time.Hour)),
		scoredApplication(3, models.StatusUnderReview, nil, intPtr(50), base.Add(2*time.Hour)),
	}
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(analyticsFixture())

	if stats.Total != 3 {
		t.Fatalf("expected total 3, got %d", stats.Total)
	}
	if stats.AverageCVScore == nil || *stats.AverageCVScore != 70 {
		t.Fatalf("expected average CV score 70, got %v", stats.AverageCVScore)
	}
	if stats.AverageCoverLetterScore == nil || *stats.AverageCoverLetterScore != 60 {
		t.Fatalf("expected average cover letter score 60, got %v", stats.AverageCoverLetterScore)
	}
	if len(stats.ByStatus) != len(models.AllApplicationStatuses) {
		t.Fatalf("expected every status listed, got %d", len(stats.ByStatus))
	}

	want := map[models.ApplicationStatus]struct {
		count int
		pct   float64
	}{
		models.StatusUnderReview:  {2, 66.7},
		models.StatusShortlisted:  {1, 33.3},
		models.StatusInterviewing: {0, 0},
	}
	for _, sc := range stats.ByStatus {
		w, ok := want[sc.Status]
		if !ok {
			continue
		}
		if sc.Count != w.count || sc.Percentage != w.pct {
			t.Fatalf("%s: expected %d (%.1f%%), got %d (%.1f%%)", sc.Status, w.count, w.pct, sc.Count, sc.Percentage)
		}
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.Total != 0 || stats.AverageCVScore != nil || stats.AverageCoverLetterScore != nil {
		t.Fatalf("unexpected stats for no applications: %+v", stats)
	}
	for _, sc := range stats.ByStatus {
		if sc.Count != 0 || sc.Percentage != 0 {
			t.Fatalf("expected zero counts, got %+v", sc)
		}
	}
}

func TestSortApplications(t *testing.T) {
	tests := []struct {
		key  string
		want []uint
	}{
		{key: "", want: []uint{2, 1, 3}},
		{key: SortByCVScore, want: []uint{2, 1, 3}},
		{key: SortByCoverLetterScore, want: []uint{1, 3, 2}},
		{key: SortNewest, want: []uint{3, 2, 1}},
		{key: SortOldest, want: []uint{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run("sort="+tt.key, func(t *testing.T) {
			apps := analyticsFixture()
			SortApplications(apps, tt.key)
			for i, id := range tt.want {
				if apps[i].ID != id {
					t.Fatalf("position %d: expected %d, got %d", i, id, apps[i].ID)
				}
			}
		})
	}
}

func TestSortApplicationsTieBreaksOnNewest(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	apps := []models.Application{
		scoredApplication(1, models.StatusUnderReview, intPtr(70), nil, base),
		scoredApplication(2, models.StatusUnderReview, intPtr(70), nil, base.Add(time.Minute)),
	}
	SortApplications(apps, SortByCVScore)
	if apps[0].ID != 2 {
		t.Fatalf("expected the newer application first on equal scores")
	}
}

func TestFilterApplications(t *testing.T) {
	tests := []struct {
		name   string
		filter ApplicantFilter
		want   []uint
	}{
		{name: "no filter", filter: ApplicantFilter{}, want: []uint{1, 2, 3}},
		{name: "status", filter: ApplicantFilter{Status: models.StatusUnderReview}, want: []uint{1, 3}},
		{name: "min cv score excludes unscored", filter: ApplicantFilter{MinCVScore: intPtr(60)}, want: []uint{1, 2}},
		{name: "min cover letter score", filter: ApplicantFilter{MinCoverLetterScore: intPtr(60)}, want: []uint{1}},
		{name: "email search", filter: ApplicantFilter{Search: "USERC@"}, want: []uint{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterApplications(analyticsFixture(), tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %d applications", tt.want, len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("position %d: expected %d, got %d", i, id, got[i].ID)
				}
			}
		})
	}
}
