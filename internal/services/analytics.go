package services

import (
	"math"
	"sort"
	"strings"

	"github.com/findajob/jobboard/internal/models"
)

const (
	SortByCVScore          = "cv_score"
	SortByCoverLetterScore = "cover_letter_score"
	SortNewest             = "newest"
	SortOldest             = "oldest"
)

type ApplicantFilter struct {
	// Search matches the applicant's email or full name, case-insensitively.
	Search              string
	Status              models.ApplicationStatus
	MinCVScore          *int
	MinCoverLetterScore *int
	Sort                string
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func averageScore(scores []*int) *float64 {
	sum, n := 0, 0
	for _, s := range scores {
		if s == nil {
			continue
		}
		sum += *s
		n++
	}
	if n == 0 {
		return nil
	}
	avg := round(float64(sum)/float64(n), 2)
	return &avg
}

// ComputeStats counts applications per status over the full status set and
// averages the scores, leaving missing scores out of the average.
func ComputeStats(apps []models.Application) models.ApplicationStats {
	total := len(apps)
	counts := make(map[models.ApplicationStatus]int, len(models.AllApplicationStatuses))
	cvScores := make([]*int, 0, total)
	letterScores := make([]*int, 0, total)
	for i := range apps {
		counts[apps[i].Status]++
		cvScores = append(cvScores, apps[i].CVScore())
		letterScores = append(letterScores, apps[i].CoverLetterScore())
	}

	byStatus := make([]models.StatusCount, 0, len(models.AllApplicationStatuses))
	for _, status := range models.AllApplicationStatuses {
		pct := 0.0
		if total > 0 {
			pct = round(float64(counts[status])*100/float64(total), 1)
		}
		byStatus = append(byStatus, models.StatusCount{Status: status, Count: counts[status], Percentage: pct})
	}

	return models.ApplicationStats{
		Total:                   total,
		ByStatus:                byStatus,
		AverageCVScore:          averageScore(cvScores),
		AverageCoverLetterScore: averageScore(letterScores),
	}
}

func applicantName(app *models.Application) string {
	if app.User.Profile != nil && app.User.Profile.FullName != nil {
		return *app.User.Profile.FullName
	}
	return ""
}

func atLeast(score *int, min *int) bool {
	if min == nil {
		return true
	}
	return score != nil && *score >= *min
}

// FilterApplications applies the search, status and minimum-score filters.
// A minimum-score filter excludes applications without that score.
func FilterApplications(apps []models.Application, f ApplicantFilter) []models.Application {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Application, 0, len(apps))
	for i := range apps {
		app := &apps[i]
		if search != "" &&
			!strings.Contains(strings.ToLower(app.User.Email), search) &&
			!strings.Contains(strings.ToLower(applicantName(app)), search) {
			continue
		}
		if f.Status != "" && app.Status != f.Status {
			continue
		}
		if !atLeast(app.CVScore(), f.MinCVScore) || !atLeast(app.CoverLetterScore(), f.MinCoverLetterScore) {
			continue
		}
		out = append(out, *app)
	}
	return out
}

// scoreDesc orders by score descending with missing scores last. The second
// result is false when the two scores are equal.
func scoreDesc(a, b *int) (bool, bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return false, true
	case b == nil:
		return true, true
	case *a == *b:
		return false, false
	}
	return *a > *b, true
}

func newerFirst(a, b *models.Application) bool {
	if !a.AppliedAt.Equal(b.AppliedAt) {
		return a.AppliedAt.After(b.AppliedAt)
	}
	return a.ID > b.ID
}

// SortApplications orders apps in place. The default key is the CV score,
// highest first with unscored last, ties broken by the newest application.
func SortApplications(apps []models.Application, key string) {
	var less func(a, b *models.Application) bool
	switch key {
	case SortNewest:
		less = newerFirst
	case SortOldest:
		less = func(a, b *models.Application) bool { return newerFirst(b, a) }
	case SortByCoverLetterScore:
		less = func(a, b *models.Application) bool {
			if before, decided := scoreDesc(a.CoverLetterScore(), b.CoverLetterScore()); decided {
				return before
			}
			return newerFirst(a, b)
		}
	default:
		less = func(a, b *models.Application) bool {
			if before, decided := scoreDesc(a.CVScore(), b.CVScore()); decided {
				return before
			}
			return newerFirst(a, b)
		}
	}

	sort.SliceStable(apps, func(i, j int) bool { return less(&apps[i], &apps[j]) })
}
