package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
)

type extractionFixture struct {
	db       *gorm.DB
	svc      ExtractionService
	gen      *stubGenerator
	notifier *recordingNotifier
	admin    *models.User
}

func extractedJSON(t *testing.T, company, category string, requirements ...string) string {
	t.Helper()
	payload := models.ExtractedPayload{
		Company: models.ExtractedCompany{Name: company, Website: "https://example.com"},
		JobListing: models.ExtractedListing{
			Title:             "Data Analyst",
			Description:       "Analyse customer data",
			Location:          "Nairobi",
			Category:          category,
			Terms:             "Full Time",
			ApplicationMethod: "email",
			EmployerEmail:     "jobs@example.com",
			ExpiryDate:        "2030-01-31",
		},
	}
	for _, r := range requirements {
		payload.Requirements = append(payload.Requirements, models.ExtractedRequirement{Description: r})
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return string(data)
}

func newExtractionFixture(t *testing.T, response string) *extractionFixture {
	t.Helper()
	db := newTestDB(t)
	gen := &stubGenerator{response: response}
	notifier := &recordingNotifier{}

	svc := NewExtractionService(
		db,
		repositories.NewListingRepository(db),
		repositories.NewCategoryRepository(db),
		repositories.NewCompanyRepository(db),
		newStubOracle(gen),
		NewPreviewStore(time.Minute),
		notifier,
		nil,
	)
	return &extractionFixture{
		db:       db,
		svc:      svc,
		gen:      gen,
		notifier: notifier,
		admin:    &models.User{ID: 1, Role: models.RoleAdmin},
	}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func TestPreviewWritesNothingAndSuggestsCompanies(t *testing.T) {
	f := newExtractionFixture(t, extractedJSON(t, "Safaricom Ltd", "ICT", "SQL"))
	existing := createCompany(t, f.db, "Safaricom")
	createCompany(t, f.db, "Equity Bank")

	preview, err := f.svc.Preview(context.Background(), f.admin, "We are hiring a data analyst...")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	if preview.Token == "" {
		t.Fatalf("expected a preview token")
	}
	if len(preview.SimilarCompanies) != 1 || preview.SimilarCompanies[0].ID != existing.ID {
		t.Fatalf("expected Safaricom as the only similar company, got %+v", preview.SimilarCompanies)
	}
	if preview.SimilarCompanies[0].Similarity != 0.818 {
		t.Fatalf("expected similarity 0.818, got %v", preview.SimilarCompanies[0].Similarity)
	}
	if n := countRows(t, f.db, &models.JobListing{}); n != 0 {
		t.Fatalf("preview must not persist listings, found %d", n)
	}
	if n := countRows(t, f.db, &models.Company{}); n != 2 {
		t.Fatalf("preview must not persist companies, found %d", n)
	}
}

func TestConfirmCreatesListingWithNewCompany(t *testing.T) {
	f := newExtractionFixture(t, extractedJSON(t, "Safaricom Ltd", "ICT", "SQL", "Python"))
	ict := createCategory(t, f.db, "ICT", "developer")

	preview, err := f.svc.Preview(context.Background(), f.admin, "posting")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	listing, err := f.svc.Confirm(context.Background(), f.admin, preview.Token, models.ConfirmExtractionRequest{CompanyChoice: CompanyChoiceNew})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if listing.CategoryID != ict.ID {
		t.Fatalf("expected existing ICT category reused, got %d", listing.CategoryID)
	}
	if listing.Company == nil || listing.Company.Name != "Safaricom Ltd" || listing.CompanyName != "Safaricom Ltd" {
		t.Fatalf("unexpected company: %+v / %q", listing.Company, listing.CompanyName)
	}
	if len(listing.Requirements) != 2 || listing.Requirements[0].Description != "SQL" || !listing.Requirements[0].IsMandatory {
		t.Fatalf("unexpected requirements: %+v", listing.Requirements)
	}
	if !listing.IsActive || listing.ExpiryDate == nil || listing.ExpiryDate.Format("2006-01-02") != "2030-01-31" {
		t.Fatalf("unexpected listing state: active=%v expiry=%v", listing.IsActive, listing.ExpiryDate)
	}
	if len(f.notifier.ids) != 1 || f.notifier.ids[0] != listing.ID {
		t.Fatalf("expected listing enqueued for notification, got %v", f.notifier.ids)
	}
	if f.gen.calls() != 1 {
		t.Fatalf("confirm must not call the oracle again, got %d calls", f.gen.calls())
	}

	_, err = f.svc.Confirm(context.Background(), f.admin, preview.Token, models.ConfirmExtractionRequest{CompanyChoice: CompanyChoiceNew})
	if !errors.Is(err, ErrPreviewNotFound) {
		t.Fatalf("expected the preview to be consumed, got %v", err)
	}
}

func TestConfirmWithExistingCompany(t *testing.T) {
	f := newExtractionFixture(t, extractedJSON(t, "Safaricom Ltd", "Telecoms"))
	existing := createCompany(t, f.db, "Safaricom")

	preview, err := f.svc.Preview(context.Background(), f.admin, "posting")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	listing, err := f.svc.Confirm(context.Background(), f.admin, preview.Token, models.ConfirmExtractionRequest{
		CompanyChoice: CompanyChoiceExisting,
		CompanyID:     &existing.ID,
	})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if listing.CompanyID == nil || *listing.CompanyID != existing.ID {
		t.Fatalf("expected listing attached to company %d, got %v", existing.ID, listing.CompanyID)
	}
	if n := countRows(t, f.db, &models.Company{}); n != 1 {
		t.Fatalf("expected no new company, found %d", n)
	}
	if listing.Category.Name != "Telecoms" {
		t.Fatalf("expected new category created, got %q", listing.Category.Name)
	}
}

func TestConfirmIsAtomic(t *testing.T) {
	f := newExtractionFixture(t, extractedJSON(t, "Brand New Co", "Brand New Category", "SQL", strings.Repeat("x", 300)))

	preview, err := f.svc.Preview(context.Background(), f.admin, "posting")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	_, err = f.svc.Confirm(context.Background(), f.admin, preview.Token, models.ConfirmExtractionRequest{CompanyChoice: CompanyChoiceNew})
	if err == nil {
		t.Fatalf("expected the oversized requirement to fail the confirm")
	}

	for _, model := range []any{&models.JobListing{}, &models.JobRequirement{}, &models.Company{}, &models.JobCategory{}} {
		if n := countRows(t, f.db, model); n != 0 {
			t.Fatalf("expected nothing persisted for %T, found %d", model, n)
		}
	}
	if len(f.notifier.ids) != 0 {
		t.Fatalf("no notification expected after rollback")
	}

	_, err = f.svc.Confirm(context.Background(), f.admin, preview.Token, models.ConfirmExtractionRequest{CompanyChoice: "maybe"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected the preview to survive a failed confirm, got %v", err)
	}
}

func TestConfirmPreviewScoping(t *testing.T) {
	f := newExtractionFixture(t, extractedJSON(t, "Acme", "ICT"))

	preview, err := f.svc.Preview(context.Background(), f.admin, "posting")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	otherAdmin := &models.User{ID: 2, Role: models.RoleAdmin}
	tests := []struct {
		name  string
		actor *models.User
		token string
		want  error
	}{
		{name: "unknown token", actor: f.admin, token: "missing", want: ErrPreviewNotFound},
		{name: "another user's token", actor: otherAdmin, token: preview.Token, want: ErrPreviewNotFound},
		{name: "job seeker", actor: &models.User{ID: 3, Role: models.RoleJobSeeker}, token: preview.Token, want: ErrForbidden},
		{name: "employer without company", actor: &models.User{ID: 4, Role: models.RoleEmployer}, token: preview.Token, want: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Confirm(context.Background(), tt.actor, tt.token, models.ConfirmExtractionRequest{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPreviewFailures(t *testing.T) {
	f := newExtractionFixture(t, "not json at all")

	if _, err := f.svc.Preview(context.Background(), f.admin, "posting"); !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable for malformed output, got %v", err)
	}
	if _, err := f.svc.Preview(context.Background(), f.admin, "   "); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty text, got %v", err)
	}

	db := newTestDB(t)
	disabled := NewExtractionService(db,
		repositories.NewListingRepository(db),
		repositories.NewCategoryRepository(db),
		repositories.NewCompanyRepository(db),
		newStubOracle(nil),
		NewPreviewStore(time.Minute),
		nil,
		nil,
	)
	if _, err := disabled.Preview(context.Background(), f.admin, "posting"); !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable without an oracle, got %v", err)
	}
}

func TestPreviewStoreExpiry(t *testing.T) {
	store := NewPreviewStore(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	p := store.Put(7, models.ListingPreview{})
	if _, ok := store.Get(7, p.Token); !ok {
		t.Fatalf("expected fresh preview")
	}

	now = now.Add(time.Minute)
	if _, ok := store.Get(7, p.Token); ok {
		t.Fatalf("expected preview expired after ttl")
	}
}

func TestConcurrentConfirmsCommitOnce(t *testing.T) {
	f := newExtractionFixture(t, extractedJSON(t, "Acme", "ICT", "Go", "SQL"))

	preview, err := f.svc.Preview(context.Background(), f.admin, "posting")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	const callers = 4
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		committed int
		missing   int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Confirm(context.Background(), f.admin, preview.Token, models.ConfirmExtractionRequest{CompanyChoice: CompanyChoiceNew})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				committed++
			case errors.Is(err, ErrPreviewNotFound):
				missing++
			default:
				t.Errorf("unexpected confirm error: %v", err)
			}
		}()
	}
	wg.Wait()

	if committed != 1 || missing != callers-1 {
		t.Fatalf("expected one commit and %d missing previews, got %d and %d", callers-1, committed, missing)
	}
	if n := countRows(t, f.db, &models.JobListing{}); n != 1 {
		t.Fatalf("expected one listing, found %d", n)
	}
	if n := countRows(t, f.db, &models.JobRequirement{}); n != 2 {
		t.Fatalf("expected two requirements, found %d", n)
	}
	if len(f.notifier.ids) != 1 {
		t.Fatalf("expected one notification enqueue, got %v", f.notifier.ids)
	}

	_, err = f.svc.Confirm(context.Background(), f.admin, preview.Token, models.ConfirmExtractionRequest{})
	if !errors.Is(err, ErrPreviewNotFound) {
		t.Fatalf("expected a committed preview to be gone, got %v", err)
	}
}

func TestPreviewStoreTake(t *testing.T) {
	store := NewPreviewStore(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	p := store.Put(7, models.ListingPreview{})

	if _, _, ok := store.Take(8, p.Token); ok {
		t.Fatalf("expected another user's take to fail")
	}

	_, restore, ok := store.Take(7, p.Token)
	if !ok {
		t.Fatalf("expected take to succeed")
	}
	if _, _, ok := store.Take(7, p.Token); ok {
		t.Fatalf("expected a taken preview to be unavailable")
	}

	restore()
	if _, ok := store.Get(7, p.Token); !ok {
		t.Fatalf("expected restored preview")
	}

	_, restore, _ = store.Take(7, p.Token)
	now = now.Add(time.Minute)
	restore()
	if _, ok := store.Get(7, p.Token); ok {
		t.Fatalf("expected an expired preview not to be restored")
	}
}
