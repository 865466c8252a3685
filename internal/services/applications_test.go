package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
)

type applicationFixture struct {
	db       *gorm.DB
	svc      ApplicationService
	gen      *stubGenerator
	mailer   *stubMailer
	company  *models.Company
	employer *models.User
	seeker   *models.User
	job      *models.JobListing
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	t.Helper()
	db := newTestDB(t)
	gen := &stubGenerator{}
	mailer := &stubMailer{}
	storage := NewStorageService(t.TempDir())
	oracle := newStubOracle(gen)

	docRepo := repositories.NewDocumentRepository(db)
	documents := NewDocumentService(db, docRepo,
		repositories.NewUserRepository(db),
		repositories.NewCategoryRepository(db),
		storage, NewTextExtractor(), oracle, nil)

	svc := NewApplicationService(db,
		repositories.NewApplicationRepository(db),
		repositories.NewListingRepository(db),
		docRepo, documents, NewDocumentGenerator(), oracle, mailer, nil)

	category := createCategory(t, db, "ICT", "developer")
	company := createCompany(t, db, "Acme")
	return &applicationFixture{
		db:       db,
		svc:      svc,
		gen:      gen,
		mailer:   mailer,
		company:  company,
		employer: createUser(t, db, "hr@acme.com", models.RoleEmployer, &company.ID),
		seeker:   createUser(t, db, "jane@example.com", models.RoleJobSeeker, nil),
		job:      createListing(t, db, "Backend Engineer", category, company),
	}
}

func (f *applicationFixture) addCV(t *testing.T, user *models.User, score *int) *models.UserDocument {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cv.txt")
	if err := os.WriteFile(path, []byte("cv"), 0o644); err != nil {
		t.Fatalf("write cv: %v", err)
	}
	doc := &models.UserDocument{
		UserID:           user.ID,
		DocumentType:     models.DocumentCV,
		FileName:         "cv.txt",
		FilePath:         path,
		ExtractedContent: "Go developer",
		AIScore:          score,
	}
	if err := f.db.Omit("User", "CVAnalysis", "CoverLetterAnalysis").Create(doc).Error; err != nil {
		t.Fatalf("create cv: %v", err)
	}
	return doc
}

func (f *applicationFixture) apply(t *testing.T, user *models.User, in ApplyInput) *models.ApplyResponse {
	t.Helper()
	resp, err := f.svc.Apply(context.Background(), user, f.job.ID, in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return resp
}

func TestApplyUsesCurrentCVAndSendsMaterials(t *testing.T) {
	f := newApplicationFixture(t)
	cv := f.addCV(t, f.seeker, intPtr(72))

	resp := f.apply(t, f.seeker, ApplyInput{CoverLetterText: "  I am keen.  "})

	app := resp.Application
	if app.Status != models.StatusUnderReview {
		t.Fatalf("expected Under Review, got %q", app.Status)
	}
	if app.CVDocumentID == nil || *app.CVDocumentID != cv.ID {
		t.Fatalf("expected current CV attached, got %v", app.CVDocumentID)
	}
	if app.CoverLetterText != "I am keen." {
		t.Fatalf("expected trimmed letter text, got %q", app.CoverLetterText)
	}
	if len(resp.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", resp.Warnings)
	}
	if f.mailer.count() != 1 || f.mailer.sent[0].To != f.seeker.Email {
		t.Fatalf("expected materials mailed to the applicant, got %+v", f.mailer.sent)
	}
	if len(f.mailer.sent[0].Attachments) != 1 || f.mailer.sent[0].Attachments[0].Name != "CV.txt" {
		t.Fatalf("expected the CV attached, got %+v", f.mailer.sent[0].Attachments)
	}
}

func TestApplyMailFailureKeepsApplication(t *testing.T) {
	f := newApplicationFixture(t)
	f.addCV(t, f.seeker, nil)
	f.mailer.fail = true

	resp := f.apply(t, f.seeker, ApplyInput{})
	if resp.Application.ID == 0 {
		t.Fatalf("expected the application stored")
	}
	if len(resp.Warnings) != 1 {
		t.Fatalf("expected one mail warning, got %v", resp.Warnings)
	}
	if n := countRows(t, f.db, &models.Application{}); n != 1 {
		t.Fatalf("expected one application, found %d", n)
	}
}

func TestApplyAllowsRepeatApplications(t *testing.T) {
	f := newApplicationFixture(t)
	f.addCV(t, f.seeker, nil)

	first := f.apply(t, f.seeker, ApplyInput{})
	second := f.apply(t, f.seeker, ApplyInput{})
	if first.Application.ID == second.Application.ID {
		t.Fatalf("expected two distinct applications")
	}
	if n := countRows(t, f.db, &models.Application{}); n != 2 {
		t.Fatalf("expected two applications, found %d", n)
	}
}

func TestApplyRejections(t *testing.T) {
	f := newApplicationFixture(t)
	other := createUser(t, f.db, "other@example.com", models.RoleJobSeeker, nil)
	othersCV := f.addCV(t, other, nil)

	if _, err := f.svc.Apply(context.Background(), f.seeker, f.job.ID, ApplyInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a CV, got %v", err)
	}
	if _, err := f.svc.Apply(context.Background(), f.seeker, f.job.ID, ApplyInput{CVDocumentID: &othersCV.ID}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another user's CV, got %v", err)
	}

	score := 90
	cv := f.addCV(t, f.seeker, &score)
	letter := &models.UserDocument{UserID: f.seeker.ID, DocumentType: models.DocumentCoverLetter, FileName: "letter.txt", FilePath: "letter.txt", ExtractedContent: "Dear team"}
	if err := f.db.Omit("User", "CVAnalysis", "CoverLetterAnalysis").Create(letter).Error; err != nil {
		t.Fatalf("create letter: %v", err)
	}
	mismatched := []struct {
		name string
		in   ApplyInput
	}{
		{name: "cv passed as cover letter", in: ApplyInput{CVDocumentID: &cv.ID, CoverLetterDocumentID: &cv.ID}},
		{name: "cover letter passed as cv", in: ApplyInput{CVDocumentID: &letter.ID}},
	}
	for _, tt := range mismatched {
		if _, err := f.svc.Apply(context.Background(), f.seeker, f.job.ID, tt.in); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%s: expected ErrInvalidArgument, got %v", tt.name, err)
		}
	}
	if n := countRows(t, f.db, &models.Application{}); n != 0 {
		t.Fatalf("expected no application for mismatched documents, found %d", n)
	}

	if _, err := f.svc.Apply(context.Background(), f.seeker, 9999, ApplyInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a missing job, got %v", err)
	}

	if err := repositories.NewListingRepository(f.db).SetActive(f.job.ID, false); err != nil {
		t.Fatalf("close job: %v", err)
	}
	if _, err := f.svc.Apply(context.Background(), other, f.job.ID, ApplyInput{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for a closed job, got %v", err)
	}
}

func TestApplyGeneratesCoverLetter(t *testing.T) {
	f := newApplicationFixture(t)
	f.addCV(t, f.seeker, intPtr(80))
	f.gen.response = `{
		"content": "Dear Hiring Manager,\n\nI would love to join Acme.\n\nSincerely,\nJane",
		"analysis": {"professionalism_score": 18, "content_score": 35, "tone_score": 17, "impact_score": 15}
	}`

	resp := f.apply(t, f.seeker, ApplyInput{GenerateCoverLetter: true, Format: FormatDOCX})

	if len(resp.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", resp.Warnings)
	}
	letter := resp.Application.CoverLetterDocument
	if letter == nil || letter.DocumentType != models.DocumentCoverLetter {
		t.Fatalf("expected a generated cover letter document, got %+v", letter)
	}
	if letter.AIScore == nil || *letter.AIScore != 85 {
		t.Fatalf("expected generated letter scored 85, got %v", letter.AIScore)
	}
	if filepath.Ext(letter.FileName) != ".docx" {
		t.Fatalf("expected a docx letter, got %q", letter.FileName)
	}
	if len(f.mailer.sent[0].Attachments) != 2 {
		t.Fatalf("expected letter and CV attached, got %+v", f.mailer.sent[0].Attachments)
	}
}

func TestApplyCoverLetterGenerationFailureIsAWarning(t *testing.T) {
	f := newApplicationFixture(t)
	f.addCV(t, f.seeker, nil)
	f.gen.err = errors.New("quota exceeded")

	resp := f.apply(t, f.seeker, ApplyInput{GenerateCoverLetter: true})
	if resp.Application.CoverLetterDocumentID != nil {
		t.Fatalf("expected no letter attached")
	}
	if len(resp.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", resp.Warnings)
	}
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	f := newApplicationFixture(t)
	f.addCV(t, f.seeker, nil)
	app := f.apply(t, f.seeker, ApplyInput{}).Application

	path := []models.ApplicationStatus{
		models.StatusOffer,
		models.StatusUnderReview,
		models.StatusRejected,
		models.StatusShortlisted,
		models.StatusInterviewing,
	}
	for _, status := range path {
		updated, err := f.svc.UpdateStatus(context.Background(), f.employer, app.ID, status)
		if err != nil {
			t.Fatalf("-> %s: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("expected %s, got %s", status, updated.Status)
		}
	}

	stored, err := repositories.NewApplicationRepository(f.db).FindByID(app.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.StatusInterviewing {
		t.Fatalf("expected Interviewing persisted, got %s", stored.Status)
	}
}

func TestUpdateStatusPermissions(t *testing.T) {
	f := newApplicationFixture(t)
	f.addCV(t, f.seeker, nil)
	app := f.apply(t, f.seeker, ApplyInput{}).Application

	rival := createCompany(t, f.db, "Rival")
	tests := []struct {
		name   string
		actor  *models.User
		status models.ApplicationStatus
		want   error
	}{
		{name: "admin", actor: &models.User{ID: 900, Role: models.RoleAdmin}, status: models.StatusShortlisted},
		{name: "owning employer", actor: f.employer, status: models.StatusRejected},
		{name: "other employer", actor: &models.User{ID: 901, Role: models.RoleEmployer, CompanyID: &rival.ID}, status: models.StatusOffer, want: ErrForbidden},
		{name: "applicant", actor: f.seeker, status: models.StatusOffer, want: ErrForbidden},
		{name: "unknown status", actor: f.employer, status: "Hired", want: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateStatus(context.Background(), tt.actor, app.ID, tt.status)
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBulkUpdateStatusIsAllOrNothing(t *testing.T) {
	f := newApplicationFixture(t)
	f.addCV(t, f.seeker, nil)
	a := f.apply(t, f.seeker, ApplyInput{}).Application
	b := f.apply(t, f.seeker, ApplyInput{}).Application

	rival := createCompany(t, f.db, "Rival")
	rivalJob := createListing(t, f.db, "Rival Role", &models.JobCategory{ID: f.job.CategoryID}, rival)
	rivalApp, err := f.svc.Apply(context.Background(), f.seeker, rivalJob.ID, ApplyInput{})
	if err != nil {
		t.Fatalf("apply to rival: %v", err)
	}

	_, err = f.svc.BulkUpdateStatus(context.Background(), f.employer, []uint{a.ID, b.ID, rivalApp.Application.ID}, models.StatusRejected)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	_, err = f.svc.BulkUpdateStatus(context.Background(), f.employer, []uint{a.ID, 9999}, models.StatusRejected)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var rejected int64
	f.db.Model(&models.Application{}).Where("status = ?", models.StatusRejected).Count(&rejected)
	if rejected != 0 {
		t.Fatalf("expected no partial update, found %d rejected", rejected)
	}

	updated, err := f.svc.BulkUpdateStatus(context.Background(), f.employer, []uint{a.ID, b.ID, a.ID}, models.StatusShortlisted)
	if err != nil {
		t.Fatalf("BulkUpdateStatus: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 updated, got %d", updated)
	}
}

func TestRankApplicants(t *testing.T) {
	f := newApplicationFixture(t)
	users := []*models.User{
		f.seeker,
		createUser(t, f.db, "bob@example.com", models.RoleJobSeeker, nil),
		createUser(t, f.db, "cara@example.com", models.RoleJobSeeker, nil),
	}
	scores := []*int{intPtr(60), intPtr(80), nil}
	ids := make([]uint, len(users))
	for i, u := range users {
		f.addCV(t, u, scores[i])
		ids[i] = f.apply(t, u, ApplyInput{}).Application.ID
	}

	resp, err := f.svc.Rank(context.Background(), f.employer, f.job.ID, ApplicantFilter{})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if resp.Stats.Total != 3 || resp.Stats.AverageCVScore == nil || *resp.Stats.AverageCVScore != 70 {
		t.Fatalf("unexpected stats: %+v", resp.Stats)
	}
	want := []uint{ids[1], ids[0], ids[2]}
	for i, id := range want {
		if resp.Applications[i].ID != id {
			t.Fatalf("position %d: expected %d, got %d", i, id, resp.Applications[i].ID)
		}
	}

	filtered, err := f.svc.Rank(context.Background(), f.employer, f.job.ID, ApplicantFilter{MinCVScore: intPtr(70)})
	if err != nil {
		t.Fatalf("Rank filtered: %v", err)
	}
	if len(filtered.Applications) != 1 || filtered.Stats.Total != 3 {
		t.Fatalf("expected one match with stats over all applicants, got %d / %d", len(filtered.Applications), filtered.Stats.Total)
	}

	if _, err := f.svc.Rank(context.Background(), f.seeker, f.job.ID, ApplicantFilter{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a job seeker, got %v", err)
	}
}
