package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/findajob/jobboard/internal/config"
	"github.com/findajob/jobboard/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "jobboard_test.db")
	db, err := config.OpenDatabase("sqlite", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path), gormlogger.Silent)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// stubGenerator answers every request with respond, or with response/err.
type stubGenerator struct {
	mu       sync.Mutex
	provider string
	response string
	err      error
	respond  func(req GenerationRequest) (string, error)
	requests []GenerationRequest
}

func (g *stubGenerator) Provider() string {
	if g.provider != "" {
		return g.provider
	}
	return "stub"
}

func (g *stubGenerator) Model() string { return "stub-model" }

func (g *stubGenerator) GenerateJSON(ctx context.Context, req GenerationRequest) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	if g.respond != nil {
		return g.respond(req)
	}
	return g.response, g.err
}

func (g *stubGenerator) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if g.err != nil {
		return nil, g.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func newStubOracle(gen *stubGenerator) Oracle {
	if gen == nil {
		return NewOracle(nil, OracleConfig{}, nil)
	}
	return NewOracle(gen, OracleConfig{}, nil)
}

type stubMailer struct {
	mu   sync.Mutex
	fail bool
	sent []OutgoingMail
}

func (m *stubMailer) Send(ctx context.Context, msg OutgoingMail) MailResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return MailResult{OK: false, Message: "smtp unreachable"}
	}
	m.sent = append(m.sent, msg)
	return MailResult{OK: true, Message: "sent"}
}

func (m *stubMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type recordingNotifier struct {
	mu  sync.Mutex
	ids []uint
}

func (n *recordingNotifier) EnqueueListing(jobID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, jobID)
}

func mustCreate(t *testing.T, db *gorm.DB, value any) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func createCategory(t *testing.T, db *gorm.DB, name string, keywords ...string) *models.JobCategory {
	t.Helper()
	c := &models.JobCategory{Name: name, Keywords: keywords, CategoryType: models.CategoryMixed}
	mustCreate(t, db, c)
	return c
}

func createCompany(t *testing.T, db *gorm.DB, name string) *models.Company {
	t.Helper()
	c := &models.Company{Name: name}
	mustCreate(t, db, c)
	return c
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role, companyID *uint) *models.User {
	t.Helper()
	u := &models.User{Email: email, Role: role, IsActive: true, CompanyID: companyID}
	if err := db.Omit("Profile", "NotificationPreference", "Company").Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := &models.Profile{UserID: u.ID}
	if err := db.Omit("PreferredCategories").Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	mustCreate(t, db, &models.NotificationPreference{UserID: u.ID, EmailEnabled: true})
	u.Profile = profile
	return u
}

func createListing(t *testing.T, db *gorm.DB, title string, category *models.JobCategory, company *models.Company) *models.JobListing {
	t.Helper()
	l := &models.JobListing{
		Title:                  title,
		CategoryID:             category.ID,
		Description:            title + " role",
		Location:               "Nairobi",
		Terms:                  models.TermsFullTime,
		EducationLevelRequired: models.EducationNone,
		ApplicationMethod:      models.MethodEmail,
		EmployerEmail:          "hr@example.com",
		IsActive:               true,
	}
	if company != nil {
		l.CompanyID = &company.ID
		l.CompanyName = company.Name
	}
	if err := db.Omit("Category", "Company", "Requirements").Create(l).Error; err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}

func intPtr(v int) *int    { return &v }
func uintPtr(v uint) *uint { return &v }
