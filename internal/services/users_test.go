package services

import (
	"context"
	"errors"
	"testing"

	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
)

func TestCreateUserBuildsProfileAndPreferences(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, repositories.NewUserRepository(db), repositories.NewCategoryRepository(db), nil)

	name := "Jane Doe"
	user, err := svc.CreateUser(context.Background(), NewUser{Email: "  Jane@Example.com ", FullName: &name})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if user.Email != "jane@example.com" || user.Role != models.RoleJobSeeker || !user.IsActive {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.Profile == nil || user.DisplayName() != "Jane Doe" {
		t.Fatalf("expected a profile with the full name, got %+v", user.Profile)
	}
	if user.NotificationPreference == nil || !user.NotificationPreference.EmailEnabled {
		t.Fatalf("expected email notifications enabled by default")
	}
}

func TestCreateUserValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, repositories.NewUserRepository(db), repositories.NewCategoryRepository(db), nil)

	tests := []struct {
		name string
		in   NewUser
	}{
		{name: "missing email", in: NewUser{}},
		{name: "malformed email", in: NewUser{Email: "jane"}},
		{name: "unknown role", in: NewUser{Email: "jane@example.com", Role: "Recruiter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateUser(context.Background(), tt.in); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	if _, err := svc.CreateUser(context.Background(), NewUser{Email: "dup@example.com"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), NewUser{Email: "dup@example.com"}); err == nil {
		t.Fatalf("expected duplicate email to fail")
	}
	if n := countRows(t, db, &models.Profile{}); n != 1 {
		t.Fatalf("expected the failed create rolled back, found %d profiles", n)
	}
}

func TestListingServiceCreate(t *testing.T) {
	db := newTestDB(t)
	category := createCategory(t, db, "ICT")
	acme := createCompany(t, db, "Acme")
	rival := createCompany(t, db, "Rival")
	notifier := &recordingNotifier{}

	svc := NewListingService(db,
		repositories.NewListingRepository(db),
		repositories.NewCategoryRepository(db),
		repositories.NewCompanyRepository(db),
		notifier, nil)

	employer := &models.User{ID: 1, Role: models.RoleEmployer, CompanyID: &acme.ID}
	listing, err := svc.Create(context.Background(), employer, models.CreateListingRequest{
		Title:        "Go Developer",
		CategoryID:   category.ID,
		CompanyID:    &rival.ID,
		Description:  "Build services",
		Requirements: []models.RequirementInput{{Description: "Go"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if listing.CompanyID == nil || *listing.CompanyID != acme.ID {
		t.Fatalf("expected employer's own company, got %v", listing.CompanyID)
	}
	if listing.Terms != models.TermsNone || listing.ApplicationMethod != models.MethodEmail || !listing.IsActive {
		t.Fatalf("unexpected defaults: %+v", listing)
	}
	if len(listing.Requirements) != 1 || !listing.Requirements[0].IsMandatory {
		t.Fatalf("unexpected requirements: %+v", listing.Requirements)
	}
	if len(notifier.ids) != 1 {
		t.Fatalf("expected the listing enqueued")
	}

	if _, err := svc.Create(context.Background(), &models.User{ID: 2, Role: models.RoleJobSeeker}, models.CreateListingRequest{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Create(context.Background(), employer, models.CreateListingRequest{Title: "x", CategoryID: category.ID, Description: "d", Terms: "Weekends"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	outsider := &models.User{ID: 3, Role: models.RoleEmployer, CompanyID: &rival.ID}
	if _, err := svc.SetActive(context.Background(), outsider, listing.ID, false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another company, got %v", err)
	}
	closed, err := svc.SetActive(context.Background(), employer, listing.ID, false)
	if err != nil || closed.IsActive {
		t.Fatalf("expected listing closed, got %+v (%v)", closed, err)
	}
}

func TestSetPreferredCategoriesReplacesSet(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, repositories.NewUserRepository(db), repositories.NewCategoryRepository(db), nil)
	ict := createCategory(t, db, "ICT")
	health := createCategory(t, db, "Health")
	finance := createCategory(t, db, "Finance")

	user, err := svc.CreateUser(context.Background(), NewUser{Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	preferred := func(u *models.User) []string {
		var names []string
		for _, c := range u.Profile.PreferredCategories {
			names = append(names, c.Name)
		}
		return names
	}

	tests := []struct {
		name string
		ids  []uint
		want int
	}{
		{name: "initial set", ids: []uint{ict.ID, health.ID}, want: 2},
		{name: "replaced with duplicates collapsed", ids: []uint{finance.ID, finance.ID}, want: 1},
		{name: "cleared", ids: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.SetPreferredCategories(context.Background(), user.ID, tt.ids)
			if err != nil {
				t.Fatalf("SetPreferredCategories: %v", err)
			}
			if len(got.Profile.PreferredCategories) != tt.want {
				t.Fatalf("expected %d preferences, got %v", tt.want, preferred(got))
			}
		})
	}

	if _, err := svc.SetPreferredCategories(context.Background(), user.ID, []uint{ict.ID}); err != nil {
		t.Fatalf("SetPreferredCategories: %v", err)
	}
	if _, err := svc.SetPreferredCategories(context.Background(), user.ID, []uint{health.ID, 9999}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	kept, err := svc.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if names := preferred(kept); len(names) != 1 || names[0] != "ICT" {
		t.Fatalf("expected a rejected update to keep the old set, got %v", names)
	}
}

func TestSetNotificationChannel(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, repositories.NewUserRepository(db), repositories.NewCategoryRepository(db), nil)

	user, err := svc.CreateUser(context.Background(), NewUser{Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	off, on := false, true

	tests := []struct {
		name         string
		channel      string
		enabled      *bool
		wantEmail    bool
		wantWhatsapp bool
	}{
		{name: "default channel flips email off", channel: "", wantEmail: false},
		{name: "flip email back on", channel: "EMAIL", wantEmail: true},
		{name: "explicit value is idempotent", channel: "email", enabled: &on, wantEmail: true},
		{name: "whatsapp enabled", channel: "whatsapp", enabled: &on, wantEmail: true, wantWhatsapp: true},
		{name: "whatsapp disabled", channel: "whatsapp", enabled: &off, wantEmail: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pref, err := svc.SetNotificationChannel(context.Background(), user.ID, tt.channel, tt.enabled)
			if err != nil {
				t.Fatalf("SetNotificationChannel: %v", err)
			}
			if pref.EmailEnabled != tt.wantEmail || pref.WhatsappEnabled != tt.wantWhatsapp {
				t.Fatalf("unexpected preference %+v", pref)
			}
		})
	}

	if _, err := svc.SetNotificationChannel(context.Background(), user.ID, "sms", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	// A user without a preference row gets one with email on, then toggled.
	bare := createUser(t, db, "bare@example.com", models.RoleJobSeeker, nil)
	if err := db.Where("user_id = ?", bare.ID).Delete(&models.NotificationPreference{}).Error; err != nil {
		t.Fatalf("delete preference: %v", err)
	}
	pref, err := svc.SetNotificationChannel(context.Background(), bare.ID, "email", nil)
	if err != nil || pref.EmailEnabled {
		t.Fatalf("expected created preference toggled off, got %+v (%v)", pref, err)
	}
	if n := countRows(t, db, &models.NotificationPreference{}); n != 2 {
		t.Fatalf("expected one preference per user, found %d", n)
	}
}
