package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
)

const (
	CompanyChoiceExisting = "existing"
	CompanyChoiceNew      = "new"
)

// ExtractionService turns free-text postings into listings in two steps:
// Preview runs the oracle and stores the parsed payload, Confirm writes it.
type ExtractionService interface {
	Preview(ctx context.Context, actor *models.User, text string) (*models.ListingPreview, error)
	Confirm(ctx context.Context, actor *models.User, token string, req models.ConfirmExtractionRequest) (*models.JobListing, error)
}

type extractionService struct {
	db           *gorm.DB
	listingRepo  repositories.ListingRepository
	categoryRepo repositories.CategoryRepository
	companyRepo  repositories.CompanyRepository
	oracle       Oracle
	previews     *PreviewStore
	notifier     ListingNotifier
	logger       *zap.Logger
}

func NewExtractionService(
	db *gorm.DB,
	listingRepo repositories.ListingRepository,
	categoryRepo repositories.CategoryRepository,
	companyRepo repositories.CompanyRepository,
	oracle Oracle,
	previews *PreviewStore,
	notifier ListingNotifier,
	log *zap.Logger,
) ExtractionService {
	return &extractionService{
		db:           db,
		listingRepo:  listingRepo,
		categoryRepo: categoryRepo,
		companyRepo:  companyRepo,
		oracle:       oracle,
		previews:     previews,
		notifier:     notifier,
		logger:       logger.OrNop(log),
	}
}

// Preview implements ExtractionService. Nothing is written to the database.
func (s *extractionService) Preview(ctx context.Context, actor *models.User, text string) (*models.ListingPreview, error) {
	if !canManageListings(actor) {
		return nil, ErrForbidden
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: listing text is empty", ErrInvalidArgument)
	}
	if !s.oracle.Enabled() {
		return nil, ErrOracleUnavailable
	}

	categories, err := s.categoryRepo.List()
	if err != nil {
		return nil, err
	}
	companies, err := s.companyRepo.List()
	if err != nil {
		return nil, err
	}
	companyNames := make([]string, 0, len(companies))
	for _, c := range companies {
		companyNames = append(companyNames, c.Name)
	}

	payload, err := s.oracle.ExtractListing(ctx, text, CategoryNames(categories), companyNames)
	if err != nil {
		return nil, err
	}

	preview := s.previews.Put(actor.ID, models.ListingPreview{
		Payload:          *payload,
		SimilarCompanies: FindSimilarCompanies(payload.Company.Name, companies),
	})
	s.logger.Info("listing extraction previewed",
		zap.Uint(logger.FieldUserID, actor.ID),
		zap.String("company", payload.Company.Name),
		zap.Int("similar_companies", len(preview.SimilarCompanies)))
	return &preview, nil
}

// Confirm implements ExtractionService. The company, category, listing and
// requirements are written in one transaction. The preview is consumed for
// the duration of the commit and restored if it fails, so a token commits at
// most one listing. A missing or expired preview fails with
// ErrPreviewNotFound; the oracle is never called again.
func (s *extractionService) Confirm(ctx context.Context, actor *models.User, token string, req models.ConfirmExtractionRequest) (*models.JobListing, error) {
	if !canManageListings(actor) {
		return nil, ErrForbidden
	}

	preview, restore, ok := s.previews.Take(actor.ID, token)
	if !ok {
		return nil, ErrPreviewNotFound
	}

	choice := strings.ToLower(strings.TrimSpace(req.CompanyChoice))
	if choice == "" {
		choice = CompanyChoiceNew
	}
	if choice != CompanyChoiceExisting && choice != CompanyChoiceNew {
		restore()
		return nil, fmt.Errorf("%w: company_choice must be %q or %q", ErrInvalidArgument, CompanyChoiceExisting, CompanyChoiceNew)
	}
	if choice == CompanyChoiceExisting && req.CompanyID == nil {
		restore()
		return nil, fmt.Errorf("%w: company_id is required when using an existing company", ErrInvalidArgument)
	}

	var listing *models.JobListing
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		listing, err = s.commit(tx, preview.Payload, choice, req.CompanyID)
		return err
	})
	if err != nil {
		restore()
		s.logger.Warn("listing extraction confirm rolled back", zap.Uint(logger.FieldUserID, actor.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("extracted listing committed",
		zap.Uint(logger.FieldJobID, listing.ID),
		zap.Uint(logger.FieldUserID, actor.ID),
		zap.Int("requirements", len(preview.Payload.Requirements)))

	if s.notifier != nil {
		s.notifier.EnqueueListing(listing.ID)
	}
	return s.listingRepo.FindByID(listing.ID)
}

func (s *extractionService) commit(tx *gorm.DB, p models.ExtractedPayload, choice string, companyID *uint) (*models.JobListing, error) {
	companies := s.companyRepo.WithTx(tx)

	var company *models.Company
	if choice == CompanyChoiceExisting {
		found, err := companies.FindByID(*companyID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		company = found
	} else {
		company = &models.Company{
			Name:           p.Company.Name,
			Description:    p.Company.Description,
			Website:        p.Company.Website,
			Location:       p.Company.Location,
			PrimaryPhone:   p.Company.PrimaryPhone,
			SecondaryPhone: p.Company.SecondaryPhone,
			PrimaryEmail:   p.Company.PrimaryEmail,
			SecondaryEmail: p.Company.SecondaryEmail,
			FoundedIn:      p.Company.FoundedIn,
		}
		if _, err := companies.FirstOrCreate(company); err != nil {
			return nil, err
		}
	}

	category := &models.JobCategory{Name: p.JobListing.Category, CategoryType: models.CategoryMixed}
	if _, err := s.categoryRepo.WithTx(tx).FirstOrCreate(category); err != nil {
		return nil, err
	}

	src := p.JobListing
	listing := &models.JobListing{
		Title:                   src.Title,
		CategoryID:              category.ID,
		CompanyName:             company.Name,
		CompanyID:               &company.ID,
		Description:             src.Description,
		Location:                src.Location,
		URL:                     src.URL,
		Terms:                   models.JobTerms(src.Terms),
		EducationLevelRequired:  models.EducationLevel(src.EducationLevelRequired),
		ExperienceRequiredYears: src.ExperienceRequiredYears,
		ApplicationMethod:       models.ApplicationMethod(src.ApplicationMethod),
		EmployerEmail:           src.EmployerEmail,
		ApplicationURL:          src.ApplicationURL,
		ApplicationInstructions: src.ApplicationInstructions,
		ExpiryDate:              parseExpiryDate(src.ExpiryDate),
		IsActive:                true,
	}

	listings := s.listingRepo.WithTx(tx)
	if err := listings.Create(listing); err != nil {
		return nil, err
	}
	for i, r := range p.Requirements {
		requirement := &models.JobRequirement{
			JobID:       listing.ID,
			Description: r.Description,
			IsMandatory: r.Mandatory(),
		}
		if err := listings.CreateRequirement(requirement); err != nil {
			return nil, fmt.Errorf("requirement %d: %w", i+1, err)
		}
	}
	return listing, nil
}

func parseExpiryDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
