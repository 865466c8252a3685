package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
)

// ListingNotifier receives newly created listings for fan-out.
type ListingNotifier interface {
	EnqueueListing(jobID uint)
}

type ListingService interface {
	Create(ctx context.Context, actor *models.User, req models.CreateListingRequest) (*models.JobListing, error)
	Get(ctx context.Context, id uint) (*models.JobListing, error)
	SetActive(ctx context.Context, actor *models.User, id uint, active bool) (*models.JobListing, error)
}

type listingService struct {
	db           *gorm.DB
	listingRepo  repositories.ListingRepository
	categoryRepo repositories.CategoryRepository
	companyRepo  repositories.CompanyRepository
	notifier     ListingNotifier
	logger       *zap.Logger
}

func NewListingService(
	db *gorm.DB,
	listingRepo repositories.ListingRepository,
	categoryRepo repositories.CategoryRepository,
	companyRepo repositories.CompanyRepository,
	notifier ListingNotifier,
	log *zap.Logger,
) ListingService {
	return &listingService{
		db:           db,
		listingRepo:  listingRepo,
		categoryRepo: categoryRepo,
		companyRepo:  companyRepo,
		notifier:     notifier,
		logger:       logger.OrNop(log),
	}
}

// canManageListings reports whether the actor may create or edit listings at all.
func canManageListings(actor *models.User) bool {
	return actor != nil && (actor.Role == models.RoleAdmin || (actor.Role == models.RoleEmployer && actor.CompanyID != nil))
}

// ownsListing reports whether actor may mutate the listing.
func ownsListing(actor *models.User, listing *models.JobListing) bool {
	if actor == nil {
		return false
	}
	if actor.Role == models.RoleAdmin {
		return true
	}
	return actor.Role == models.RoleEmployer &&
		actor.CompanyID != nil &&
		listing.CompanyID != nil &&
		*actor.CompanyID == *listing.CompanyID
}

func enumOrDefault[T ~string](value T, allowed []T, fallback T) (T, error) {
	if value == "" {
		return fallback, nil
	}
	for _, a := range allowed {
		if value == a {
			return value, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not one of %v", ErrInvalidArgument, value, allowed)
}

// Create implements ListingService. Employers always post for their own company.
func (s *listingService) Create(ctx context.Context, actor *models.User, req models.CreateListingRequest) (*models.JobListing, error) {
	if !canManageListings(actor) {
		return nil, ErrForbidden
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" || req.CategoryID == 0 {
		return nil, fmt.Errorf("%w: title, description and category_id are required", ErrInvalidArgument)
	}

	terms, err := enumOrDefault(req.Terms, models.AllJobTerms, models.TermsNone)
	if err != nil {
		return nil, err
	}
	education, err := enumOrDefault(req.EducationLevelRequired, models.AllEducationLevels, models.EducationNone)
	if err != nil {
		return nil, err
	}
	method, err := enumOrDefault(req.ApplicationMethod, models.AllApplicationMethods, models.MethodEmail)
	if err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.FindByID(req.CategoryID); err != nil {
		return nil, fmt.Errorf("%w: unknown category %d", ErrInvalidArgument, req.CategoryID)
	}

	companyID := req.CompanyID
	if actor.Role == models.RoleEmployer {
		companyID = actor.CompanyID
	}
	companyName := strings.TrimSpace(req.CompanyName)
	if companyID != nil {
		company, err := s.companyRepo.FindByID(*companyID)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown company %d", ErrInvalidArgument, *companyID)
		}
		companyName = company.Name
	}

	listing := &models.JobListing{
		Title:                   title,
		CategoryID:              req.CategoryID,
		CompanyName:             companyName,
		CompanyID:               companyID,
		Description:             description,
		Location:                strings.TrimSpace(req.Location),
		URL:                     strings.TrimSpace(req.URL),
		Terms:                   terms,
		EducationLevelRequired:  education,
		ExperienceRequiredYears: req.ExperienceRequiredYears,
		ApplicationMethod:       method,
		EmployerEmail:           strings.TrimSpace(req.EmployerEmail),
		ApplicationURL:          strings.TrimSpace(req.ApplicationURL),
		ApplicationInstructions: strings.TrimSpace(req.ApplicationInstructions),
		ExpiryDate:              req.ExpiryDate,
		IsActive:                true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listings := s.listingRepo.WithTx(tx)
		if err := listings.Create(listing); err != nil {
			return err
		}
		for _, r := range req.Requirements {
			requirement := &models.JobRequirement{
				JobID:       listing.ID,
				Description: r.Description,
				IsMandatory: r.IsMandatory == nil || *r.IsMandatory,
			}
			if err := listings.CreateRequirement(requirement); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("job listing created", zap.Uint(logger.FieldJobID, listing.ID), zap.Uint(logger.FieldUserID, actor.ID))
	if s.notifier != nil {
		s.notifier.EnqueueListing(listing.ID)
	}
	return s.listingRepo.FindByID(listing.ID)
}

// Get implements ListingService.
func (s *listingService) Get(ctx context.Context, id uint) (*models.JobListing, error) {
	listing, err := s.listingRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return listing, nil
}

// SetActive implements ListingService.
func (s *listingService) SetActive(ctx context.Context, actor *models.User, id uint, active bool) (*models.JobListing, error) {
	listing, err := s.listingRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	if !ownsListing(actor, listing) {
		return nil, ErrForbidden
	}
	if err := s.listingRepo.SetActive(id, active); err != nil {
		return nil, notFound(err)
	}
	listing.IsActive = active
	return listing, nil
}
