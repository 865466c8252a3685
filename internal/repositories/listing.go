package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/findajob/jobboard/internal/models"
)

type ListingRepository interface {
	WithTx(tx *gorm.DB) ListingRepository
	Create(listing *models.JobListing) error
	CreateRequirement(requirement *models.JobRequirement) error
	FindByID(id uint) (*models.JobListing, error)
	ListActive() ([]models.JobListing, error)
	SetActive(id uint, active bool) error
	DeactivateExpired(now time.Time) (int64, error)
	FindUnnotified(limit int) ([]models.JobListing, error)
	MarkNotified(id uint, at time.Time) error
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// WithTx implements ListingRepository.
func (r *listingRepository) WithTx(tx *gorm.DB) ListingRepository {
	return &listingRepository{db: tx}
}

// Create implements ListingRepository. Associations are written separately.
func (r *listingRepository) Create(listing *models.JobListing) error {
	if err := r.db.Omit(clause.Associations).Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create job listing: %w", err)
	}
	return nil
}

// CreateRequirement implements ListingRepository.
func (r *listingRepository) CreateRequirement(requirement *models.JobRequirement) error {
	if err := r.db.Create(requirement).Error; err != nil {
		return fmt.Errorf("failed to create job requirement: %w", err)
	}
	return nil
}

// FindByID implements ListingRepository.
func (r *listingRepository) FindByID(id uint) (*models.JobListing, error) {
	var listing models.JobListing
	err := r.db.
		Preload("Category").
		Preload("Company").
		Preload("Requirements", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&listing, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job listing not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find job listing: %w", err)
	}
	return &listing, nil
}

// ListActive implements ListingRepository. Newest listings come first.
func (r *listingRepository) ListActive() ([]models.JobListing, error) {
	var listings []models.JobListing
	err := r.db.
		Preload("Category").
		Preload("Company").
		Where("is_active = ?", true).
		Order("posted_at DESC").
		Order("id DESC").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active job listings: %w", err)
	}
	return listings, nil
}

// SetActive implements ListingRepository.
func (r *listingRepository) SetActive(id uint, active bool) error {
	result := r.db.Model(&models.JobListing{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update job listing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job listing not found: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

// DeactivateExpired implements ListingRepository.
func (r *listingRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&models.JobListing{}).
		Where("is_active = ? AND expiry_date IS NOT NULL AND expiry_date < ?", true, now).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to deactivate expired listings: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// FindUnnotified implements ListingRepository.
func (r *listingRepository) FindUnnotified(limit int) ([]models.JobListing, error) {
	var listings []models.JobListing
	err := r.db.
		Where("is_active = ? AND notified_at IS NULL", true).
		Order("posted_at ASC").
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unnotified listings: %w", err)
	}
	return listings, nil
}

// MarkNotified implements ListingRepository.
func (r *listingRepository) MarkNotified(id uint, at time.Time) error {
	if err := r.db.Model(&models.JobListing{}).Where("id = ?", id).Update("notified_at", at).Error; err != nil {
		return fmt.Errorf("failed to mark listing notified: %w", err)
	}
	return nil
}
