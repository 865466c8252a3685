package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/findajob/jobboard/internal/models"
)

type ApplicationRepository interface {
	WithTx(tx *gorm.DB) ApplicationRepository
	Create(application *models.Application) error
	FindByID(id uint) (*models.Application, error)
	FindByIDs(ids []uint) ([]models.Application, error)
	ListByJob(jobID uint) ([]models.Application, error)
	UpdateStatus(ids []uint, status models.ApplicationStatus) (int64, error)
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// WithTx implements ApplicationRepository.
func (r *applicationRepository) WithTx(tx *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: tx}
}

// Create implements ApplicationRepository.
func (r *applicationRepository) Create(application *models.Application) error {
	if err := r.db.Omit(clause.Associations).Create(application).Error; err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *applicationRepository) withRelations() *gorm.DB {
	return r.db.
		Preload("Job").
		Preload("User.Profile").
		Preload("CVDocument").
		Preload("CoverLetterDocument")
}

// FindByID implements ApplicationRepository.
func (r *applicationRepository) FindByID(id uint) (*models.Application, error) {
	var application models.Application
	if err := r.withRelations().First(&application, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return &application, nil
}

// FindByIDs implements ApplicationRepository.
func (r *applicationRepository) FindByIDs(ids []uint) ([]models.Application, error) {
	var applications []models.Application
	if err := r.db.Preload("Job").Where("id IN ?", ids).Find(&applications).Error; err != nil {
		return nil, fmt.Errorf("failed to find applications: %w", err)
	}
	return applications, nil
}

// ListByJob implements ApplicationRepository.
func (r *applicationRepository) ListByJob(jobID uint) ([]models.Application, error) {
	var applications []models.Application
	if err := r.withRelations().Where("job_id = ?", jobID).Find(&applications).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return applications, nil
}

// UpdateStatus implements ApplicationRepository.
func (r *applicationRepository) UpdateStatus(ids []uint, status models.ApplicationStatus) (int64, error) {
	result := r.db.Model(&models.Application{}).Where("id IN ?", ids).Update("status", status)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update application status: %w", result.Error)
	}
	return result.RowsAffected, nil
}
