package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/findajob/jobboard/internal/models"
)

type CompanyRepository interface {
	WithTx(tx *gorm.DB) CompanyRepository
	List() ([]models.Company, error)
	FindByID(id uint) (*models.Company, error)
	FirstOrCreate(company *models.Company) (bool, error)
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

// WithTx implements CompanyRepository.
func (r *companyRepository) WithTx(tx *gorm.DB) CompanyRepository {
	return &companyRepository{db: tx}
}

// List implements CompanyRepository.
func (r *companyRepository) List() ([]models.Company, error) {
	var companies []models.Company
	if err := r.db.Order("name ASC").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// FindByID implements CompanyRepository.
func (r *companyRepository) FindByID(id uint) (*models.Company, error) {
	var company models.Company
	if err := r.db.First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("company not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}
	return &company, nil
}

// FirstOrCreate implements CompanyRepository. Matching is by exact name; the
// stored record wins over the supplied fields when it already exists.
func (r *companyRepository) FirstOrCreate(company *models.Company) (bool, error) {
	var existing models.Company
	err := r.db.Where("name = ?", company.Name).First(&existing).Error
	if err == nil {
		*company = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up company: %w", err)
	}

	if err := r.db.Create(company).Error; err != nil {
		return false, fmt.Errorf("failed to create company: %w", err)
	}
	return true, nil
}
