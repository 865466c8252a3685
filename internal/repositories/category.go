package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/findajob/jobboard/internal/models"
)

type CategoryRepository interface {
	WithTx(tx *gorm.DB) CategoryRepository
	List() ([]models.JobCategory, error)
	FindByID(id uint) (*models.JobCategory, error)
	FindByNames(names []string) ([]models.JobCategory, error)
	FindByIDs(ids []uint) ([]models.JobCategory, error)
	FirstOrCreate(category *models.JobCategory) (bool, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// WithTx implements CategoryRepository.
func (r *categoryRepository) WithTx(tx *gorm.DB) CategoryRepository {
	return &categoryRepository{db: tx}
}

// List implements CategoryRepository.
func (r *categoryRepository) List() ([]models.JobCategory, error) {
	var categories []models.JobCategory
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// FindByID implements CategoryRepository.
func (r *categoryRepository) FindByID(id uint) (*models.JobCategory, error) {
	var category models.JobCategory
	if err := r.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &category, nil
}

// FindByNames implements CategoryRepository.
func (r *categoryRepository) FindByNames(names []string) ([]models.JobCategory, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var categories []models.JobCategory
	if err := r.db.Where("name IN ?", names).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}
	return categories, nil
}

// FindByIDs implements CategoryRepository. Unknown ids are skipped.
func (r *categoryRepository) FindByIDs(ids []uint) ([]models.JobCategory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []models.JobCategory
	if err := r.db.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}
	return categories, nil
}

// FirstOrCreate implements CategoryRepository. It looks the category up by
// name and reports whether a new row was inserted.
func (r *categoryRepository) FirstOrCreate(category *models.JobCategory) (bool, error) {
	var existing models.JobCategory
	err := r.db.Where("name = ?", category.Name).First(&existing).Error
	if err == nil {
		*category = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up category: %w", err)
	}

	if category.CategoryType == "" {
		category.CategoryType = models.CategoryMixed
	}
	if err := r.db.Create(category).Error; err != nil {
		return false, fmt.Errorf("failed to create category: %w", err)
	}
	return true, nil
}
