package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/findajob/jobboard/internal/models"
)

type DocumentRepository interface {
	WithTx(tx *gorm.DB) DocumentRepository
	Create(document *models.UserDocument) error
	FindByID(id uint) (*models.UserDocument, error)
	FindByUserAndType(userID uint, docType models.DocumentType) ([]models.UserDocument, error)
	Delete(ids []uint) error
	SetScore(id uint, score int) error
	CreateCVAnalysis(analysis *models.CVAnalysis) error
	CreateCoverLetterAnalysis(analysis *models.CoverLetterAnalysis) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// WithTx implements DocumentRepository.
func (d *documentRepository) WithTx(tx *gorm.DB) DocumentRepository {
	return &documentRepository{db: tx}
}

// Create implements DocumentRepository.
func (d *documentRepository) Create(document *models.UserDocument) error {
	if err := d.db.Omit(clause.Associations).Create(document).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// FindByID implements DocumentRepository.
func (d *documentRepository) FindByID(id uint) (*models.UserDocument, error) {
	var doc models.UserDocument
	if err := d.db.Preload("CVAnalysis").Preload("CoverLetterAnalysis").First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document not found: %w", err)
		}

		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return &doc, nil
}

// FindByUserAndType implements DocumentRepository. Newest first.
func (d *documentRepository) FindByUserAndType(userID uint, docType models.DocumentType) ([]models.UserDocument, error) {
	var docs []models.UserDocument
	err := d.db.
		Where("user_id = ? AND document_type = ?", userID, docType).
		Order("uploaded_at DESC").
		Order("id DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}

	return docs, nil
}

// Delete implements DocumentRepository.
func (d *documentRepository) Delete(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := d.db.Delete(&models.UserDocument{}, ids).Error; err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

// SetScore implements DocumentRepository.
func (d *documentRepository) SetScore(id uint, score int) error {
	if err := d.db.Model(&models.UserDocument{}).Where("id = ?", id).Update("ai_score", score).Error; err != nil {
		return fmt.Errorf("failed to update document score: %w", err)
	}
	return nil
}

// CreateCVAnalysis implements DocumentRepository.
func (d *documentRepository) CreateCVAnalysis(analysis *models.CVAnalysis) error {
	if err := d.db.Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to create cv analysis: %w", err)
	}
	return nil
}

// CreateCoverLetterAnalysis implements DocumentRepository.
func (d *documentRepository) CreateCoverLetterAnalysis(analysis *models.CoverLetterAnalysis) error {
	if err := d.db.Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to create cover letter analysis: %w", err)
	}
	return nil
}
