package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
)

const warnScoringUnavailable = "AI scoring is unavailable right now; the document was saved without a score"

// DocumentService runs the upload pipeline: store, extract text, score.
type DocumentService interface {
	Upload(ctx context.Context, user *models.User, docType models.DocumentType, originalName string, src io.Reader) (*models.DocumentUploadResponse, error)
	StoreGenerated(ctx context.Context, userID uint, docType models.DocumentType, originalName string, data []byte, content string, analysis *CoverLetterAssessment) (*models.UserDocument, error)
	FindForUser(ctx context.Context, user *models.User, id uint) (*models.UserDocument, error)
	CurrentCV(userID uint) (*models.UserDocument, error)
}

type documentService struct {
	db           *gorm.DB
	docRepo      repositories.DocumentRepository
	userRepo     repositories.UserRepository
	categoryRepo repositories.CategoryRepository
	storage      StorageService
	extractor    TextExtractor
	oracle       Oracle
	logger       *zap.Logger
}

func NewDocumentService(
	db *gorm.DB,
	docRepo repositories.DocumentRepository,
	userRepo repositories.UserRepository,
	categoryRepo repositories.CategoryRepository,
	storage StorageService,
	extractor TextExtractor,
	oracle Oracle,
	log *zap.Logger,
) DocumentService {
	return &documentService{
		db:           db,
		docRepo:      docRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		storage:      storage,
		extractor:    extractor,
		oracle:       oracle,
		logger:       logger.OrNop(log),
	}
}

func validDocumentType(t models.DocumentType) bool {
	switch t {
	case models.DocumentCV, models.DocumentCoverLetter, models.DocumentCertificate, models.DocumentOther:
		return true
	}
	return false
}

// Upload implements DocumentService. A new CV replaces every earlier CV of
// the user. Extraction and scoring failures are reported as warnings.
func (s *documentService) Upload(ctx context.Context, user *models.User, docType models.DocumentType, originalName string, src io.Reader) (*models.DocumentUploadResponse, error) {
	if !validDocumentType(docType) {
		return nil, fmt.Errorf("%w: unknown document type %q", ErrInvalidArgument, docType)
	}
	if !IsSupportedDocument(originalName) {
		return nil, fmt.Errorf("%w: %s (supported: pdf, docx, txt)", ErrUnsupportedFormat, originalName)
	}

	log := logger.WithFields(s.logger, zap.Uint(logger.FieldUserID, user.ID), zap.String("document_type", string(docType)))

	filename, filePath, err := s.storage.SaveFile(src, originalName, string(docType))
	if err != nil {
		return nil, err
	}

	resp := &models.DocumentUploadResponse{}

	content, extractErr := s.extractor.ExtractText(filePath)
	if extractErr != nil {
		log.Warn("text extraction failed", zap.String("file", filename), zap.Error(extractErr))
		content = fmt.Sprintf("Error extracting text: %v", extractErr)
		resp.Warnings = append(resp.Warnings, "text could not be extracted from the document")
	}

	doc := &models.UserDocument{
		UserID:           user.ID,
		DocumentType:     docType,
		FileName:         filename,
		OriginalFileName: originalName,
		FilePath:         filePath,
		ExtractedContent: content,
	}

	superseded, err := s.createDocument(doc)
	if err != nil {
		if rmErr := s.storage.DeleteFile(filename); rmErr != nil {
			log.Warn("failed to remove orphaned upload", zap.Error(rmErr))
		}
		return nil, err
	}
	for _, old := range superseded {
		if err := s.storage.DeleteFile(old.FileName); err != nil {
			log.Warn("failed to remove superseded cv file", zap.String("file", old.FileName), zap.Error(err))
		}
	}
	log.Info("document stored", zap.Uint("document_id", doc.ID), zap.Int("superseded", len(superseded)))

	if extractErr == nil && content != "" {
		scored, warnings := s.score(ctx, log, doc)
		resp.Scored = scored
		resp.Warnings = append(resp.Warnings, warnings...)
	}

	stored, err := s.docRepo.FindByID(doc.ID)
	if err != nil {
		return nil, err
	}
	resp.Document = *stored
	return resp, nil
}

// createDocument inserts doc, first deleting the user's earlier CVs when doc
// is a CV. The deleted rows are returned so their files can be removed.
func (s *documentService) createDocument(doc *models.UserDocument) ([]models.UserDocument, error) {
	var superseded []models.UserDocument
	err := s.db.Transaction(func(tx *gorm.DB) error {
		docs := s.docRepo.WithTx(tx)
		if doc.DocumentType == models.DocumentCV {
			previous, err := docs.FindByUserAndType(doc.UserID, models.DocumentCV)
			if err != nil {
				return err
			}
			ids := make([]uint, 0, len(previous))
			for _, p := range previous {
				ids = append(ids, p.ID)
			}
			if err := docs.Delete(ids); err != nil {
				return err
			}
			superseded = previous
		}
		return docs.Create(doc)
	})
	if err != nil {
		return nil, err
	}
	return superseded, nil
}

func (s *documentService) score(ctx context.Context, log *zap.Logger, doc *models.UserDocument) (bool, []string) {
	switch doc.DocumentType {
	case models.DocumentCV:
		return s.scoreCV(ctx, log, doc)
	case models.DocumentCoverLetter:
		assessment, err := s.oracle.AnalyzeCoverLetter(ctx, doc.ExtractedContent)
		if err != nil {
			return false, []string{warnScoringUnavailable}
		}
		if err := s.saveCoverLetterAnalysis(s.db, doc, assessment); err != nil {
			log.Error("failed to persist cover letter analysis", zap.Error(err))
			return false, []string{warnScoringUnavailable}
		}
		return true, nil
	}
	return false, nil
}

func (s *documentService) scoreCV(ctx context.Context, log *zap.Logger, doc *models.UserDocument) (bool, []string) {
	categories, err := s.categoryRepo.List()
	if err != nil {
		log.Warn("failed to load taxonomy for cv analysis", zap.Error(err))
	}

	assessment, err := s.oracle.AnalyzeCV(ctx, doc.ExtractedContent, Vocabulary(categories))
	if err != nil {
		return false, []string{warnScoringUnavailable}
	}

	analysis := &models.CVAnalysis{
		UserDocumentID:         doc.ID,
		TotalScore:             assessment.TotalScore,
		ProfessionalismScore:   assessment.ProfessionalismScore,
		RelevanceScore:         assessment.RelevanceScore,
		ExperienceScore:        assessment.ExperienceScore,
		EducationScore:         assessment.EducationScore,
		MissingSections:        assessment.MissingSections,
		ImprovementSuggestions: assessment.ImprovementSuggestions,
		RawResponse:            datatypes.JSON(assessment.Raw),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		docs := s.docRepo.WithTx(tx)
		if err := docs.CreateCVAnalysis(analysis); err != nil {
			return err
		}
		return docs.SetScore(doc.ID, analysis.TotalScore)
	})
	if err != nil {
		log.Error("failed to persist cv analysis", zap.Error(err))
		return false, []string{warnScoringUnavailable}
	}

	var warnings []string
	if len(assessment.SuggestedCategories) > 0 {
		suggested, err := s.categoryRepo.FindByNames(assessment.SuggestedCategories)
		if err == nil {
			err = s.userRepo.AddPreferredCategories(doc.UserID, suggested)
		}
		if err != nil {
			log.Warn("failed to merge suggested categories", zap.Error(err))
			warnings = append(warnings, "suggested job categories could not be added to your preferences")
		}
	}
	return true, warnings
}

func (s *documentService) saveCoverLetterAnalysis(db *gorm.DB, doc *models.UserDocument, a *CoverLetterAssessment) error {
	analysis := &models.CoverLetterAnalysis{
		UserDocumentID:         doc.ID,
		TotalScore:             a.TotalScore,
		ProfessionalismScore:   a.ProfessionalismScore,
		ContentScore:           a.ContentScore,
		ToneScore:              a.ToneScore,
		ImpactScore:            a.ImpactScore,
		MissingElements:        a.MissingElements,
		ImprovementSuggestions: a.ImprovementSuggestions,
		RawResponse:            datatypes.JSON(a.Raw),
	}
	return db.Transaction(func(tx *gorm.DB) error {
		docs := s.docRepo.WithTx(tx)
		if err := docs.CreateCoverLetterAnalysis(analysis); err != nil {
			return err
		}
		if err := docs.SetScore(doc.ID, analysis.TotalScore); err != nil {
			return err
		}
		doc.AIScore = &analysis.TotalScore
		return nil
	})
}

// StoreGenerated implements DocumentService.
func (s *documentService) StoreGenerated(ctx context.Context, userID uint, docType models.DocumentType, originalName string, data []byte, content string, analysis *CoverLetterAssessment) (*models.UserDocument, error) {
	filename, filePath, err := s.storage.SaveFile(bytes.NewReader(data), originalName, string(docType))
	if err != nil {
		return nil, err
	}

	doc := &models.UserDocument{
		UserID:           userID,
		DocumentType:     docType,
		FileName:         filename,
		OriginalFileName: originalName,
		FilePath:         filePath,
		ExtractedContent: content,
	}
	if err := s.docRepo.Create(doc); err != nil {
		s.storage.DeleteFile(filename)
		return nil, err
	}

	if analysis != nil {
		if err := s.saveCoverLetterAnalysis(s.db, doc, analysis); err != nil {
			s.logger.Warn("failed to persist generated letter analysis", zap.Uint("document_id", doc.ID), zap.Error(err))
		}
	}
	return doc, nil
}

// FindForUser implements DocumentService. Only the owner or an admin may read.
func (s *documentService) FindForUser(ctx context.Context, user *models.User, id uint) (*models.UserDocument, error) {
	doc, err := s.docRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	if doc.UserID != user.ID && user.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	return doc, nil
}

// CurrentCV implements DocumentService.
func (s *documentService) CurrentCV(userID uint) (*models.UserDocument, error) {
	docs, err := s.docRepo.FindByUserAndType(userID, models.DocumentCV)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no cv uploaded", ErrNotFound)
	}
	return &docs[0], nil
}
