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

type ApplyInput struct {
	// CVDocumentID defaults to the applicant's current CV.
	CVDocumentID          *uint
	CoverLetterDocumentID *uint
	CoverLetterText       string
	GenerateCoverLetter   bool
	Format                DocumentFormat
}

type ApplicationService interface {
	Apply(ctx context.Context, user *models.User, jobID uint, in ApplyInput) (*models.ApplyResponse, error)
	UpdateStatus(ctx context.Context, actor *models.User, id uint, status models.ApplicationStatus) (*models.Application, error)
	BulkUpdateStatus(ctx context.Context, actor *models.User, ids []uint, status models.ApplicationStatus) (int, error)
	Rank(ctx context.Context, actor *models.User, jobID uint, filter ApplicantFilter) (*models.ApplicantRankingResponse, error)
}

type applicationService struct {
	db          *gorm.DB
	appRepo     repositories.ApplicationRepository
	listingRepo repositories.ListingRepository
	docRepo     repositories.DocumentRepository
	documents   DocumentService
	generator   DocumentGenerator
	oracle      Oracle
	mailer      Mailer
	logger      *zap.Logger
}

func NewApplicationService(
	db *gorm.DB,
	appRepo repositories.ApplicationRepository,
	listingRepo repositories.ListingRepository,
	docRepo repositories.DocumentRepository,
	documents DocumentService,
	generator DocumentGenerator,
	oracle Oracle,
	mailer Mailer,
	log *zap.Logger,
) ApplicationService {
	return &applicationService{
		db:          db,
		appRepo:     appRepo,
		listingRepo: listingRepo,
		docRepo:     docRepo,
		documents:   documents,
		generator:   generator,
		oracle:      oracle,
		mailer:      mailer,
		logger:      logger.OrNop(log),
	}
}

// ownedDocument loads a document of userID and checks it has docType, so a
// CV score is never read as a cover letter score or the reverse.
func (s *applicationService) ownedDocument(userID, id uint, docType models.DocumentType) (*models.UserDocument, error) {
	doc, err := s.docRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	if doc.UserID != userID {
		return nil, ErrForbidden
	}
	if doc.DocumentType != docType {
		return nil, fmt.Errorf("%w: document %d is a %s, not a %s", ErrInvalidArgument, id, doc.DocumentType, docType)
	}
	return doc, nil
}

// Apply implements ApplicationService. The application is stored first;
// cover letter generation and the materials mail only add warnings on failure.
// Applying twice to the same job is allowed.
func (s *applicationService) Apply(ctx context.Context, user *models.User, jobID uint, in ApplyInput) (*models.ApplyResponse, error) {
	job, err := s.listingRepo.FindByID(jobID)
	if err != nil {
		return nil, notFound(err)
	}
	if !job.IsActive {
		return nil, fmt.Errorf("%w: job listing is closed", ErrInvalidArgument)
	}

	log := logger.WithFields(s.logger, zap.Uint(logger.FieldUserID, user.ID), zap.Uint(logger.FieldJobID, jobID))

	var cv *models.UserDocument
	if in.CVDocumentID != nil {
		cv, err = s.ownedDocument(user.ID, *in.CVDocumentID, models.DocumentCV)
	} else {
		cv, err = s.documents.CurrentCV(user.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("a CV is required to apply: %w", err)
	}

	resp := &models.ApplyResponse{}

	var letter *models.UserDocument
	switch {
	case in.CoverLetterDocumentID != nil:
		letter, err = s.ownedDocument(user.ID, *in.CoverLetterDocumentID, models.DocumentCoverLetter)
		if err != nil {
			return nil, err
		}
	case in.GenerateCoverLetter:
		letter, err = s.generateCoverLetter(ctx, user, job, cv, in.Format)
		if err != nil {
			log.Warn("cover letter generation failed", zap.Error(err))
			resp.Warnings = append(resp.Warnings, "the cover letter could not be generated; the application was submitted without it")
		}
	}

	application := &models.Application{
		UserID:          user.ID,
		JobID:           job.ID,
		Status:          models.StatusUnderReview,
		CVDocumentID:    &cv.ID,
		CoverLetterText: strings.TrimSpace(in.CoverLetterText),
	}
	if letter != nil {
		application.CoverLetterDocumentID = &letter.ID
	}
	if err := s.appRepo.Create(application); err != nil {
		return nil, err
	}
	log.Info("application submitted", zap.Uint("application_id", application.ID))

	result := s.mailer.Send(ctx, ApplicationMaterialsMail(user, job, cv, letter))
	if !result.OK {
		resp.Warnings = append(resp.Warnings, "application saved, but the materials email could not be sent: "+result.Message)
	}

	stored, err := s.appRepo.FindByID(application.ID)
	if err != nil {
		return nil, err
	}
	resp.Application = *stored
	return resp, nil
}

func (s *applicationService) generateCoverLetter(ctx context.Context, user *models.User, job *models.JobListing, cv *models.UserDocument, format DocumentFormat) (*models.UserDocument, error) {
	if format == "" {
		format = FormatPDF
	}

	in := CoverLetterInput{
		CandidateName:  user.DisplayName(),
		CandidateEmail: user.Email,
		CurrentDate:    time.Now().Format("January 02, 2006"),
		Background:     cv.ExtractedContent,
		Job:            *job,
	}
	if user.Profile != nil && user.Profile.PhonePrimary != nil {
		in.CandidatePhone = *user.Profile.PhonePrimary
	}

	generated, err := s.oracle.GenerateCoverLetter(ctx, in)
	if err != nil {
		return nil, err
	}

	data, err := s.generator.Generate(generated.Content, format)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("Cover_Letter_%d.%s", job.ID, format)
	return s.documents.StoreGenerated(ctx, user.ID, models.DocumentCoverLetter, name, data, generated.Content, generated.Analysis)
}

// canReviewJob reports whether actor may read and change applications for job.
func canReviewJob(actor *models.User, job *models.JobListing) bool {
	return ownsListing(actor, job)
}

// UpdateStatus implements ApplicationService. Any status may follow any other.
func (s *applicationService) UpdateStatus(ctx context.Context, actor *models.User, id uint, status models.ApplicationStatus) (*models.Application, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	app, err := s.appRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	if !canReviewJob(actor, &app.Job) {
		return nil, ErrForbidden
	}

	if _, err := s.appRepo.UpdateStatus([]uint{id}, status); err != nil {
		return nil, err
	}
	s.logger.Info("application status updated",
		zap.Uint("application_id", id),
		zap.String("from", string(app.Status)),
		zap.String("to", string(status)),
		zap.Uint(logger.FieldUserID, actor.ID))

	app.Status = status
	return app, nil
}

// BulkUpdateStatus implements ApplicationService. The batch is applied in one
// transaction and rejected whole when any id is unknown or outside the
// actor's permitted set.
func (s *applicationService) BulkUpdateStatus(ctx context.Context, actor *models.User, ids []uint, status models.ApplicationStatus) (int, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return 0, fmt.Errorf("%w: no application ids given", ErrInvalidArgument)
	}

	var updated int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		apps := s.appRepo.WithTx(tx)
		found, err := apps.FindByIDs(unique)
		if err != nil {
			return err
		}
		if len(found) != len(unique) {
			return fmt.Errorf("%w: %d of %d applications exist", ErrNotFound, len(found), len(unique))
		}
		for i := range found {
			if !canReviewJob(actor, &found[i].Job) {
				return ErrForbidden
			}
		}
		updated, err = apps.UpdateStatus(unique, status)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("application statuses updated",
		zap.Int64("updated", updated),
		zap.String("status", string(status)),
		zap.Uint(logger.FieldUserID, actor.ID))
	return int(updated), nil
}

// Rank implements ApplicationService.
func (s *applicationService) Rank(ctx context.Context, actor *models.User, jobID uint, filter ApplicantFilter) (*models.ApplicantRankingResponse, error) {
	job, err := s.listingRepo.FindByID(jobID)
	if err != nil {
		return nil, notFound(err)
	}
	if !canReviewJob(actor, job) {
		return nil, ErrForbidden
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
	}

	apps, err := s.appRepo.ListByJob(jobID)
	if err != nil {
		return nil, err
	}

	filtered := FilterApplications(apps, filter)
	SortApplications(filtered, filter.Sort)

	return &models.ApplicantRankingResponse{
		JobID:        jobID,
		Stats:        ComputeStats(apps),
		Applications: filtered,
	}, nil
}
