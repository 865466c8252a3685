package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
)

// JobNotifier tells subscribers of a category about a new listing.
type JobNotifier interface {
	NotifyListing(ctx context.Context, jobID uint) (int, error)
}

type jobNotifier struct {
	listingRepo      repositories.ListingRepository
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	mailer           Mailer
	siteURL          string
	logger           *zap.Logger
	now              func() time.Time
}

func NewJobNotifier(
	listingRepo repositories.ListingRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	mailer Mailer,
	siteURL string,
	log *zap.Logger,
) JobNotifier {
	return &jobNotifier{
		listingRepo:      listingRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		mailer:           mailer,
		siteURL:          siteURL,
		logger:           logger.OrNop(log),
		now:              time.Now,
	}
}

// NotifyListing implements JobNotifier. It returns the number of users
// notified. The listing is marked notified even when some mails fail, so
// the poller does not resend to everyone.
func (n *jobNotifier) NotifyListing(ctx context.Context, jobID uint) (int, error) {
	job, err := n.listingRepo.FindByID(jobID)
	if err != nil {
		return 0, notFound(err)
	}
	log := logger.WithFields(n.logger, zap.Uint(logger.FieldJobID, jobID))

	if job.NotifiedAt != nil {
		log.Debug("listing already notified")
		return 0, nil
	}
	if !job.IsActive {
		return 0, n.listingRepo.MarkNotified(jobID, n.now())
	}

	subscribers, err := n.userRepo.FindSubscribers(job.CategoryID)
	if err != nil {
		return 0, err
	}

	categoryName := job.Category.Name
	notified := 0
	for i := range subscribers {
		if err := ctx.Err(); err != nil {
			return notified, err
		}
		user := &subscribers[i]

		note := &models.UserNotification{
			UserID:  user.ID,
			JobID:   &job.ID,
			Message: fmt.Sprintf("New %s job: %s at %s", categoryName, job.Title, job.DisplayCompany()),
		}
		if err := n.notificationRepo.Create(note); err != nil {
			log.Warn("failed to store notification", zap.Uint(logger.FieldUserID, user.ID), zap.Error(err))
			continue
		}

		result := n.mailer.Send(ctx, JobMatchMail(user, job, categoryName, n.siteURL))
		if !result.OK {
			log.Warn("job match mail not sent", zap.Uint(logger.FieldUserID, user.ID), zap.String("reason", result.Message))
		}
		notified++
	}

	if err := n.listingRepo.MarkNotified(jobID, n.now()); err != nil {
		return notified, err
	}
	log.Info("subscribers notified", zap.Int("count", notified))
	return notified, nil
}
