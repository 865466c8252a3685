package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/repositories"
)

// Scheduler runs periodic maintenance such as closing expired listings.
type Scheduler interface {
	Start() error
	Stop(ctx context.Context)
	SweepExpired() (int64, error)
}

type scheduler struct {
	cron        *cron.Cron
	schedule    string
	listingRepo repositories.ListingRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewScheduler(schedule string, listingRepo repositories.ListingRepository, log *zap.Logger) Scheduler {
	return &scheduler{
		cron:        cron.New(),
		schedule:    schedule,
		listingRepo: listingRepo,
		logger:      logger.OrNop(log),
		now:         time.Now,
	}
}

// Start implements Scheduler. An empty schedule disables the sweep.
func (s *scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Info("expiry sweep disabled")
		return nil
	}
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.SweepExpired(); err != nil {
			s.logger.Error("expiry sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule expiry sweep %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("expiry sweep scheduled", zap.String("schedule", s.schedule))
	return nil
}

// Stop implements Scheduler. It waits for a running sweep or ctx, whichever ends first.
func (s *scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// SweepExpired implements Scheduler.
func (s *scheduler) SweepExpired() (int64, error) {
	closed, err := s.listingRepo.DeactivateExpired(s.now())
	if err != nil {
		return 0, err
	}
	if closed > 0 {
		s.logger.Info("expired listings closed", zap.Int64("count", closed))
	}
	return closed, nil
}
