package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/repositories"
)

// Worker fans new listings out to subscribers in the background.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueListing(jobID uint)
}

type worker struct {
	listingRepo  repositories.ListingRepository
	notifier     JobNotifier
	jobQueue     chan uint
	concurrency  int
	pollInterval time.Duration
	logger       *zap.Logger

	mu       sync.Mutex
	inFlight map[uint]bool

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewWorker(
	listingRepo repositories.ListingRepository,
	notifier JobNotifier,
	concurrency int,
	pollInterval time.Duration,
	log *zap.Logger,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &worker{
		listingRepo:  listingRepo,
		notifier:     notifier,
		jobQueue:     make(chan uint, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		logger:       logger.OrNop(log),
		inFlight:     make(map[uint]bool),
		stopChan:     make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting notification worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processListings(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollUnnotified(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("stopping notification worker")
		close(w.stopChan)
		w.wg.Wait()
		w.logger.Info("notification worker stopped")
	})
}

// EnqueueListing implements Worker. Listings already queued or running are skipped.
func (w *worker) EnqueueListing(jobID uint) {
	w.mu.Lock()
	if w.inFlight[jobID] {
		w.mu.Unlock()
		return
	}
	w.inFlight[jobID] = true
	w.mu.Unlock()

	select {
	case w.jobQueue <- jobID:
		w.logger.Debug("listing enqueued", zap.Uint(logger.FieldJobID, jobID))
	case <-w.stopChan:
		w.release(jobID)
		w.logger.Warn("worker stopped, listing not enqueued", zap.Uint(logger.FieldJobID, jobID))
	}
}

func (w *worker) release(jobID uint) {
	w.mu.Lock()
	delete(w.inFlight, jobID)
	w.mu.Unlock()
}

func (w *worker) processListings(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.logger.With(zap.Int("worker", workerID))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case jobID := <-w.jobQueue:
			count, err := w.notifier.NotifyListing(ctx, jobID)
			if err != nil {
				log.Error("failed to notify subscribers", zap.Uint(logger.FieldJobID, jobID), zap.Error(err))
			} else {
				log.Info("listing processed", zap.Uint(logger.FieldJobID, jobID), zap.Int("notified", count))
			}
			w.release(jobID)
		}
	}
}

func (w *worker) pollUnnotified(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.listingRepo.FindUnnotified(10)
			if err != nil {
				w.logger.Warn("failed to fetch unnotified listings", zap.Error(err))
				continue
			}
			for _, listing := range pending {
				w.EnqueueListing(listing.ID)
			}
		}
	}
}
