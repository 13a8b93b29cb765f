package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// GuestPurger runs one purge pass over abandoned guest records
type GuestPurger interface {
	PurgeAbandonedGuests(ctx context.Context) (int64, error)
}

// GuestPurgeScheduler periodically purges abandoned guest records.
type GuestPurgeScheduler struct {
	purger   GuestPurger
	interval time.Duration
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewGuestPurgeScheduler creates a new guest purge scheduler
func NewGuestPurgeScheduler(purger GuestPurger, interval time.Duration, logger *zap.Logger) *GuestPurgeScheduler {
	return &GuestPurgeScheduler{
		purger:   purger,
		interval: interval,
		logger:   logger,
	}
}

// Start starts the scheduler
func (s *GuestPurgeScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Guest purge scheduler started",
		zap.Duration("interval", s.interval))
	return nil
}

// Stop stops the scheduler gracefully
func (s *GuestPurgeScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Guest purge scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *GuestPurgeScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.purger.PurgeAbandonedGuests(ctx); err != nil {
				s.logger.Warn("Scheduled guest purge failed", zap.Error(err))
			}
		}
	}
}
