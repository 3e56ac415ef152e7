package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"pawnshop-service/internal/models"
)

// OverdueEvaluator is the subset of the loan service the scheduler drives
type OverdueEvaluator interface {
	EvaluateOverdue(ctx context.Context, now time.Time) ([]*models.Loan, error)
}

// Scheduler runs the overdue sweep on a fixed interval. The sweep itself is
// idempotent, so overlapping or repeated runs with the same clock are safe.
type Scheduler struct {
	loans  OverdueEvaluator
	logger *logrus.Logger
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewScheduler creates a new Scheduler
func NewScheduler(loans OverdueEvaluator, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		loans:  loans,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins running the sweep at the given interval. One sweep runs
// immediately on start.
func (s *Scheduler) Start(interval time.Duration) {
	go func() {
		defer close(s.doneCh)

		s.runSweep()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runSweep()
			case <-s.stopCh:
				return
			}
		}
	}()

	s.logger.Infof("Overdue sweep scheduler started with interval %s", interval)
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.logger.Info("Overdue sweep scheduler stopped")
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	changed, err := s.loans.EvaluateOverdue(ctx, time.Now())
	if err != nil {
		s.logger.Errorf("Overdue sweep failed: %v", err)
		return
	}

	if len(changed) > 0 {
		s.logger.Infof("Overdue sweep updated %d loan(s)", len(changed))
	}
}
