package scheduler

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"pawnshop-service/internal/models"
)

type stubEvaluator struct {
	mu    sync.Mutex
	calls int
}

func (s *stubEvaluator) EvaluateOverdue(ctx context.Context, now time.Time) ([]*models.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return nil, nil
}

func (s *stubEvaluator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestSchedulerRunsSweepOnStart(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	evaluator := &stubEvaluator{}
	s := NewScheduler(evaluator, logger)

	s.Start(time.Hour)
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return evaluator.callCount() >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestSchedulerStopsCleanly(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	evaluator := &stubEvaluator{}
	s := NewScheduler(evaluator, logger)

	s.Start(10 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	calls := evaluator.callCount()
	assert.GreaterOrEqual(t, calls, 2)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, evaluator.callCount())
}
