package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpiredJobSweeper removes jobs past their retention
type ExpiredJobSweeper interface {
	SweepExpired(ctx context.Context, limit int) (int, error)
}

// Sweeper runs retention cleanup on a timer
type Sweeper struct {
	*Runner
	sweeper   ExpiredJobSweeper
	batchSize int
	logger    *zap.Logger
}

// NewSweeper creates a retention sweeper running every interval
func NewSweeper(sweeper ExpiredJobSweeper, interval time.Duration, logger *zap.Logger) *Sweeper {
	s := &Sweeper{sweeper: sweeper, batchSize: DefaultBatchSize, logger: logger}
	s.Runner = NewRunner("sweeper", interval, s.sweep, logger)
	return s
}

// Sweep removes expired jobs in batches until none are left and returns how many were removed
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := s.sweeper.SweepExpired(ctx, s.batchSize)
		total += n
		if err != nil || n < s.batchSize {
			return total, err
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}
