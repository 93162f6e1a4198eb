package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of periodic work
type Task func(ctx context.Context) error

// Runner executes a task at startup and then on every tick. A tick that
// arrives while the previous run is still going is skipped.
type Runner struct {
	name     string
	interval time.Duration
	task     Task
	logger   *zap.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

// NewRunner creates a runner
func NewRunner(name string, interval time.Duration, task Task, logger *zap.Logger) *Runner {
	return &Runner{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger.With(zap.String("task", name)),
	}
}

// Start runs the task immediately and then every interval until ctx is done or Stop is called
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		r.logger.Info("scheduler started", zap.Duration("interval", r.interval))

		r.tick(ctx)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("scheduler stopped")
				return
			case <-ticker.C:
				r.tick(ctx)
			}
		}
	}()
}

func (r *Runner) tick(ctx context.Context) {
	// ticks run in their own goroutine so a slow run never delays shutdown
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("scheduled run failed", zap.Error(err))
		}
	}()
}

// RunOnce runs the task unless a run is already in progress. It reports whether the task ran.
func (r *Runner) RunOnce(ctx context.Context) (bool, error) {
	return r.exclusive(ctx, r.task)
}

func (r *Runner) exclusive(ctx context.Context, task Task) (bool, error) {
	if !r.running.CompareAndSwap(false, true) {
		r.logger.Debug("previous run still in progress, skipping")
		return false, nil
	}
	defer r.running.Store(false)

	return true, task(ctx)
}

// Stop cancels the loop and waits for the current run to return
func (r *Runner) Stop() {
	r.once.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
	})
	r.wg.Wait()
}
