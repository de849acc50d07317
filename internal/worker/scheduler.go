// Package worker runs periodic maintenance jobs such as the lease sweep.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rentdesk/rentdesk/internal/service"
)

// LeaseSweeper expires and activates leases by date.
type LeaseSweeper interface {
	Sweep(ctx context.Context) (*service.SweepResult, error)
}

// Scheduler runs named jobs on cron schedules in UTC.
// A job still running when its next tick fires is skipped.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a Scheduler. Each run gets at most jobTimeout.
func NewScheduler(logger *slog.Logger, jobTimeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		timeout: jobTimeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers fn under a standard five-field cron spec or a descriptor
// such as "@hourly" or "@every 5m".
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, fn)
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	s.logger.Info("job scheduled", "job", name, "schedule", spec)
	return nil
}

func (s *Scheduler) run(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		s.logger.Error("job failed", "job", name, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	s.logger.Debug("job finished", "job", name, "duration_ms", time.Since(start).Milliseconds())
}

// Start begins firing jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Shutdown stops scheduling, cancels running jobs and waits for them or ctx.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SweepJob adapts a LeaseSweeper into a scheduler job that logs its counts.
func SweepJob(sweeper LeaseSweeper, logger *slog.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		result, err := sweeper.Sweep(ctx)
		if err != nil {
			return fmt.Errorf("lease sweep: %w", err)
		}
		logger.Info("lease sweep completed",
			"expired", result.Expired,
			"activated", result.Activated,
			"skipped", result.Skipped,
		)
		return nil
	}
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
