// Package scheduler runs periodic background jobs such as the reservation
// backfill.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/erp/fulfillment/internal/infrastructure/telemetry"
)

// Job is one unit of periodic work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Config controls how often a job runs and how failed runs are retried
type Config struct {
	Enabled bool
	// Interval between the end of one run and the start of the next
	Interval time.Duration
	// Timeout bounds a single run including retries
	Timeout time.Duration
	// RetryAttempts is how many times a failed run is retried
	RetryAttempts int
	RetryDelay    time.Duration
	// RunOnStart runs the job immediately instead of waiting one interval
	RunOnStart bool
}

// Validate checks the configuration of an enabled scheduler
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Scheduler runs a single job on a fixed interval. Runs never overlap.
type Scheduler struct {
	job    Job
	config Config
	logger *zap.Logger

	trigger   chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// New creates a scheduler for job
func New(job Job, config Config, logger *zap.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		job:     job,
		config:  config,
		logger:  logger.With(zap.String("job", job.Name())),
		trigger: make(chan struct{}, 1),
	}, nil
}

// Start launches the run loop. It is a no-op when disabled or already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		s.logger.Info("scheduler disabled")
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("retry_attempts", s.config.RetryAttempts),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight run to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow asks the loop to run the job as soon as the current run, if
// any, has finished
func (s *Scheduler) TriggerNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	select {
	case s.trigger <- struct{}{}:
		return nil
	default:
		return ErrRunInProgress
	}
}

// IsRunning reports whether the loop is active
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.execute(ctx)
	}

	timer := time.NewTimer(s.config.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-s.trigger:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
		s.execute(ctx)
		timer.Reset(s.config.Interval)
	}
}

// execute runs the job once, retrying failures with a constant delay
func (s *Scheduler) execute(ctx context.Context) {
	ctx, span := telemetry.StartSpan(ctx, "scheduler."+s.job.Name())
	defer span.End()

	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	attempts := 0
	_, err := backoff.Retry(runCtx, func() (struct{}, error) {
		attempts++
		return struct{}{}, s.job.Run(runCtx)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.config.RetryDelay)),
		backoff.WithMaxTries(uint(s.config.RetryAttempts)+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Warn("job run failed, retrying", zap.Error(err), zap.Duration("retry_in", next))
		}),
	)

	telemetry.AddEvent(span, "job.finished", "attempts", attempts)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("job run failed",
			zap.Int("attempts", attempts),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("job run completed", zap.Int("attempts", attempts), zap.Duration("duration", time.Since(start)))
}
