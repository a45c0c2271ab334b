package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	tradeapp "github.com/erp/fulfillment/internal/application/trade"
)

type countingJob struct {
	runs     atomic.Int32
	failures int32
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(context.Context) error {
	n := j.runs.Add(1)
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func testConfig() Config {
	return Config{
		Enabled:       true,
		Interval:      time.Hour,
		Timeout:       time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}
}

func startScheduler(t *testing.T, job Job, cfg Config) *Scheduler {
	t.Helper()
	s, err := New(job, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.NoError(t, testConfig().Validate())

	cfg := testConfig()
	cfg.Interval = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = testConfig()
	cfg.Timeout = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = testConfig()
	cfg.RetryAttempts = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestScheduler_RunOnStart(t *testing.T) {
	job := &countingJob{}
	cfg := testConfig()
	cfg.RunOnStart = true
	startScheduler(t, job, cfg)

	assert.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_Interval(t *testing.T) {
	job := &countingJob{}
	cfg := testConfig()
	cfg.Interval = 10 * time.Millisecond
	startScheduler(t, job, cfg)

	assert.Eventually(t, func() bool { return job.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_TriggerNow(t *testing.T) {
	job := &countingJob{}
	s := startScheduler(t, job, testConfig())

	require.NoError(t, s.TriggerNow())
	assert.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_RetriesFailedRun(t *testing.T) {
	job := &countingJob{failures: 2}
	s := startScheduler(t, job, testConfig())

	require.NoError(t, s.TriggerNow())
	assert.Eventually(t, func() bool { return job.runs.Load() == 3 }, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(3), job.runs.Load())
}

func TestScheduler_GivesUpAfterRetryAttempts(t *testing.T) {
	job := &countingJob{failures: 100}
	cfg := testConfig()
	cfg.RetryAttempts = 1
	s := startScheduler(t, job, cfg)

	require.NoError(t, s.TriggerNow())
	assert.Eventually(t, func() bool { return job.runs.Load() == 2 }, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), job.runs.Load())
}

func TestScheduler_Disabled(t *testing.T) {
	s, err := New(&countingJob{}, Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.TriggerNow(), ErrSchedulerNotRunning)
	assert.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_StartStopIdempotent(t *testing.T) {
	s, err := New(&countingJob{}, testConfig(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
}

type stubRunner struct {
	stats *tradeapp.BackfillStats
	err   error
}

func (r *stubRunner) Run(context.Context) (*tradeapp.BackfillStats, error) {
	return r.stats, r.err
}

func TestBackfillJob(t *testing.T) {
	job := NewBackfillJob(&stubRunner{stats: &tradeapp.BackfillStats{OrdersScanned: 4, Created: 2}})
	assert.Equal(t, "reservation_backfill", job.Name())
	assert.NoError(t, job.Run(context.Background()))

	boom := errors.New("db down")
	job = NewBackfillJob(&stubRunner{err: boom})
	assert.ErrorIs(t, job.Run(context.Background()), boom)
}
