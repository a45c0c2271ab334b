package scheduler

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	tradeapp "github.com/erp/fulfillment/internal/application/trade"
)

// BackfillRunner is satisfied by tradeapp.ReservationBackfillService
type BackfillRunner interface {
	Run(ctx context.Context) (*tradeapp.BackfillStats, error)
}

// BackfillJob schedules the reservation backfill
type BackfillJob struct {
	runner BackfillRunner
}

// NewBackfillJob wraps runner as a scheduler Job
func NewBackfillJob(runner BackfillRunner) *BackfillJob {
	return &BackfillJob{runner: runner}
}

// Name identifies the job in logs and spans
func (j *BackfillJob) Name() string {
	return "reservation_backfill"
}

// Run performs one backfill pass and annotates the active span with its totals
func (j *BackfillJob) Run(ctx context.Context) error {
	stats, err := j.runner.Run(ctx)
	if stats != nil {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int("backfill.orders_scanned", stats.OrdersScanned),
			attribute.Int("backfill.created", stats.Created),
			attribute.Int("backfill.failed", stats.Failed),
		)
	}
	return err
}

var _ Job = (*BackfillJob)(nil)
