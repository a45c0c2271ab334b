package trade

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"go.uber.org/zap"
)

// BackfillActor stamps reservations created by the backfill job
const BackfillActor = "system:reservation-backfill"

// BackfillConfig tunes the reservation backfill job
type BackfillConfig struct {
	// BatchSize is how many orders are loaded per page
	BatchSize int
	// MaxTries bounds attempts per line on CONCURRENCY_CONFLICT
	MaxTries uint
	// InitialInterval is the first retry delay
	InitialInterval time.Duration
	// MaxInterval caps the retry delay
	MaxInterval time.Duration
}

// DefaultBackfillConfig returns the default backfill configuration
func DefaultBackfillConfig() BackfillConfig {
	return BackfillConfig{
		BatchSize:       100,
		MaxTries:        5,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// BackfillStats summarises one backfill run
type BackfillStats struct {
	OrdersScanned int       `json:"orders_scanned"`
	Created       int       `json:"created"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// ReservationBackfillService makes sure every online order that has not been
// picked yet holds reservations for all of its lines. It runs alongside live
// traffic and relies on EnsureReserved being safe to repeat.
type ReservationBackfillService struct {
	orders       trade.OrderRepository
	reservations ReservationLedger
	locks        *inventoryapp.KeyedLocker
	config       BackfillConfig
	logger       *zap.Logger
}

// NewReservationBackfillService creates a new ReservationBackfillService
func NewReservationBackfillService(
	orders trade.OrderRepository,
	reservations ReservationLedger,
	config BackfillConfig,
	logger *zap.Logger,
) *ReservationBackfillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultBackfillConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MaxTries == 0 {
		config.MaxTries = defaults.MaxTries
	}
	if config.InitialInterval <= 0 {
		config.InitialInterval = defaults.InitialInterval
	}
	if config.MaxInterval <= 0 {
		config.MaxInterval = defaults.MaxInterval
	}
	return &ReservationBackfillService{
		orders:       orders,
		reservations: reservations,
		config:       config,
		logger:       logger,
	}
}

// SetLocker makes the job take the order lock the fulfillment service uses
// and re-read each order under it, so an order cancelled or picked after the
// page was loaded is not reserved again
func (s *ReservationBackfillService) SetLocker(locker *inventoryapp.KeyedLocker) {
	s.locks = locker
}

// Run walks every order needing reservations in order-number order. A failing
// line is logged and counted; the run carries on with the next one.
func (s *ReservationBackfillService) Run(ctx context.Context) (*BackfillStats, error) {
	stats := &BackfillStats{ProcessedAt: time.Now()}

	var after int64
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		batch, err := s.orders.FindNeedingReservation(ctx, after, s.config.BatchSize)
		if err != nil {
			s.logger.Error("failed to load orders needing reservation", zap.Error(err))
			return stats, err
		}
		for i := range batch {
			order := &batch[i]
			after = order.OrderNumber
			stats.OrdersScanned++
			s.backfillLocked(ctx, order, stats)
		}
		if len(batch) < s.config.BatchSize {
			break
		}
	}

	if stats.Created > 0 || stats.Failed > 0 {
		s.logger.Info("reservation backfill completed",
			zap.Int("orders", stats.OrdersScanned),
			zap.Int("created", stats.Created),
			zap.Int("skipped", stats.Skipped),
			zap.Int("failed", stats.Failed),
		)
	} else {
		s.logger.Debug("reservation backfill found nothing to do", zap.Int("orders", stats.OrdersScanned))
	}
	return stats, nil
}

func (s *ReservationBackfillService) backfillLocked(ctx context.Context, order *trade.Order, stats *BackfillStats) {
	if s.locks != nil {
		unlock, err := s.locks.Lock(ctx, orderLockKey(order.ID))
		if err != nil {
			stats.Failed += len(order.Items)
			return
		}
		defer unlock()

		current, err := s.orders.FindByID(ctx, order.ID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				stats.Skipped += len(order.Items)
				return
			}
			stats.Failed += len(order.Items)
			s.logger.Warn("failed to reload order for backfill",
				zap.Int64("order_number", order.OrderNumber),
				zap.Error(err),
			)
			return
		}
		order = current
	}
	if !order.NeedsReservation() {
		stats.Skipped += len(order.Items)
		return
	}
	s.backfillOrder(ctx, order, stats)
}

func (s *ReservationBackfillService) backfillOrder(ctx context.Context, order *trade.Order, stats *BackfillStats) {
	for _, l := range order.Items {
		in := inventoryapp.ReserveInput{
			ItemID:   l.ItemID,
			OrderID:  order.ID,
			UnitType: l.UnitType,
			Quantity: l.Quantity,
			Actor:    BackfillActor,
		}
		created, err := s.ensureWithRetry(ctx, in)
		switch {
		case err != nil:
			stats.Failed++
			s.logger.Warn("failed to backfill reservation",
				zap.Int64("order_number", order.OrderNumber),
				zap.String("item_id", l.ItemID.String()),
				zap.String("unit_type", string(l.UnitType)),
				zap.Error(err),
			)
		case created:
			stats.Created++
		default:
			stats.Skipped++
		}
	}
}

// ensureWithRetry retries only optimistic-lock conflicts; every other error
// is permanent for this run
func (s *ReservationBackfillService) ensureWithRetry(ctx context.Context, in inventoryapp.ReserveInput) (bool, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.config.InitialInterval
	b.MaxInterval = s.config.MaxInterval

	return backoff.Retry(ctx, func() (bool, error) {
		created, err := s.reservations.EnsureReserved(ctx, in)
		if err != nil && !errors.Is(err, shared.ErrConcurrencyConflict) {
			return false, backoff.Permanent(err)
		}
		return created, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(s.config.MaxTries))
}
