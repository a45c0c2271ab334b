package trade

import (
	"context"
	"io"
	"time"

	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockLedger is the part of the stock service fulfillment drives
type StockLedger interface {
	RemoveFifoMany(ctx context.Context, inputs []inventoryapp.RemoveFifoInput) ([]inventoryapp.RemovalOutcome, error)
	CommitPick(ctx context.Context, orderID uuid.UUID, lines []inventoryapp.PickedLine, actor string) error
	Restock(ctx context.Context, lines []inventoryapp.PickedLine, actor string) error
}

// ReservationLedger is the part of the reservation service fulfillment drives
type ReservationLedger interface {
	Reserve(ctx context.Context, in inventoryapp.ReserveInput) (*inventoryapp.ReservationResponse, error)
	EnsureReserved(ctx context.Context, in inventoryapp.ReserveInput) (bool, error)
	Release(ctx context.Context, orderID uuid.UUID, actor string) (int, error)
	Availability(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType) (int64, error)
}

// ObjectStorage stores uploaded files such as proofs of payment
type ObjectStorage interface {
	// Put stores body under key
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error

	// DownloadURL returns a temporary link to key and when it expires
	DownloadURL(ctx context.Context, key string) (string, time.Time, error)

	// Delete removes key
	Delete(ctx context.Context, key string) error
}

var (
	_ StockLedger       = (*inventoryapp.StockService)(nil)
	_ ReservationLedger = (*inventoryapp.ReservationService)(nil)
)

// publishDomainEvents publishes and clears the pending events of each
// aggregate. Failures are logged; the state change already happened.
func publishDomainEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		agg.ClearDomainEvents()
		if publisher == nil {
			continue
		}
		if err := publisher.Publish(ctx, events...); err != nil {
			logger.Error("failed to publish domain events",
				zap.String("aggregate_id", agg.GetID().String()),
				zap.Int("events", len(events)),
				zap.Error(err),
			)
		}
	}
}
