package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockRecordRepository persists stock records. Find methods only return
// active records.
type StockRecordRepository interface {
	// FindByID finds an active stock record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockRecord, error)

	// FindByItem lists the active records of an item across all locations
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]StockRecord, error)

	// FindByLocation lists the active records at a location
	FindByLocation(ctx context.Context, locationID uuid.UUID) ([]StockRecord, error)

	// FindByKey finds the active record occupying an (item, location, type) slot
	FindByKey(ctx context.Context, key StockKey) (*StockRecord, error)

	// SumQuantity sums the active quantity of an item in one unit type
	SumQuantity(ctx context.Context, itemID uuid.UUID, unitType UnitType) (int64, error)

	// Create inserts a new record
	Create(ctx context.Context, record *StockRecord) error

	// SaveWithLock updates a record if its stored version is unchanged
	SaveWithLock(ctx context.Context, record *StockRecord) error

	// Delete physically removes a record, used only when merging duplicates
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReservationRepository persists reservations. Find methods only return
// active reservations.
type ReservationRepository interface {
	// FindByItemAndOrder finds the active reservation for an (item, order) pair
	FindByItemAndOrder(ctx context.Context, itemID, orderID uuid.UUID) (*Reservation, error)

	// FindByOrder lists the active reservations of an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Reservation, error)

	// SumActive sums the active reserved quantity of an item in one unit type
	SumActive(ctx context.Context, itemID uuid.UUID, unitType UnitType) (int64, error)

	// Create inserts a new reservation. A second active reservation for the
	// same (item, order) pair fails with CONFLICT.
	Create(ctx context.Context, reservation *Reservation) error

	// SaveWithLock updates a reservation if its stored version is unchanged
	SaveWithLock(ctx context.Context, reservation *Reservation) error
}
