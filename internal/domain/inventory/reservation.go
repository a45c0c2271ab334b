package inventory

import (
	"fmt"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// Reservation is stock promised to one order for one item. Box and unit
// counts are tracked independently and never converted into each other.
type Reservation struct {
	shared.BaseAggregateRoot
	ItemID    uuid.UUID
	OrderID   uuid.UUID
	BoxCount  int64
	UnitCount int64
	Lifecycle shared.Lifecycle
}

// NewReservation creates a reservation holding quantity of one unit type
func NewReservation(itemID, orderID uuid.UUID, unitType UnitType, quantity int64, actor string) (*Reservation, error) {
	if itemID == uuid.Nil || orderID == uuid.Nil {
		return nil, shared.Invalidf("item and order are required")
	}
	if err := validateReserve(unitType, quantity); err != nil {
		return nil, err
	}

	r := &Reservation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(actor),
		ItemID:            itemID,
		OrderID:           orderID,
		Lifecycle:         shared.LifecycleActive,
	}
	r.setCount(unitType, quantity)
	r.AddDomainEvent(NewReservationPlacedEvent(r, unitType, quantity, 0))
	return r, nil
}

// Add increments the counter of one unit type
func (r *Reservation) Add(unitType UnitType, quantity int64, actor string) error {
	if !r.Lifecycle.IsActive() {
		return shared.InvalidStatef("reservation %s is released", r.ID)
	}
	if err := validateReserve(unitType, quantity); err != nil {
		return err
	}

	old := r.Count(unitType)
	r.setCount(unitType, old+quantity)
	r.Touch(actor)
	r.AddDomainEvent(NewReservationPlacedEvent(r, unitType, quantity, old))
	return nil
}

// Release deactivates the reservation. Returns false if it was already released.
func (r *Reservation) Release(actor string) bool {
	if !r.Lifecycle.IsActive() {
		return false
	}
	r.Lifecycle = shared.LifecycleInactive
	r.Touch(actor)
	r.AddDomainEvent(NewReservationReleasedEvent(r))
	return true
}

// Count returns the reserved quantity of one unit type
func (r *Reservation) Count(unitType UnitType) int64 {
	if unitType == UnitTypeBox {
		return r.BoxCount
	}
	return r.UnitCount
}

func (r *Reservation) setCount(unitType UnitType, v int64) {
	if unitType == UnitTypeBox {
		r.BoxCount = v
		return
	}
	r.UnitCount = v
}

// LockKey is the mutual-exclusion key for the (item, order) pair
func (r *Reservation) LockKey() string {
	return ReservationLockKey(r.ItemID, r.OrderID)
}

// ReservationLockKey builds the lock key for an (item, order) pair
func ReservationLockKey(itemID, orderID uuid.UUID) string {
	return fmt.Sprintf("reservation:%s:%s", itemID, orderID)
}

// Available returns physical minus reserved, floored at zero
func Available(physical, reserved int64) int64 {
	if reserved >= physical {
		return 0
	}
	return physical - reserved
}

func validateReserve(unitType UnitType, quantity int64) error {
	if !unitType.IsValid() {
		return shared.Invalidf("unknown unit type %q", unitType)
	}
	if quantity <= 0 {
		return shared.Invalidf("quantity must be positive")
	}
	return nil
}
