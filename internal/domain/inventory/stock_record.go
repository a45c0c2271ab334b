package inventory

import (
	"fmt"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordOrigin tells how a stock record came to exist
type RecordOrigin string

const (
	OriginPurchase   RecordOrigin = "purchase"
	OriginTransfer   RecordOrigin = "transfer"
	OriginAdjustment RecordOrigin = "adjustment"
)

// StockKey identifies the (item, location, unit type) slot a record occupies.
// LocationID is uuid.Nil for unassigned stock.
type StockKey struct {
	ItemID     uuid.UUID
	LocationID uuid.UUID
	UnitType   UnitType
}

// String returns a stable representation usable as a lock key
func (k StockKey) String() string {
	return fmt.Sprintf("stock:%s:%s:%s", k.ItemID, k.LocationID, k.UnitType)
}

// StockRecord is the physical quantity of one item, in one unit type, at one
// location or unassigned.
type StockRecord struct {
	shared.BaseAggregateRoot
	ItemID     uuid.UUID
	LocationID *uuid.UUID
	UnitType   UnitType
	Quantity   int64
	UnitCost   decimal.Decimal
	Origin     RecordOrigin
	Lifecycle  shared.Lifecycle
}

// NewStockRecord creates a stock record
func NewStockRecord(
	itemID uuid.UUID,
	locationID *uuid.UUID,
	unitType UnitType,
	quantity int64,
	unitCost decimal.Decimal,
	origin RecordOrigin,
	actor string,
) (*StockRecord, error) {
	if itemID == uuid.Nil {
		return nil, shared.Invalidf("item id cannot be empty")
	}
	if !unitType.IsValid() {
		return nil, shared.Invalidf("unknown unit type %q", unitType)
	}
	if quantity < 0 {
		return nil, shared.Invalidf("quantity cannot be negative")
	}
	if unitCost.IsNegative() {
		return nil, shared.Invalidf("unit cost cannot be negative")
	}

	r := &StockRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(actor),
		ItemID:            itemID,
		LocationID:        locationID,
		UnitType:          unitType,
		Quantity:          quantity,
		UnitCost:          unitCost.Round(valueobject.CostPlaces),
		Origin:            origin,
		Lifecycle:         shared.LifecycleActive,
	}
	r.AddDomainEvent(NewStockRecordCreatedEvent(r))
	return r, nil
}

// Key returns the record's (item, location, unit type) slot
func (r *StockRecord) Key() StockKey {
	k := StockKey{ItemID: r.ItemID, UnitType: r.UnitType}
	if r.LocationID != nil {
		k.LocationID = *r.LocationID
	}
	return k
}

// IsAssigned reports whether the record sits at a location
func (r *StockRecord) IsAssigned() bool {
	return r.LocationID != nil
}

// IsAt reports whether the record sits at the given location
func (r *StockRecord) IsAt(locationID uuid.UUID) bool {
	return r.LocationID != nil && *r.LocationID == locationID
}

// Remove takes quantity out of the record
func (r *StockRecord) Remove(quantity int64, reason, actor string) error {
	if err := r.ensureActive(); err != nil {
		return err
	}
	if quantity <= 0 {
		return shared.Invalidf("quantity must be positive")
	}
	if quantity > r.Quantity {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("record %s holds %d %s, cannot remove %d", r.ID, r.Quantity, r.UnitType, quantity))
	}

	old := r.Quantity
	r.Quantity -= quantity
	r.Touch(actor)
	r.AddDomainEvent(NewStockRemovedEvent(r, quantity, reason, old))
	return nil
}

// Add puts quantity into the record at the given unit cost and recomputes the
// weighted-average cost
func (r *StockRecord) Add(quantity int64, unitCost decimal.Decimal, reason, actor string) error {
	if err := r.ensureActive(); err != nil {
		return err
	}
	if quantity <= 0 {
		return shared.Invalidf("quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.Invalidf("unit cost cannot be negative")
	}

	oldQty, oldCost := r.Quantity, r.UnitCost
	r.UnitCost = valueobject.WeightedAverage(r.Quantity, r.UnitCost, quantity, unitCost)
	r.Quantity += quantity
	r.Touch(actor)
	r.AddDomainEvent(NewStockAddedEvent(r, quantity, reason, oldQty, oldCost))
	return nil
}

// AssignTo places an unassigned record at a location
func (r *StockRecord) AssignTo(locationID uuid.UUID, actor string) error {
	if err := r.ensureActive(); err != nil {
		return err
	}
	if r.LocationID != nil {
		return shared.NewDomainError(shared.CodeConflict, "stock record is already at a location")
	}
	r.LocationID = &locationID
	r.Touch(actor)
	r.AddDomainEvent(NewStockShelvedEvent(r))
	return nil
}

// Absorb merges a duplicate record of the same item and unit type into this one
func (r *StockRecord) Absorb(dup *StockRecord, actor string) error {
	if err := r.ensureActive(); err != nil {
		return err
	}
	if dup.ID == r.ID {
		return shared.Invalidf("a record cannot absorb itself")
	}
	if dup.ItemID != r.ItemID || dup.UnitType != r.UnitType {
		return shared.Invalidf("only records of the same item and unit type can be merged")
	}

	oldQty, oldCost := r.Quantity, r.UnitCost
	r.UnitCost = valueobject.WeightedAverage(r.Quantity, r.UnitCost, dup.Quantity, dup.UnitCost)
	r.Quantity += dup.Quantity
	r.Touch(actor)
	r.AddDomainEvent(NewStockConsolidatedEvent(r, dup, oldQty, oldCost))
	return nil
}

// Retire moves an emptied record out of the active set
func (r *StockRecord) Retire(actor string) error {
	if !r.Lifecycle.IsActive() {
		return nil
	}
	if r.Quantity != 0 {
		return shared.InvalidStatef("only empty stock records can be retired")
	}
	r.Lifecycle = shared.LifecycleInactive
	r.Touch(actor)
	r.AddDomainEvent(NewStockRetiredEvent(r))
	return nil
}

// Units returns the record's quantity expressed in single units
func (r *StockRecord) Units(unitsPerBox int64) int64 {
	return ToUnits(r.Quantity, r.UnitType, unitsPerBox)
}

func (r *StockRecord) ensureActive() error {
	if !r.Lifecycle.IsActive() {
		return shared.NotFoundf("stock record %s is not active", r.ID)
	}
	return nil
}
