package inventory

import (
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeStockRecord = "StockRecord"
	AggregateTypeReservation = "Reservation"
)

// Event type constants
const (
	EventTypeStockRecordCreated  = "StockRecordCreated"
	EventTypeStockRemoved        = "StockRemoved"
	EventTypeStockAdded          = "StockAdded"
	EventTypeStockShelved        = "StockShelved"
	EventTypeStockConsolidated   = "StockConsolidated"
	EventTypeStockRetired        = "StockRetired"
	EventTypeReservationPlaced   = "ReservationPlaced"
	EventTypeReservationReleased = "ReservationReleased"
)

// StockRecordCreatedEvent is raised when a new stock record appears
type StockRecordCreatedEvent struct {
	shared.BaseDomainEvent
	ItemID     uuid.UUID       `json:"item_id"`
	LocationID *uuid.UUID      `json:"location_id,omitempty"`
	UnitType   UnitType        `json:"unit_type"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Origin     RecordOrigin    `json:"origin"`
}

// NewStockRecordCreatedEvent creates a StockRecordCreatedEvent
func NewStockRecordCreatedEvent(r *StockRecord) *StockRecordCreatedEvent {
	return &StockRecordCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRecordCreated, AggregateTypeStockRecord, r.ID, r.CreatedBy,
			shared.Diff("quantity", nil, r.Quantity)),
		ItemID:     r.ItemID,
		LocationID: r.LocationID,
		UnitType:   r.UnitType,
		Quantity:   r.Quantity,
		UnitCost:   r.UnitCost,
		Origin:     r.Origin,
	}
}

// StockRemovedEvent is raised when quantity leaves a record
type StockRemovedEvent struct {
	shared.BaseDomainEvent
	ItemID   uuid.UUID `json:"item_id"`
	UnitType UnitType  `json:"unit_type"`
	Quantity int64     `json:"quantity"`
	Reason   string    `json:"reason"`
}

// NewStockRemovedEvent creates a StockRemovedEvent
func NewStockRemovedEvent(r *StockRecord, quantity int64, reason string, oldQty int64) *StockRemovedEvent {
	return &StockRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRemoved, AggregateTypeStockRecord, r.ID, r.UpdatedBy,
			shared.Diff("quantity", oldQty, r.Quantity)),
		ItemID:   r.ItemID,
		UnitType: r.UnitType,
		Quantity: quantity,
		Reason:   reason,
	}
}

// StockAddedEvent is raised when quantity is merged into an existing record
type StockAddedEvent struct {
	shared.BaseDomainEvent
	ItemID   uuid.UUID       `json:"item_id"`
	UnitType UnitType        `json:"unit_type"`
	Quantity int64           `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Reason   string          `json:"reason"`
}

// NewStockAddedEvent creates a StockAddedEvent
func NewStockAddedEvent(r *StockRecord, quantity int64, reason string, oldQty int64, oldCost decimal.Decimal) *StockAddedEvent {
	diffs := []shared.FieldDiff{shared.Diff("quantity", oldQty, r.Quantity)}
	if !oldCost.Equal(r.UnitCost) {
		diffs = append(diffs, shared.Diff("unit_cost", oldCost.String(), r.UnitCost.String()))
	}
	return &StockAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdded, AggregateTypeStockRecord, r.ID, r.UpdatedBy, diffs...),
		ItemID:          r.ItemID,
		UnitType:        r.UnitType,
		Quantity:        quantity,
		UnitCost:        r.UnitCost,
		Reason:          reason,
	}
}

// StockShelvedEvent is raised when unassigned stock is placed at a location
type StockShelvedEvent struct {
	shared.BaseDomainEvent
	ItemID     uuid.UUID `json:"item_id"`
	LocationID uuid.UUID `json:"location_id"`
}

// NewStockShelvedEvent creates a StockShelvedEvent
func NewStockShelvedEvent(r *StockRecord) *StockShelvedEvent {
	return &StockShelvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockShelved, AggregateTypeStockRecord, r.ID, r.UpdatedBy,
			shared.Diff("location_id", nil, r.LocationID.String())),
		ItemID:     r.ItemID,
		LocationID: *r.LocationID,
	}
}

// StockConsolidatedEvent is raised when a duplicate record is merged into a primary
type StockConsolidatedEvent struct {
	shared.BaseDomainEvent
	MergedRecordID uuid.UUID `json:"merged_record_id"`
	MergedQuantity int64     `json:"merged_quantity"`
}

// NewStockConsolidatedEvent creates a StockConsolidatedEvent
func NewStockConsolidatedEvent(primary, dup *StockRecord, oldQty int64, oldCost decimal.Decimal) *StockConsolidatedEvent {
	return &StockConsolidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockConsolidated, AggregateTypeStockRecord, primary.ID, primary.UpdatedBy,
			shared.Diff("quantity", oldQty, primary.Quantity),
			shared.Diff("unit_cost", oldCost.String(), primary.UnitCost.String())),
		MergedRecordID: dup.ID,
		MergedQuantity: dup.Quantity,
	}
}

// StockRetiredEvent is raised when an emptied record leaves the active set
type StockRetiredEvent struct {
	shared.BaseDomainEvent
}

// NewStockRetiredEvent creates a StockRetiredEvent
func NewStockRetiredEvent(r *StockRecord) *StockRetiredEvent {
	return &StockRetiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRetired, AggregateTypeStockRecord, r.ID, r.UpdatedBy,
			shared.Diff("lifecycle", string(shared.LifecycleActive), string(r.Lifecycle))),
	}
}

// ReservationPlacedEvent is raised when a reservation is created or incremented
type ReservationPlacedEvent struct {
	shared.BaseDomainEvent
	ItemID   uuid.UUID `json:"item_id"`
	OrderID  uuid.UUID `json:"order_id"`
	UnitType UnitType  `json:"unit_type"`
	Quantity int64     `json:"quantity"`
}

// NewReservationPlacedEvent creates a ReservationPlacedEvent
func NewReservationPlacedEvent(r *Reservation, unitType UnitType, quantity, oldCount int64) *ReservationPlacedEvent {
	return &ReservationPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationPlaced, AggregateTypeReservation, r.ID, r.UpdatedBy,
			shared.Diff(string(unitType)+"_count", oldCount, r.Count(unitType))),
		ItemID:   r.ItemID,
		OrderID:  r.OrderID,
		UnitType: unitType,
		Quantity: quantity,
	}
}

// ReservationReleasedEvent is raised when a reservation is deactivated
type ReservationReleasedEvent struct {
	shared.BaseDomainEvent
	ItemID  uuid.UUID `json:"item_id"`
	OrderID uuid.UUID `json:"order_id"`
}

// NewReservationReleasedEvent creates a ReservationReleasedEvent
func NewReservationReleasedEvent(r *Reservation) *ReservationReleasedEvent {
	return &ReservationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationReleased, AggregateTypeReservation, r.ID, r.UpdatedBy,
			shared.Diff("lifecycle", string(shared.LifecycleActive), string(shared.LifecycleInactive))),
		ItemID:  r.ItemID,
		OrderID: r.OrderID,
	}
}
