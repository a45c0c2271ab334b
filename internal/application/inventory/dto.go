package inventory

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRecordResponse represents a stock record in API responses
type StockRecordResponse struct {
	ID         uuid.UUID          `json:"id"`
	ItemID     uuid.UUID          `json:"item_id"`
	LocationID *uuid.UUID         `json:"location_id,omitempty"`
	UnitType   inventory.UnitType `json:"unit_type"`
	Quantity   int64              `json:"quantity"`
	UnitCost   decimal.Decimal    `json:"unit_cost"`
	Origin     string             `json:"origin"`
	Lifecycle  string             `json:"lifecycle"`
	CreatedBy  string             `json:"created_by"`
	UpdatedBy  string             `json:"updated_by"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	Version    int                `json:"version"`
}

// ToStockRecordResponse converts a domain StockRecord to a response
func ToStockRecordResponse(r *inventory.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ID:         r.ID,
		ItemID:     r.ItemID,
		LocationID: r.LocationID,
		UnitType:   r.UnitType,
		Quantity:   r.Quantity,
		UnitCost:   r.UnitCost,
		Origin:     string(r.Origin),
		Lifecycle:  string(r.Lifecycle),
		CreatedBy:  r.CreatedBy,
		UpdatedBy:  r.UpdatedBy,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		Version:    r.Version,
	}
}

// ToStockRecordResponses converts a slice of records
func ToStockRecordResponses(records []inventory.StockRecord) []StockRecordResponse {
	out := make([]StockRecordResponse, len(records))
	for i := range records {
		out[i] = ToStockRecordResponse(&records[i])
	}
	return out
}

// ReservationResponse represents a reservation in API responses
type ReservationResponse struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	OrderID   uuid.UUID `json:"order_id"`
	BoxCount  int64     `json:"box_count"`
	UnitCount int64     `json:"unit_count"`
	Lifecycle string    `json:"lifecycle"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ToReservationResponse converts a domain Reservation to a response
func ToReservationResponse(r *inventory.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID,
		ItemID:    r.ItemID,
		OrderID:   r.OrderID,
		BoxCount:  r.BoxCount,
		UnitCount: r.UnitCount,
		Lifecycle: string(r.Lifecycle),
		UpdatedBy: r.UpdatedBy,
		UpdatedAt: r.UpdatedAt,
		Version:   r.Version,
	}
}

// ReceiveInput records purchased stock that has not been shelved yet
type ReceiveInput struct {
	ItemID   uuid.UUID          `json:"item_id" binding:"required"`
	UnitType inventory.UnitType `json:"unit_type" binding:"required,oneof=box unit"`
	Quantity int64              `json:"quantity" binding:"required,gt=0"`
	UnitCost decimal.Decimal    `json:"unit_cost"`
	Actor    string             `json:"-"`
}

// ShelveInput places an unassigned record at a location
type ShelveInput struct {
	RecordID     uuid.UUID `json:"record_id" binding:"required"`
	LocationCode string    `json:"location_code" binding:"required"`
	Actor        string    `json:"-"`
}

// TransferInput moves quantity from a record to a location
type TransferInput struct {
	SourceRecordID          uuid.UUID          `json:"source_record_id" binding:"required"`
	DestinationLocationCode string             `json:"destination_location_code" binding:"required"`
	UnitType                inventory.UnitType `json:"unit_type" binding:"required,oneof=box unit"`
	// Quantity is expressed in the source record's unit type
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
	Actor    string `json:"-"`
}

// TransferResult is the state of both records after a transfer
type TransferResult struct {
	Source        StockRecordResponse `json:"source"`
	Destination   StockRecordResponse `json:"destination"`
	SourceRetired bool                `json:"source_retired"`
}

// RemoveFifoInput takes single units of an item out of stock, oldest first
type RemoveFifoInput struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int64     `json:"quantity" binding:"required,gt=0"`
	Reason   string    `json:"reason"`
	Actor    string    `json:"-"`
}

// RemovalOutcome lists the records touched by a FIFO removal
type RemovalOutcome struct {
	ItemID  uuid.UUID               `json:"item_id"`
	Removed int64                   `json:"removed"`
	Steps   []inventory.RemovalStep `json:"steps"`
}

// ReserveInput promises stock of an item to an order
type ReserveInput struct {
	ItemID   uuid.UUID          `json:"item_id" binding:"required"`
	OrderID  uuid.UUID          `json:"order_id" binding:"required"`
	UnitType inventory.UnitType `json:"unit_type" binding:"required,oneof=box unit"`
	Quantity int64              `json:"quantity" binding:"required,gt=0"`
	Actor    string             `json:"-"`
}

// AvailabilityResponse reports physical, reserved and available quantity
type AvailabilityResponse struct {
	ItemID    uuid.UUID          `json:"item_id"`
	UnitType  inventory.UnitType `json:"unit_type"`
	Physical  int64              `json:"physical"`
	Reserved  int64              `json:"reserved"`
	Available int64              `json:"available"`
}
