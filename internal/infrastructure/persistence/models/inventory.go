package models

import (
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRecordModel is the persistence model for the StockRecord aggregate root.
type StockRecordModel struct {
	AggregateModel
	ItemID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_records_key,priority:1"`
	LocationID *uuid.UUID      `gorm:"type:uuid;index:idx_stock_records_key,priority:2"`
	UnitType   string          `gorm:"type:varchar(10);not null;index:idx_stock_records_key,priority:3"`
	Quantity   int64           `gorm:"not null;default:0"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Origin     string          `gorm:"type:varchar(20);not null"`
	Lifecycle  string          `gorm:"type:varchar(10);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (StockRecordModel) TableName() string {
	return "stock_records"
}

// ToDomain converts the persistence model to a domain StockRecord entity.
func (m *StockRecordModel) ToDomain() *inventory.StockRecord {
	return &inventory.StockRecord{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ItemID:            m.ItemID,
		LocationID:        m.LocationID,
		UnitType:          inventory.UnitType(m.UnitType),
		Quantity:          m.Quantity,
		UnitCost:          m.UnitCost,
		Origin:            inventory.RecordOrigin(m.Origin),
		Lifecycle:         shared.Lifecycle(m.Lifecycle),
	}
}

// FromDomain populates the persistence model from a domain StockRecord entity.
func (m *StockRecordModel) FromDomain(r *inventory.StockRecord) {
	m.FromDomainAggregateRoot(&r.BaseAggregateRoot)
	m.ItemID = r.ItemID
	m.LocationID = r.LocationID
	m.UnitType = string(r.UnitType)
	m.Quantity = r.Quantity
	m.UnitCost = r.UnitCost
	m.Origin = string(r.Origin)
	m.Lifecycle = string(r.Lifecycle)
}

// StockRecordModelFromDomain creates a new persistence model from a domain StockRecord entity.
func StockRecordModelFromDomain(r *inventory.StockRecord) *StockRecordModel {
	m := &StockRecordModel{}
	m.FromDomain(r)
	return m
}

// ReservationModel is the persistence model for the Reservation aggregate root.
// At most one active row may exist per (item, order) pair.
type ReservationModel struct {
	AggregateModel
	ItemID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reservations_active_pair,priority:1,where:lifecycle = 'active'"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_reservations_active_pair,priority:2,where:lifecycle = 'active'"`
	BoxCount  int64     `gorm:"not null;default:0"`
	UnitCount int64     `gorm:"not null;default:0"`
	Lifecycle string    `gorm:"type:varchar(10);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ReservationModel) TableName() string {
	return "reservations"
}

// ToDomain converts the persistence model to a domain Reservation entity.
func (m *ReservationModel) ToDomain() *inventory.Reservation {
	return &inventory.Reservation{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ItemID:            m.ItemID,
		OrderID:           m.OrderID,
		BoxCount:          m.BoxCount,
		UnitCount:         m.UnitCount,
		Lifecycle:         shared.Lifecycle(m.Lifecycle),
	}
}

// FromDomain populates the persistence model from a domain Reservation entity.
func (m *ReservationModel) FromDomain(r *inventory.Reservation) {
	m.FromDomainAggregateRoot(&r.BaseAggregateRoot)
	m.ItemID = r.ItemID
	m.OrderID = r.OrderID
	m.BoxCount = r.BoxCount
	m.UnitCount = r.UnitCount
	m.Lifecycle = string(r.Lifecycle)
}

// ReservationModelFromDomain creates a new persistence model from a domain Reservation entity.
func ReservationModelFromDomain(r *inventory.Reservation) *ReservationModel {
	m := &ReservationModel{}
	m.FromDomain(r)
	return m
}
