package models

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemModel is the persistence model for the catalog Item aggregate root.
type ItemModel struct {
	AggregateModel
	SKU            string          `gorm:"column:sku;type:varchar(50);not null;uniqueIndex"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Price          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RetailPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PromotionPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsPromotion    bool            `gorm:"not null;default:false"`
	TieredPricing  bool            `gorm:"not null;default:false"`
	UnitsPerBox    int             `gorm:"not null"`
	Lifecycle      string          `gorm:"type:varchar(10);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item entity.
func (m *ItemModel) ToDomain() *catalog.Item {
	return &catalog.Item{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SKU:               m.SKU,
		Name:              m.Name,
		Price:             m.Price,
		WholesalePrice:    m.WholesalePrice,
		RetailPrice:       m.RetailPrice,
		PromotionPrice:    m.PromotionPrice,
		IsPromotion:       m.IsPromotion,
		TieredPricing:     m.TieredPricing,
		UnitsPerBox:       m.UnitsPerBox,
		Lifecycle:         shared.Lifecycle(m.Lifecycle),
	}
}

// FromDomain populates the persistence model from a domain Item entity.
func (m *ItemModel) FromDomain(i *catalog.Item) {
	m.FromDomainAggregateRoot(&i.BaseAggregateRoot)
	m.SKU = i.SKU
	m.Name = i.Name
	m.Price = i.Price
	m.WholesalePrice = i.WholesalePrice
	m.RetailPrice = i.RetailPrice
	m.PromotionPrice = i.PromotionPrice
	m.IsPromotion = i.IsPromotion
	m.TieredPricing = i.TieredPricing
	m.UnitsPerBox = i.UnitsPerBox
	m.Lifecycle = string(i.Lifecycle)
}

// ItemModelFromDomain creates a new persistence model from a domain Item entity.
func ItemModelFromDomain(i *catalog.Item) *ItemModel {
	m := &ItemModel{}
	m.FromDomain(i)
	return m
}

// LocationModel is the persistence model for the Location aggregate root.
type LocationModel struct {
	AggregateModel
	Code      string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string `gorm:"type:varchar(200);not null;default:''"`
	Lifecycle string `gorm:"type:varchar(10);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "locations"
}

// ToDomain converts the persistence model to a domain Location entity.
func (m *LocationModel) ToDomain() *catalog.Location {
	return &catalog.Location{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Lifecycle:         shared.Lifecycle(m.Lifecycle),
	}
}

// FromDomain populates the persistence model from a domain Location entity.
func (m *LocationModel) FromDomain(l *catalog.Location) {
	m.FromDomainAggregateRoot(&l.BaseAggregateRoot)
	m.Code = l.Code
	m.Name = l.Name
	m.Lifecycle = string(l.Lifecycle)
}

// LocationModelFromDomain creates a new persistence model from a domain Location entity.
func LocationModelFromDomain(l *catalog.Location) *LocationModel {
	m := &LocationModel{}
	m.FromDomain(l)
	return m
}

// LocationItemModel is one row of a location's item index
type LocationItemModel struct {
	LocationID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	StockRecordID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocationItemModel) TableName() string {
	return "location_items"
}

// TaxConfigModel is the persistence model for the TaxConfig aggregate root.
type TaxConfigModel struct {
	AggregateModel
	Name             string          `gorm:"type:varchar(100);not null"`
	RetailPercent    decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	WholesalePercent decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	MinWholesaleQty  int64           `gorm:"not null"`
	Lifecycle        string          `gorm:"type:varchar(10);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (TaxConfigModel) TableName() string {
	return "tax_configs"
}

// ToDomain converts the persistence model to a domain TaxConfig entity.
func (m *TaxConfigModel) ToDomain() *catalog.TaxConfig {
	return &catalog.TaxConfig{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		RetailPercent:     m.RetailPercent,
		WholesalePercent:  m.WholesalePercent,
		MinWholesaleQty:   m.MinWholesaleQty,
		Lifecycle:         shared.Lifecycle(m.Lifecycle),
	}
}

// FromDomain populates the persistence model from a domain TaxConfig entity.
func (m *TaxConfigModel) FromDomain(c *catalog.TaxConfig) {
	m.FromDomainAggregateRoot(&c.BaseAggregateRoot)
	m.Name = c.Name
	m.RetailPercent = c.RetailPercent
	m.WholesalePercent = c.WholesalePercent
	m.MinWholesaleQty = c.MinWholesaleQty
	m.Lifecycle = string(c.Lifecycle)
}

// TaxConfigModelFromDomain creates a new persistence model from a domain TaxConfig entity.
func TaxConfigModelFromDomain(c *catalog.TaxConfig) *TaxConfigModel {
	m := &TaxConfigModel{}
	m.FromDomain(c)
	return m
}

// TaxSelectionSingletonID is the primary key of the only tax_selection row
const TaxSelectionSingletonID = 1

// TaxSelectionModel records which tax configuration is selected. The table
// holds a single row.
type TaxSelectionModel struct {
	ID          int       `gorm:"primaryKey;autoIncrement:false"`
	TaxConfigID uuid.UUID `gorm:"type:uuid;not null"`
	UpdatedBy   string    `gorm:"type:varchar(100);not null;default:''"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TaxSelectionModel) TableName() string {
	return "tax_selection"
}
