package models

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/payment"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber    int64           `gorm:"not null;uniqueIndex"`
	ClientID       *uuid.UUID      `gorm:"type:uuid;index"`
	SellerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Channel        string          `gorm:"type:varchar(20);not null"`
	DeliveryType   string          `gorm:"type:varchar(20);not null"`
	Discount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalTax       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPaid      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Change         decimal.Decimal `gorm:"column:change_due;type:decimal(18,4);not null;default:0"`
	Status         string          `gorm:"type:varchar(20);not null;index"`
	PreviousStatus string          `gorm:"type:varchar(20);not null;default:''"`
	StockCommitted bool            `gorm:"not null;default:false"`
	Dock           string          `gorm:"type:varchar(50);not null;default:''"`
	Observation    string          `gorm:"type:text"`
	ProofOfPayment string          `gorm:"type:varchar(500);not null;default:''"`
	Lifecycle      string          `gorm:"type:varchar(10);not null;default:'active';index"`
	PlacedAt       time.Time       `gorm:"not null"`
	PickedAt       *time.Time
	VerifiedAt     *time.Time
	DispatchedAt   *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	// Associations
	Items    []OrderItemModel      `gorm:"foreignKey:OrderID;references:ID"`
	Payments []PaymentReceiptModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		ClientID:          m.ClientID,
		SellerID:          m.SellerID,
		Channel:           trade.Channel(m.Channel),
		DeliveryType:      trade.DeliveryType(m.DeliveryType),
		Items:             make([]trade.LineItem, len(m.Items)),
		Payments:          make([]payment.Receipt, len(m.Payments)),
		Discount:          m.Discount,
		Subtotal:          m.Subtotal,
		TotalTax:          m.TotalTax,
		Total:             m.Total,
		TotalPaid:         m.TotalPaid,
		Change:            m.Change,
		Status:            trade.OrderStatus(m.Status),
		PreviousStatus:    trade.OrderStatus(m.PreviousStatus),
		StockCommitted:    m.StockCommitted,
		Dock:              m.Dock,
		Observation:       m.Observation,
		ProofOfPayment:    m.ProofOfPayment,
		Lifecycle:         shared.Lifecycle(m.Lifecycle),
		PlacedAt:          m.PlacedAt,
		PickedAt:          m.PickedAt,
		VerifiedAt:        m.VerifiedAt,
		DispatchedAt:      m.DispatchedAt,
		DeliveredAt:       m.DeliveredAt,
		CancelledAt:       m.CancelledAt,
	}
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToLineItem()
	}
	for i := range m.Payments {
		o.Payments[i] = *m.Payments[i].ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(&o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.ClientID = o.ClientID
	m.SellerID = o.SellerID
	m.Channel = string(o.Channel)
	m.DeliveryType = string(o.DeliveryType)
	m.Discount = o.Discount
	m.Subtotal = o.Subtotal
	m.TotalTax = o.TotalTax
	m.Total = o.Total
	m.TotalPaid = o.TotalPaid
	m.Change = o.Change
	m.Status = string(o.Status)
	m.PreviousStatus = string(o.PreviousStatus)
	m.StockCommitted = o.StockCommitted
	m.Dock = o.Dock
	m.Observation = o.Observation
	m.ProofOfPayment = o.ProofOfPayment
	m.Lifecycle = string(o.Lifecycle)
	m.PlacedAt = o.PlacedAt
	m.PickedAt = o.PickedAt
	m.VerifiedAt = o.VerifiedAt
	m.DispatchedAt = o.DispatchedAt
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = OrderItemModel{OrderID: o.ID}
		m.Items[i].FromLineItem(&o.Items[i], i)
	}
	m.Payments = make([]PaymentReceiptModel, len(o.Payments))
	for i := range o.Payments {
		m.Payments[i] = *PaymentReceiptModelFromDomain(o.ID, &o.Payments[i], i)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// LineItemColumns holds the line columns shared by order and cart lines
type LineItemColumns struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	Position         int             `gorm:"not null;default:0"`
	ItemID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity         int64           `gorm:"not null"`
	UnitType         string          `gorm:"type:varchar(10);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Tax              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PickStatus       string          `gorm:"type:varchar(20);not null;default:'default'"`
	PickedQuantity   int64           `gorm:"not null;default:0"`
	PickLocationID   *uuid.UUID      `gorm:"type:uuid"`
	PickLocationCode string          `gorm:"type:varchar(50);not null;default:''"`
	VerifiedQuantity int64           `gorm:"not null;default:0"`
	Completed        bool            `gorm:"not null;default:false"`
}

// ToLineItem converts the columns to a domain LineItem
func (c *LineItemColumns) ToLineItem() trade.LineItem {
	return trade.LineItem{
		ID:               c.ID,
		ItemID:           c.ItemID,
		Quantity:         c.Quantity,
		UnitType:         inventory.UnitType(c.UnitType),
		UnitPrice:        c.UnitPrice,
		Subtotal:         c.Subtotal,
		Tax:              c.Tax,
		TotalPrice:       c.TotalPrice,
		PickStatus:       trade.PickStatus(c.PickStatus),
		PickedQuantity:   c.PickedQuantity,
		PickLocationID:   c.PickLocationID,
		PickLocationCode: c.PickLocationCode,
		VerifiedQuantity: c.VerifiedQuantity,
		Completed:        c.Completed,
	}
}

// FromLineItem populates the columns from a domain LineItem at a position
func (c *LineItemColumns) FromLineItem(l *trade.LineItem, position int) {
	c.ID = l.ID
	c.Position = position
	c.ItemID = l.ItemID
	c.Quantity = l.Quantity
	c.UnitType = string(l.UnitType)
	c.UnitPrice = l.UnitPrice
	c.Subtotal = l.Subtotal
	c.Tax = l.Tax
	c.TotalPrice = l.TotalPrice
	c.PickStatus = string(l.PickStatus)
	c.PickedQuantity = l.PickedQuantity
	c.PickLocationID = l.PickLocationID
	c.PickLocationCode = l.PickLocationCode
	c.VerifiedQuantity = l.VerifiedQuantity
	c.Completed = l.Completed
}

// OrderItemModel is the persistence model for an order line.
type OrderItemModel struct {
	LineItemColumns
	OrderID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// CartItemModel is the persistence model for a cart line.
type CartItemModel struct {
	LineItemColumns
	CartID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// PaymentReceiptModel is the persistence model for a payment receipt.
type PaymentReceiptModel struct {
	BaseModel
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position     int             `gorm:"not null;default:0"`
	Type         string          `gorm:"type:varchar(20);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Installments int             `gorm:"not null;default:0"`
	Surcharge    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status       string          `gorm:"type:varchar(20);not null"`
	PaidAt       *time.Time
}

// TableName returns the table name for GORM
func (PaymentReceiptModel) TableName() string {
	return "payment_receipts"
}

// ToDomain converts the persistence model to a domain Receipt.
func (m *PaymentReceiptModel) ToDomain() *payment.Receipt {
	return &payment.Receipt{
		BaseEntity:   m.BaseModel.ToDomain(),
		Type:         payment.Type(m.Type),
		Amount:       m.Amount,
		Installments: m.Installments,
		Surcharge:    m.Surcharge,
		Status:       payment.ReceiptStatus(m.Status),
		PaidAt:       m.PaidAt,
	}
}

// PaymentReceiptModelFromDomain creates a persistence model for a receipt of an order.
func PaymentReceiptModelFromDomain(orderID uuid.UUID, r *payment.Receipt, position int) *PaymentReceiptModel {
	m := &PaymentReceiptModel{
		OrderID:      orderID,
		Position:     position,
		Type:         string(r.Type),
		Amount:       r.Amount,
		Installments: r.Installments,
		Surcharge:    r.Surcharge,
		Status:       string(r.Status),
		PaidAt:       r.PaidAt,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// CartModel is the persistence model for the Cart aggregate root.
type CartModel struct {
	AggregateModel
	SellerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientID *uuid.UUID      `gorm:"type:uuid"`
	Discount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalTax decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status   string          `gorm:"type:varchar(20);not null;default:'open'"`
	OrderID  *uuid.UUID      `gorm:"type:uuid"`
	// Associations
	Items []CartItemModel `gorm:"foreignKey:CartID;references:ID"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// ToDomain converts the persistence model to a domain Cart entity.
func (m *CartModel) ToDomain() *trade.Cart {
	c := &trade.Cart{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SellerID:          m.SellerID,
		ClientID:          m.ClientID,
		Items:             make([]trade.LineItem, len(m.Items)),
		Discount:          m.Discount,
		Subtotal:          m.Subtotal,
		TotalTax:          m.TotalTax,
		Status:            trade.CartStatus(m.Status),
		OrderID:           m.OrderID,
	}
	for i := range m.Items {
		c.Items[i] = m.Items[i].ToLineItem()
	}
	return c
}

// FromDomain populates the persistence model from a domain Cart entity.
func (m *CartModel) FromDomain(c *trade.Cart) {
	m.FromDomainAggregateRoot(&c.BaseAggregateRoot)
	m.SellerID = c.SellerID
	m.ClientID = c.ClientID
	m.Discount = c.Discount
	m.Subtotal = c.Subtotal
	m.TotalTax = c.TotalTax
	m.Status = string(c.Status)
	m.OrderID = c.OrderID
	m.Items = make([]CartItemModel, len(c.Items))
	for i := range c.Items {
		m.Items[i] = CartItemModel{CartID: c.ID}
		m.Items[i].FromLineItem(&c.Items[i], i)
	}
}

// CartModelFromDomain creates a new persistence model from a domain Cart entity.
func CartModelFromDomain(c *trade.Cart) *CartModel {
	m := &CartModel{}
	m.FromDomain(c)
	return m
}
