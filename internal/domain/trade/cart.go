package trade

import (
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/pricing"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartStatus is the state of a pre-order cart
type CartStatus string

const (
	CartStatusOpen      CartStatus = "open"
	CartStatusClosed    CartStatus = "closed"
	CartStatusCancelled CartStatus = "cancelled"
)

// Cart is a mutable pre-order built by a seller. Once closed or cancelled it
// never reopens.
type Cart struct {
	shared.BaseAggregateRoot
	SellerID uuid.UUID
	ClientID *uuid.UUID
	Items    []LineItem
	Discount decimal.Decimal
	Subtotal decimal.Decimal
	TotalTax decimal.Decimal
	Status   CartStatus
	OrderID  *uuid.UUID
}

// NewCart opens a cart for a seller
func NewCart(sellerID uuid.UUID, clientID *uuid.UUID, actor string) (*Cart, error) {
	if sellerID == uuid.Nil {
		return nil, shared.Invalidf("seller id cannot be empty")
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(actor),
		SellerID:          sellerID,
		ClientID:          clientID,
		Items:             make([]LineItem, 0),
		Discount:          decimal.Zero,
		Subtotal:          decimal.Zero,
		TotalTax:          decimal.Zero,
		Status:            CartStatusOpen,
	}, nil
}

// AddLine adds quantity of an item, merging with an existing line of the
// same unit type. Returns the resulting line quantity.
func (c *Cart) AddLine(itemID uuid.UUID, quantity int64, unitType inventory.UnitType, actor string) (int64, error) {
	if err := c.ensureOpen(); err != nil {
		return 0, err
	}
	for i := range c.Items {
		if c.Items[i].Matches(itemID, unitType) {
			if quantity <= 0 {
				return 0, shared.Invalidf("quantity must be positive")
			}
			c.Items[i].Quantity += quantity
			c.Touch(actor)
			return c.Items[i].Quantity, nil
		}
	}
	line, err := NewLineItem(itemID, quantity, unitType)
	if err != nil {
		return 0, err
	}
	c.Items = append(c.Items, *line)
	c.Touch(actor)
	return quantity, nil
}

// SetLineQuantity replaces the quantity of an existing line
func (c *Cart) SetLineQuantity(itemID uuid.UUID, unitType inventory.UnitType, quantity int64, actor string) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	if quantity <= 0 {
		return shared.Invalidf("quantity must be positive")
	}
	line := c.Line(itemID, unitType)
	if line == nil {
		return shared.NotFoundf("item %s (%s) is not in the cart", itemID, unitType)
	}
	line.Quantity = quantity
	c.Touch(actor)
	return nil
}

// RemoveLine drops a line from the cart
func (c *Cart) RemoveLine(itemID uuid.UUID, unitType inventory.UnitType, actor string) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	for i := range c.Items {
		if c.Items[i].Matches(itemID, unitType) {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Touch(actor)
			return nil
		}
	}
	return shared.NotFoundf("item %s (%s) is not in the cart", itemID, unitType)
}

// SetDiscount sets the cart discount
func (c *Cart) SetDiscount(discount decimal.Decimal, actor string) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	if discount.IsNegative() {
		return shared.Invalidf("discount cannot be negative")
	}
	c.Discount = discount
	c.Touch(actor)
	return nil
}

// ApplyQuote stores computed prices on the cart lines
func (c *Cart) ApplyQuote(q *pricing.Quote) error {
	if err := applyQuote(c.Items, q); err != nil {
		return err
	}
	c.Subtotal = q.Subtotal
	c.TotalTax = q.TotalTax
	return nil
}

// PricingInputs returns the cart lines as pricing engine input
func (c *Cart) PricingInputs() []pricing.LineInput {
	return pricingInputs(c.Items)
}

// Line returns the line for an item and unit type
func (c *Cart) Line(itemID uuid.UUID, unitType inventory.UnitType) *LineItem {
	for i := range c.Items {
		if c.Items[i].Matches(itemID, unitType) {
			return &c.Items[i]
		}
	}
	return nil
}

// Close marks the cart as converted into an order
func (c *Cart) Close(orderID uuid.UUID, actor string) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	c.Status = CartStatusClosed
	c.OrderID = &orderID
	c.Touch(actor)
	c.AddDomainEvent(NewCartStatusChangedEvent(c, CartStatusOpen, &orderID, actor))
	return nil
}

// Cancel abandons the cart
func (c *Cart) Cancel(actor string) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	c.Status = CartStatusCancelled
	c.Touch(actor)
	c.AddDomainEvent(NewCartStatusChangedEvent(c, CartStatusOpen, nil, actor))
	return nil
}

// IsOpen returns true while the cart can still change
func (c *Cart) IsOpen() bool {
	return c.Status == CartStatusOpen
}

func (c *Cart) ensureOpen() error {
	if c.Status != CartStatusOpen {
		return shared.InvalidStatef("cart is %s", c.Status)
	}
	return nil
}
