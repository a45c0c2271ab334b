package trade

import (
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/pricing"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one requested item on a cart or order
type LineItem struct {
	ID         uuid.UUID
	ItemID     uuid.UUID
	Quantity   int64
	UnitType   inventory.UnitType
	UnitPrice  decimal.Decimal
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	TotalPrice decimal.Decimal

	PickStatus       PickStatus
	PickedQuantity   int64
	PickLocationID   *uuid.UUID
	PickLocationCode string

	VerifiedQuantity int64
	Completed        bool
}

// NewLineItem creates an unpriced line
func NewLineItem(itemID uuid.UUID, quantity int64, unitType inventory.UnitType) (*LineItem, error) {
	if itemID == uuid.Nil {
		return nil, shared.Invalidf("item id cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.Invalidf("quantity must be positive")
	}
	if !unitType.IsValid() {
		return nil, shared.Invalidf("unknown unit type %q", unitType)
	}
	return &LineItem{
		ID:         uuid.New(),
		ItemID:     itemID,
		Quantity:   quantity,
		UnitType:   unitType,
		UnitPrice:  decimal.Zero,
		Subtotal:   decimal.Zero,
		Tax:        decimal.Zero,
		TotalPrice: decimal.Zero,
		PickStatus: PickStatusDefault,
	}, nil
}

// ApplyPrice copies computed prices onto the line
func (l *LineItem) ApplyPrice(p pricing.PricedLine) {
	l.UnitPrice = p.UnitPrice
	l.Subtotal = p.Subtotal
	l.Tax = p.Tax
	l.TotalPrice = p.TotalPrice
}

// PricingInput returns the line as input for the pricing engine
func (l *LineItem) PricingInput() pricing.LineInput {
	return pricing.LineInput{ItemID: l.ItemID, Quantity: l.Quantity, UnitType: l.UnitType}
}

// Matches reports whether the line is for the item and unit type
func (l *LineItem) Matches(itemID uuid.UUID, unitType inventory.UnitType) bool {
	return l.ItemID == itemID && l.UnitType == unitType
}

func pricingInputs(lines []LineItem) []pricing.LineInput {
	in := make([]pricing.LineInput, len(lines))
	for i := range lines {
		in[i] = lines[i].PricingInput()
	}
	return in
}

// applyQuote prices lines in place; the quote must be in line order
func applyQuote(lines []LineItem, q *pricing.Quote) error {
	if len(q.Lines) != len(lines) {
		return shared.Invalidf("quote has %d lines, expected %d", len(q.Lines), len(lines))
	}
	for i := range lines {
		if q.Lines[i].ItemID != lines[i].ItemID {
			return shared.Invalidf("quote line %d does not match item %s", i, lines[i].ItemID)
		}
		lines[i].ApplyPrice(q.Lines[i])
	}
	return nil
}
