// Package pricing computes line and order totals from catalog prices and the
// selected tax configuration. Everything here is a pure function.
package pricing

import (
	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rates used when no tax configuration is selected
var (
	DefaultSingleUnitRate = decimal.RequireFromString("0.35")
	DefaultMultiUnitRate  = decimal.RequireFromString("0.15")
)

// DefaultWholesaleThreshold applies to tiered items when no tax configuration is selected
const DefaultWholesaleThreshold int64 = 2

// LineInput is one line to price
type LineInput struct {
	ItemID   uuid.UUID
	Quantity int64
	UnitType inventory.UnitType
}

// PricedLine is a line with its computed prices
type PricedLine struct {
	ItemID        uuid.UUID          `json:"item_id"`
	Quantity      int64              `json:"quantity"`
	UnitType      inventory.UnitType `json:"unit_type"`
	BoxEquivalent bool               `json:"box_equivalent"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	Tax           decimal.Decimal    `json:"tax"`
	UnitPrice     decimal.Decimal    `json:"unit_price"`
	TotalPrice    decimal.Decimal    `json:"total_price"`
}

// Quote is the result of pricing a set of lines
type Quote struct {
	Lines []PricedLine `json:"lines"`
	// NetSubtotal is the sum of line subtotals before tax
	NetSubtotal decimal.Decimal `json:"net_subtotal"`
	TotalTax    decimal.Decimal `json:"total_tax"`
	// Subtotal is the tax-inclusive sum carried onto the order
	Subtotal decimal.Decimal `json:"subtotal"`
}

// PriceLines prices every line against the catalog and the tax configuration.
// tax may be nil when no configuration is selected.
func PriceLines(lines []LineInput, tax *catalog.TaxConfig, items map[uuid.UUID]*catalog.Item) (*Quote, error) {
	q := &Quote{
		Lines:       make([]PricedLine, 0, len(lines)),
		NetSubtotal: decimal.Zero,
		TotalTax:    decimal.Zero,
	}

	for _, in := range lines {
		item, ok := items[in.ItemID]
		if !ok || item == nil {
			return nil, shared.NotFoundf("item %s not found", in.ItemID)
		}
		line, err := PriceLine(in, tax, item)
		if err != nil {
			return nil, err
		}
		q.Lines = append(q.Lines, *line)
		q.NetSubtotal = q.NetSubtotal.Add(line.Subtotal)
		q.TotalTax = q.TotalTax.Add(line.Tax)
	}

	q.NetSubtotal = valueobject.RoundMoney(q.NetSubtotal)
	q.TotalTax = valueobject.RoundMoney(q.TotalTax)
	q.Subtotal = q.NetSubtotal.Add(q.TotalTax)
	return q, nil
}

// PriceLine prices a single line
func PriceLine(in LineInput, tax *catalog.TaxConfig, item *catalog.Item) (*PricedLine, error) {
	if in.Quantity <= 0 {
		return nil, shared.Invalidf("quantity must be positive")
	}
	if !in.UnitType.IsValid() {
		return nil, shared.Invalidf("unknown unit type %q", in.UnitType)
	}

	qty := decimal.NewFromInt(in.Quantity)
	base := item.BasePrice()
	perBox := item.BoxFactor()

	subtotal := base.Mul(qty)
	if in.UnitType == inventory.UnitTypeBox {
		subtotal = base.Mul(decimal.NewFromInt(perBox)).Mul(qty)
	}

	boxEquivalent := in.UnitType == inventory.UnitTypeBox || in.Quantity >= perBox
	rate := decimal.Zero

	switch {
	case boxEquivalent:
		// bulk lines are priced at box terms and carry no tax
	case item.TieredPricing:
		subtotal = tierPrice(item, tax, in.Quantity).Mul(qty)
	case item.IsPromotion:
		// promotional prices already include tax
	case tax != nil:
		rate = tax.RateFor(in.Quantity)
	case in.Quantity == 1:
		rate = DefaultSingleUnitRate
	default:
		rate = DefaultMultiUnitRate
	}

	subtotal = valueobject.RoundMoney(subtotal)
	lineTax := valueobject.RoundMoney(subtotal.Mul(rate))
	total := subtotal.Add(lineTax)

	return &PricedLine{
		ItemID:        in.ItemID,
		Quantity:      in.Quantity,
		UnitType:      in.UnitType,
		BoxEquivalent: boxEquivalent,
		Subtotal:      subtotal,
		TaxRate:       rate,
		Tax:           lineTax,
		UnitPrice:     valueobject.RoundMoney(total.Div(qty)),
		TotalPrice:    total,
	}, nil
}

func tierPrice(item *catalog.Item, tax *catalog.TaxConfig, quantity int64) decimal.Decimal {
	if tax != nil {
		if tax.IsWholesale(quantity) {
			return item.WholesalePrice
		}
		return item.RetailPrice
	}
	if quantity >= DefaultWholesaleThreshold {
		return item.WholesalePrice
	}
	return item.BasePrice()
}
