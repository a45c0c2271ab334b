package catalog

import (
	"strings"
	"time"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Item is a sellable catalog entry with its price tiers and packaging factor
type Item struct {
	shared.BaseAggregateRoot
	SKU            string
	Name           string
	Price          decimal.Decimal
	WholesalePrice decimal.Decimal
	RetailPrice    decimal.Decimal
	PromotionPrice decimal.Decimal
	IsPromotion    bool
	// TieredPricing switches the item to wholesale/retail price tiers,
	// which carry no tax rate of their own.
	TieredPricing bool
	UnitsPerBox   int
	Lifecycle     shared.Lifecycle
}

// NewItem creates a new catalog item
func NewItem(sku, name string, price decimal.Decimal, unitsPerBox int, actor string) (*Item, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.Invalidf("item sku cannot be empty")
	}
	if len(sku) > 50 {
		return nil, shared.Invalidf("item sku cannot exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.Invalidf("item name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.Invalidf("item price cannot be negative")
	}
	if unitsPerBox < 0 {
		return nil, shared.Invalidf("units per box cannot be negative")
	}

	return &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(actor),
		SKU:               strings.ToUpper(sku),
		Name:              name,
		Price:             price,
		WholesalePrice:    decimal.Zero,
		RetailPrice:       decimal.Zero,
		PromotionPrice:    decimal.Zero,
		UnitsPerBox:       unitsPerBox,
		Lifecycle:         shared.LifecycleActive,
	}, nil
}

// SetTiers enables tiered pricing with the given wholesale and retail prices
func (i *Item) SetTiers(wholesale, retail decimal.Decimal) error {
	if wholesale.IsNegative() || retail.IsNegative() {
		return shared.Invalidf("tier prices cannot be negative")
	}
	i.WholesalePrice = wholesale
	i.RetailPrice = retail
	i.TieredPricing = true
	i.UpdatedAt = time.Now()
	return nil
}

// StartPromotion puts the item on promotion at the given price
func (i *Item) StartPromotion(price decimal.Decimal) error {
	if !price.IsPositive() {
		return shared.Invalidf("promotion price must be positive")
	}
	i.PromotionPrice = price
	i.IsPromotion = true
	i.UpdatedAt = time.Now()
	return nil
}

// EndPromotion takes the item off promotion
func (i *Item) EndPromotion() {
	i.IsPromotion = false
	i.UpdatedAt = time.Now()
}

// BasePrice returns the promotion price when on promotion, otherwise the catalog price
func (i *Item) BasePrice() decimal.Decimal {
	if i.IsPromotion {
		return i.PromotionPrice
	}
	return i.Price
}

// BoxFactor returns the number of units in one box, never less than 1
func (i *Item) BoxFactor() int64 {
	if i.UnitsPerBox <= 0 {
		return 1
	}
	return int64(i.UnitsPerBox)
}
