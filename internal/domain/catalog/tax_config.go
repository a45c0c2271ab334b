package catalog

import (
	"strings"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TaxConfig defines the retail and wholesale tax percentages and the quantity
// from which a line counts as wholesale. Percentages are whole numbers (35 = 35%).
type TaxConfig struct {
	shared.BaseAggregateRoot
	Name             string
	RetailPercent    decimal.Decimal
	WholesalePercent decimal.Decimal
	MinWholesaleQty  int64
	Lifecycle        shared.Lifecycle
}

// NewTaxConfig creates a tax configuration
func NewTaxConfig(name string, retailPercent, wholesalePercent decimal.Decimal, minWholesaleQty int64, actor string) (*TaxConfig, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.Invalidf("tax config name cannot be empty")
	}
	if err := validatePercent(retailPercent); err != nil {
		return nil, err
	}
	if err := validatePercent(wholesalePercent); err != nil {
		return nil, err
	}
	if minWholesaleQty < 1 {
		return nil, shared.Invalidf("minimum wholesale quantity must be at least 1")
	}

	return &TaxConfig{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(actor),
		Name:              name,
		RetailPercent:     retailPercent,
		WholesalePercent:  wholesalePercent,
		MinWholesaleQty:   minWholesaleQty,
		Lifecycle:         shared.LifecycleActive,
	}, nil
}

func validatePercent(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(valueobject.Hundred) {
		return shared.Invalidf("tax percentage must be between 0 and 100")
	}
	return nil
}

// IsWholesale reports whether quantity reaches the wholesale threshold
func (c *TaxConfig) IsWholesale(quantity int64) bool {
	return quantity >= c.MinWholesaleQty
}

// RateFor returns the tax rate (0.35, not 35) that applies to a quantity
func (c *TaxConfig) RateFor(quantity int64) decimal.Decimal {
	if c.IsWholesale(quantity) {
		return valueobject.PercentToRate(c.WholesalePercent)
	}
	return valueobject.PercentToRate(c.RetailPercent)
}
