package pricing

import (
	"github.com/erp/fulfillment/internal/domain/payment"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderTotal returns subtotal minus discount plus the surcharge of every
// credit tender. The discount cannot exceed the subtotal.
func OrderTotal(subtotal, discount decimal.Decimal, tenders []payment.Tender) (decimal.Decimal, error) {
	if discount.IsNegative() {
		return decimal.Zero, shared.Invalidf("discount cannot be negative")
	}
	if discount.GreaterThan(subtotal) {
		return decimal.Zero, shared.Invalidf("discount cannot exceed the subtotal")
	}

	total := subtotal.Sub(discount)
	for _, t := range tenders {
		s, err := t.Surcharge()
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(s)
	}
	return valueobject.RoundMoney(total), nil
}
