// Package payment validates tendered payments against an order total.
package payment

import (
	"fmt"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Type is the payment method of a tender
type Type string

const (
	TypeCredit  Type = "credito"
	TypeDebit   Type = "debito"
	TypePix     Type = "pix"
	TypeCash    Type = "dinheiro"
	TypeVoucher Type = "voucher"
)

// IsValid checks if the payment type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeCredit, TypeDebit, TypePix, TypeCash, TypeVoucher:
		return true
	}
	return false
}

// MaxTenders is the most payments a single order accepts
const MaxTenders = 3

var installmentRates = map[int]decimal.Decimal{
	1: decimal.RequireFromString("0.05"),
	2: decimal.RequireFromString("0.07"),
	3: decimal.RequireFromString("0.08"),
}

// SurchargeRate returns the credit surcharge for an installment count
func SurchargeRate(installments int) (decimal.Decimal, error) {
	rate, ok := installmentRates[installments]
	if !ok {
		return decimal.Zero, shared.Invalidf("credit payments accept 1 to 3 installments, got %d", installments)
	}
	return rate, nil
}

// Tender is one payment offered against an order
type Tender struct {
	Type         Type            `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Installments int             `json:"installments,omitempty"`
}

// Validate checks the tender's own shape
func (t Tender) Validate() error {
	if !t.Type.IsValid() {
		return shared.Invalidf("unknown payment type %q", t.Type)
	}
	if !t.Amount.IsPositive() {
		return shared.Invalidf("payment amount must be positive")
	}
	if t.Type == TypeCredit {
		if _, err := SurchargeRate(t.Installments); err != nil {
			return err
		}
	}
	return nil
}

// Surcharge returns the credit surcharge carried by the tender, zero otherwise
func (t Tender) Surcharge() (decimal.Decimal, error) {
	if t.Type != TypeCredit {
		return decimal.Zero, nil
	}
	rate, err := SurchargeRate(t.Installments)
	if err != nil {
		return decimal.Zero, err
	}
	return valueobject.RoundMoney(t.Amount.Mul(rate)), nil
}

// Settlement is the outcome of a successful validation
type Settlement struct {
	// TotalPaid counts tendered amounts plus surcharges, minus change
	TotalPaid decimal.Decimal `json:"total_paid"`
	Surcharge decimal.Decimal `json:"surcharge"`
	Change    decimal.Decimal `json:"change"`
}

// Validate checks that one to three tenders cover totalPrice. Cash overpayment
// is returned as change and is not counted as paid.
func Validate(tenders []Tender, totalPrice decimal.Decimal) (*Settlement, error) {
	if len(tenders) == 0 || len(tenders) > MaxTenders {
		return nil, shared.Invalidf("between 1 and %d payments are required, got %d", MaxTenders, len(tenders))
	}

	total := valueobject.RoundMoney(totalPrice)
	paid := decimal.Zero
	surcharge := decimal.Zero
	change := decimal.Zero

	for _, t := range tenders {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		s, err := t.Surcharge()
		if err != nil {
			return nil, err
		}
		paid = paid.Add(t.Amount)
		surcharge = surcharge.Add(s)

		if t.Type == TypeCash {
			excess := paid.Add(surcharge).Sub(total)
			if excess.IsPositive() {
				change = change.Add(excess)
				paid = paid.Sub(excess)
			}
		}
	}

	counted := paid.Add(surcharge)
	if counted.LessThan(total) {
		return nil, shared.NewDomainError(shared.CodeInsufficientPayment,
			fmt.Sprintf("payments of %s do not cover the total of %s",
				valueobject.FormatBRL(counted), valueobject.FormatBRL(total)))
	}

	return &Settlement{
		TotalPaid: valueobject.RoundMoney(counted),
		Surcharge: valueobject.RoundMoney(surcharge),
		Change:    valueobject.RoundMoney(change),
	}, nil
}
