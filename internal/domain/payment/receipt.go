package payment

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReceiptStatus tracks whether a tender has been collected
type ReceiptStatus string

const (
	ReceiptPending ReceiptStatus = "pendente"
	ReceiptPaid    ReceiptStatus = "pago"
)

// Receipt records one tender attached to an order
type Receipt struct {
	shared.BaseEntity
	Type         Type
	Amount       decimal.Decimal
	Installments int
	Surcharge    decimal.Decimal
	Status       ReceiptStatus
	PaidAt       *time.Time
}

// NewReceipt creates a pending receipt for a validated tender
func NewReceipt(t Tender) (*Receipt, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	s, err := t.Surcharge()
	if err != nil {
		return nil, err
	}
	return &Receipt{
		BaseEntity:   shared.NewBaseEntity(),
		Type:         t.Type,
		Amount:       t.Amount,
		Installments: t.Installments,
		Surcharge:    s,
		Status:       ReceiptPending,
	}, nil
}

// MarkPaid marks the receipt as collected
func (r *Receipt) MarkPaid() {
	if r.Status == ReceiptPaid {
		return
	}
	now := time.Now()
	r.Status = ReceiptPaid
	r.PaidAt = &now
	r.UpdatedAt = now
}

// IsPaid returns true once the receipt was collected
func (r *Receipt) IsPaid() bool {
	return r.Status == ReceiptPaid
}

// Counted returns the amount the receipt contributes towards the total
func (r *Receipt) Counted() decimal.Decimal {
	return r.Amount.Add(r.Surcharge)
}
