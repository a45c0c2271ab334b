package trade

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/payment"
	"github.com/erp/fulfillment/internal/domain/pricing"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Lines
// ============================================================================

// LineRequest is one requested item
type LineRequest struct {
	ItemID   uuid.UUID          `json:"item_id" binding:"required"`
	Quantity int64              `json:"quantity" binding:"required,gt=0"`
	UnitType inventory.UnitType `json:"unit_type" binding:"required,oneof=box unit"`
}

// LineResponse represents a cart or order line in API responses
type LineResponse struct {
	ID               uuid.UUID          `json:"id"`
	ItemID           uuid.UUID          `json:"item_id"`
	Quantity         int64              `json:"quantity"`
	UnitType         inventory.UnitType `json:"unit_type"`
	UnitPrice        decimal.Decimal    `json:"unit_price"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	Tax              decimal.Decimal    `json:"tax"`
	TotalPrice       decimal.Decimal    `json:"total_price"`
	PickStatus       trade.PickStatus   `json:"pick_status"`
	PickedQuantity   int64              `json:"picked_quantity"`
	PickLocationCode string             `json:"pick_location_code,omitempty"`
	VerifiedQuantity int64              `json:"verified_quantity"`
	Completed        bool               `json:"completed"`
}

func toLineResponses(lines []trade.LineItem) []LineResponse {
	out := make([]LineResponse, len(lines))
	for i, l := range lines {
		out[i] = LineResponse{
			ID:               l.ID,
			ItemID:           l.ItemID,
			Quantity:         l.Quantity,
			UnitType:         l.UnitType,
			UnitPrice:        l.UnitPrice,
			Subtotal:         l.Subtotal,
			Tax:              l.Tax,
			TotalPrice:       l.TotalPrice,
			PickStatus:       l.PickStatus,
			PickedQuantity:   l.PickedQuantity,
			PickLocationCode: l.PickLocationCode,
			VerifiedQuantity: l.VerifiedQuantity,
			Completed:        l.Completed,
		}
	}
	return out
}

func newLineItems(reqs []LineRequest) ([]trade.LineItem, error) {
	lines := make([]trade.LineItem, 0, len(reqs))
	for _, r := range reqs {
		l, err := trade.NewLineItem(r.ItemID, r.Quantity, r.UnitType)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *l)
	}
	return lines, nil
}

// ============================================================================
// Cart
// ============================================================================

// OpenCartRequest opens a cart for a seller
type OpenCartRequest struct {
	SellerID uuid.UUID  `json:"seller_id" binding:"required"`
	ClientID *uuid.UUID `json:"client_id"`
}

// UpdateLineRequest replaces the quantity of a cart line
type UpdateLineRequest struct {
	Quantity int64              `json:"quantity" binding:"required,gt=0"`
	UnitType inventory.UnitType `json:"unit_type" binding:"required,oneof=box unit"`
}

// CartResponse represents a cart in API responses
type CartResponse struct {
	ID        uuid.UUID        `json:"id"`
	SellerID  uuid.UUID        `json:"seller_id"`
	ClientID  *uuid.UUID       `json:"client_id,omitempty"`
	Status    trade.CartStatus `json:"status"`
	OrderID   *uuid.UUID       `json:"order_id,omitempty"`
	Items     []LineResponse   `json:"items"`
	Discount  decimal.Decimal  `json:"discount"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	TotalTax  decimal.Decimal  `json:"total_tax"`
	CreatedBy string           `json:"created_by"`
	UpdatedBy string           `json:"updated_by"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Version   int              `json:"version"`
}

// ToCartResponse converts a domain Cart to a response
func ToCartResponse(c *trade.Cart) CartResponse {
	return CartResponse{
		ID:        c.ID,
		SellerID:  c.SellerID,
		ClientID:  c.ClientID,
		Status:    c.Status,
		OrderID:   c.OrderID,
		Items:     toLineResponses(c.Items),
		Discount:  c.Discount,
		Subtotal:  c.Subtotal,
		TotalTax:  c.TotalTax,
		CreatedBy: c.CreatedBy,
		UpdatedBy: c.UpdatedBy,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

// QuoteRequest prices lines without storing anything
type QuoteRequest struct {
	Lines    []LineRequest    `json:"lines" binding:"required,min=1,dive"`
	Discount decimal.Decimal  `json:"discount"`
	Tenders  []payment.Tender `json:"tenders"`
}

// QuoteResponse is a priced set of lines with the order total
type QuoteResponse struct {
	Lines       []pricing.PricedLine `json:"lines"`
	NetSubtotal decimal.Decimal      `json:"net_subtotal"`
	TotalTax    decimal.Decimal      `json:"total_tax"`
	Subtotal    decimal.Decimal      `json:"subtotal"`
	Discount    decimal.Decimal      `json:"discount"`
	Total       decimal.Decimal      `json:"total"`
}

func toQuoteResponse(q *pricing.Quote, discount, total decimal.Decimal) QuoteResponse {
	return QuoteResponse{
		Lines:       q.Lines,
		NetSubtotal: q.NetSubtotal,
		TotalTax:    q.TotalTax,
		Subtotal:    q.Subtotal,
		Discount:    discount,
		Total:       total,
	}
}

// ============================================================================
// Order
// ============================================================================

// PlaceOrderRequest places an order from a cart or from inline lines
type PlaceOrderRequest struct {
	CartID       *uuid.UUID         `json:"cart_id"`
	SellerID     uuid.UUID          `json:"seller_id"`
	ClientID     *uuid.UUID         `json:"client_id"`
	Lines        []LineRequest      `json:"lines" binding:"omitempty,dive"`
	Channel      trade.Channel      `json:"channel" binding:"required,oneof=online presencial"`
	DeliveryType trade.DeliveryType `json:"delivery_type"`
	Discount     *decimal.Decimal   `json:"discount"`
	Tenders      []payment.Tender   `json:"tenders" binding:"required,min=1,max=3"`
	Observation  string             `json:"observation" binding:"max=2000"`
	// IdempotencyKey comes from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
	Actor          string `json:"-"`
}

// PickScanRequest is one scanned line during picking
type PickScanRequest struct {
	ItemID       uuid.UUID          `json:"item_id" binding:"required"`
	LocationCode string             `json:"location_code" binding:"required"`
	UnitType     inventory.UnitType `json:"unit_type" binding:"required,oneof=box unit"`
	Quantity     int64              `json:"quantity" binding:"min=0"`
}

// RecordPickRequest submits scanned lines
type RecordPickRequest struct {
	Scans []PickScanRequest `json:"scans" binding:"required,min=1,dive"`
}

// VerifyLineRequest is one counted line during verification
type VerifyLineRequest struct {
	ItemID    uuid.UUID `json:"item_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"min=0"`
	Completed bool      `json:"completed"`
}

// VerifyRequest submits counted lines
type VerifyRequest struct {
	Lines []VerifyLineRequest `json:"lines" binding:"dive"`
}

// AssignDockRequest assigns a loading dock
type AssignDockRequest struct {
	Dock string `json:"dock" binding:"required,max=50"`
}

// CancelOrderRequest cancels an order
type CancelOrderRequest struct {
	// Restock returns picked quantities to their pick locations
	Restock bool `json:"restock"`
}

// AdjustPendingRequest replaces the lines of a pending order
type AdjustPendingRequest struct {
	Lines []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ProofLinkResponse is a temporary download link to a proof of payment
type ProofLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ReceiptResponse represents a payment receipt in API responses
type ReceiptResponse struct {
	ID           uuid.UUID             `json:"id"`
	Type         payment.Type          `json:"type"`
	Amount       decimal.Decimal       `json:"amount"`
	Installments int                   `json:"installments,omitempty"`
	Surcharge    decimal.Decimal       `json:"surcharge"`
	Status       payment.ReceiptStatus `json:"status"`
	PaidAt       *time.Time            `json:"paid_at,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID             uuid.UUID          `json:"id"`
	OrderNumber    int64              `json:"order_number"`
	ClientID       *uuid.UUID         `json:"client_id,omitempty"`
	SellerID       uuid.UUID          `json:"seller_id"`
	Channel        trade.Channel      `json:"channel"`
	DeliveryType   trade.DeliveryType `json:"delivery_type"`
	Status         trade.OrderStatus  `json:"status"`
	PreviousStatus trade.OrderStatus  `json:"previous_status,omitempty"`
	Items          []LineResponse     `json:"items"`
	Payments       []ReceiptResponse  `json:"payments"`
	Discount       decimal.Decimal    `json:"discount"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TotalTax       decimal.Decimal    `json:"total_tax"`
	Total          decimal.Decimal    `json:"total"`
	TotalPaid      decimal.Decimal    `json:"total_paid"`
	Change         decimal.Decimal    `json:"change"`
	StockCommitted bool               `json:"stock_committed"`
	Dock           string             `json:"dock,omitempty"`
	Observation    string             `json:"observation,omitempty"`
	ProofOfPayment string             `json:"proof_of_payment,omitempty"`
	Lifecycle      string             `json:"lifecycle"`
	PlacedAt       time.Time          `json:"placed_at"`
	PickedAt       *time.Time         `json:"picked_at,omitempty"`
	VerifiedAt     *time.Time         `json:"verified_at,omitempty"`
	DispatchedAt   *time.Time         `json:"dispatched_at,omitempty"`
	DeliveredAt    *time.Time         `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time         `json:"cancelled_at,omitempty"`
	CreatedBy      string             `json:"created_by"`
	UpdatedBy      string             `json:"updated_by"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Version        int                `json:"version"`
}

// ToOrderResponse converts a domain Order to a response
func ToOrderResponse(o *trade.Order) OrderResponse {
	receipts := make([]ReceiptResponse, len(o.Payments))
	for i, p := range o.Payments {
		receipts[i] = ReceiptResponse{
			ID:           p.ID,
			Type:         p.Type,
			Amount:       p.Amount,
			Installments: p.Installments,
			Surcharge:    p.Surcharge,
			Status:       p.Status,
			PaidAt:       p.PaidAt,
		}
	}
	return OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		ClientID:       o.ClientID,
		SellerID:       o.SellerID,
		Channel:        o.Channel,
		DeliveryType:   o.DeliveryType,
		Status:         o.Status,
		PreviousStatus: o.PreviousStatus,
		Items:          toLineResponses(o.Items),
		Payments:       receipts,
		Discount:       o.Discount,
		Subtotal:       o.Subtotal,
		TotalTax:       o.TotalTax,
		Total:          o.Total,
		TotalPaid:      o.TotalPaid,
		Change:         o.Change,
		StockCommitted: o.StockCommitted,
		Dock:           o.Dock,
		Observation:    o.Observation,
		ProofOfPayment: o.ProofOfPayment,
		Lifecycle:      string(o.Lifecycle),
		PlacedAt:       o.PlacedAt,
		PickedAt:       o.PickedAt,
		VerifiedAt:     o.VerifiedAt,
		DispatchedAt:   o.DispatchedAt,
		DeliveredAt:    o.DeliveredAt,
		CancelledAt:    o.CancelledAt,
		CreatedBy:      o.CreatedBy,
		UpdatedBy:      o.UpdatedBy,
		UpdatedAt:      o.UpdatedAt,
		Version:        o.Version,
	}
}

// PickResponse is the order after a pick submission with the per-line outcome
type PickResponse struct {
	Order  OrderResponse     `json:"order"`
	Result *trade.PickResult `json:"result"`
}

// VerifyResponse is the order after verification with the mismatch list
type VerifyResponse struct {
	Order  OrderResponse       `json:"order"`
	Result *trade.VerifyResult `json:"result"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Status          trade.OrderStatus `form:"status"`
	Channel         trade.Channel     `form:"channel" binding:"omitempty,oneof=online presencial"`
	IncludeInactive bool              `form:"include_inactive"`
	Page            int               `form:"page"`
	PageSize        int               `form:"page_size" binding:"omitempty,max=100"`
	OrderBy         string            `form:"order_by"`
	OrderDir        string            `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
