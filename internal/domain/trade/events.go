package trade

import (
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeOrder = "Order"
	AggregateTypeCart  = "Cart"
)

// Event type constants
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderPickRecorded  = "OrderPickRecorded"
	EventTypeOrderLinesAdjusted = "OrderLinesAdjusted"
	EventTypeOrderDockAssigned  = "OrderDockAssigned"
	EventTypeOrderProofAttached = "OrderProofAttached"
	EventTypeCartStatusChanged  = "CartStatusChanged"
)

// OrderPlacedEvent is raised when a new order enters the pipeline
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderNumber int64           `json:"order_number"`
	Channel     Channel         `json:"channel"`
	Status      OrderStatus     `json:"status"`
	Total       decimal.Decimal `json:"total"`
	LineCount   int             `json:"line_count"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID, o.UpdatedBy,
			shared.Diff("status", nil, string(o.Status))),
		OrderNumber: o.OrderNumber,
		Channel:     o.Channel,
		Status:      o.Status,
		Total:       o.Total,
		LineCount:   len(o.Items),
	}
}

// OrderStatusChangedEvent is raised on every pipeline transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber int64       `json:"order_number"`
	From        OrderStatus `json:"from"`
	To          OrderStatus `json:"to"`
}

// NewOrderStatusChangedEvent creates an OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from OrderStatus, actor string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID, actor,
			shared.Diff("status", string(from), string(o.Status))),
		OrderNumber: o.OrderNumber,
		From:        from,
		To:          o.Status,
	}
}

// OrderPickRecordedEvent is raised when a pick submission is classified
type OrderPickRecordedEvent struct {
	shared.BaseDomainEvent
	OrderNumber int64             `json:"order_number"`
	Lines       []LinePickOutcome `json:"lines"`
	AllCorrect  bool              `json:"all_correct"`
}

// NewOrderPickRecordedEvent creates an OrderPickRecordedEvent
func NewOrderPickRecordedEvent(o *Order, result *PickResult, actor string) *OrderPickRecordedEvent {
	diffs := make([]shared.FieldDiff, 0, len(result.Lines))
	for _, l := range result.Lines {
		diffs = append(diffs, shared.Diff("pick_status:"+l.ItemID.String(), nil, string(l.Status)))
	}
	return &OrderPickRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPickRecorded, AggregateTypeOrder, o.ID, actor, diffs...),
		OrderNumber:     o.OrderNumber,
		Lines:           result.Lines,
		AllCorrect:      result.AllCorrect,
	}
}

// OrderLinesAdjustedEvent is raised when a pending order's lines are replaced
type OrderLinesAdjustedEvent struct {
	shared.BaseDomainEvent
	OrderNumber int64 `json:"order_number"`
}

// NewOrderLinesAdjustedEvent creates an OrderLinesAdjustedEvent
func NewOrderLinesAdjustedEvent(o *Order, oldTotal decimal.Decimal, actor string) *OrderLinesAdjustedEvent {
	return &OrderLinesAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderLinesAdjusted, AggregateTypeOrder, o.ID, actor,
			shared.Diff("total", oldTotal.String(), o.Total.String())),
		OrderNumber: o.OrderNumber,
	}
}

// OrderDockAssignedEvent is raised when a dock is assigned
type OrderDockAssignedEvent struct {
	shared.BaseDomainEvent
	Dock string `json:"dock"`
}

// NewOrderDockAssignedEvent creates an OrderDockAssignedEvent
func NewOrderDockAssignedEvent(o *Order, oldDock, actor string) *OrderDockAssignedEvent {
	return &OrderDockAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDockAssigned, AggregateTypeOrder, o.ID, actor,
			shared.Diff("dock", oldDock, o.Dock)),
		Dock: o.Dock,
	}
}

// OrderProofAttachedEvent is raised when a payment proof is uploaded
type OrderProofAttachedEvent struct {
	shared.BaseDomainEvent
	ObjectKey string `json:"object_key"`
}

// NewOrderProofAttachedEvent creates an OrderProofAttachedEvent
func NewOrderProofAttachedEvent(o *Order, oldKey, actor string) *OrderProofAttachedEvent {
	return &OrderProofAttachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderProofAttached, AggregateTypeOrder, o.ID, actor,
			shared.Diff("proof_of_payment", oldKey, o.ProofOfPayment)),
		ObjectKey: o.ProofOfPayment,
	}
}

// CartStatusChangedEvent is raised when a cart is closed or cancelled
type CartStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID *uuid.UUID `json:"order_id,omitempty"`
}

// NewCartStatusChangedEvent creates a CartStatusChangedEvent
func NewCartStatusChangedEvent(c *Cart, from CartStatus, orderID *uuid.UUID, actor string) *CartStatusChangedEvent {
	return &CartStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartStatusChanged, AggregateTypeCart, c.ID, actor,
			shared.Diff("status", string(from), string(c.Status))),
		OrderID: orderID,
	}
}
