package trade

import (
	"fmt"
	"time"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/payment"
	"github.com/erp/fulfillment/internal/domain/pricing"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FirstOrderNumber is the number given to the very first order
const FirstOrderNumber int64 = 21001

// Order is a confirmed cart moving through the fulfillment pipeline
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber  int64
	ClientID     *uuid.UUID
	SellerID     uuid.UUID
	Channel      Channel
	DeliveryType DeliveryType
	Items        []LineItem
	Payments     []payment.Receipt

	Discount  decimal.Decimal
	Subtotal  decimal.Decimal
	TotalTax  decimal.Decimal
	Total     decimal.Decimal
	TotalPaid decimal.Decimal
	Change    decimal.Decimal

	Status         OrderStatus
	PreviousStatus OrderStatus
	// StockCommitted is set once the order's quantities left the stock ledger
	StockCommitted bool
	Dock           string
	Observation    string
	ProofOfPayment string
	Lifecycle      shared.Lifecycle

	PlacedAt     time.Time
	PickedAt     *time.Time
	VerifiedAt   *time.Time
	DispatchedAt *time.Time
	DeliveredAt  *time.Time
	CancelledAt  *time.Time
}

// OrderParams holds everything needed to open an order
type OrderParams struct {
	OrderNumber  int64
	ClientID     *uuid.UUID
	SellerID     uuid.UUID
	Channel      Channel
	DeliveryType DeliveryType
	Lines        []LineItem
	Quote        *pricing.Quote
	Discount     decimal.Decimal
	Total        decimal.Decimal
	Tenders      []payment.Tender
	Settlement   *payment.Settlement
	Observation  string
	Actor        string
}

// NewOrder opens an order from priced lines and validated tenders. The order
// starts in the "order" status until MarkPlaced decides its first stage.
func NewOrder(p OrderParams) (*Order, error) {
	if p.OrderNumber < FirstOrderNumber {
		return nil, shared.Invalidf("order number must be at least %d", FirstOrderNumber)
	}
	if !p.Channel.IsValid() {
		return nil, shared.Invalidf("unknown channel %q", p.Channel)
	}
	if p.DeliveryType == "" {
		p.DeliveryType = DeliveryPickup
	}
	if !p.DeliveryType.IsValid() {
		return nil, shared.Invalidf("unknown delivery type %q", p.DeliveryType)
	}
	if len(p.Lines) == 0 {
		return nil, shared.Invalidf("order must have at least one line")
	}
	if p.Quote == nil || p.Settlement == nil {
		return nil, shared.Invalidf("order must be priced and paid")
	}
	if err := ensureDistinctLines(p.Lines); err != nil {
		return nil, err
	}

	lines := make([]LineItem, len(p.Lines))
	copy(lines, p.Lines)
	if err := applyQuote(lines, p.Quote); err != nil {
		return nil, err
	}

	receipts := make([]payment.Receipt, 0, len(p.Tenders))
	for _, t := range p.Tenders {
		r, err := payment.NewReceipt(t)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *r)
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(p.Actor),
		OrderNumber:       p.OrderNumber,
		ClientID:          p.ClientID,
		SellerID:          p.SellerID,
		Channel:           p.Channel,
		DeliveryType:      p.DeliveryType,
		Items:             lines,
		Payments:          receipts,
		Discount:          p.Discount,
		Subtotal:          p.Quote.Subtotal,
		TotalTax:          p.Quote.TotalTax,
		Total:             p.Total,
		TotalPaid:         p.Settlement.TotalPaid,
		Change:            p.Settlement.Change,
		Status:            OrderStatusOrder,
		Observation:       p.Observation,
		Lifecycle:         shared.LifecycleActive,
		PlacedAt:          time.Now(),
	}
	return o, nil
}

func ensureDistinctLines(lines []LineItem) error {
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		k := l.ItemID.String() + ":" + string(l.UnitType)
		if _, dup := seen[k]; dup {
			return shared.Invalidf("item %s appears twice as %s", l.ItemID, l.UnitType)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// MarkPlaced moves a new order to its first pipeline stage. Walk-in orders
// leave the shop immediately; online orders wait for payment unless every
// tender was settled in cash.
func (o *Order) MarkPlaced(actor string) error {
	if o.Status != OrderStatusOrder {
		return shared.InvalidStatef("order %d was already placed", o.OrderNumber)
	}

	if o.Channel == ChannelWalkIn {
		for i := range o.Payments {
			o.Payments[i].MarkPaid()
		}
		o.StockCommitted = true
		now := time.Now()
		o.DeliveredAt = &now
		o.Status = OrderStatusDelivered
	} else {
		allPaid := true
		for i := range o.Payments {
			if o.Payments[i].Type == payment.TypeCash {
				o.Payments[i].MarkPaid()
			}
			allPaid = allPaid && o.Payments[i].IsPaid()
		}
		o.Status = OrderStatusAwaitingPayment
		if allPaid && len(o.Payments) > 0 {
			o.Status = OrderStatusPicking
		}
	}

	o.Touch(actor)
	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return nil
}

// ConfirmPayment marks every receipt as collected and releases the order to picking
func (o *Order) ConfirmPayment(actor string) error {
	if err := o.ensureStatus(OrderStatusAwaitingPayment); err != nil {
		return err
	}
	counted := decimal.Zero
	for i := range o.Payments {
		counted = counted.Add(o.Payments[i].Counted())
	}
	if counted.LessThan(valueobject.RoundMoney(o.Total)) {
		return shared.NewDomainError(shared.CodeInsufficientPayment,
			fmt.Sprintf("receipts of %s do not cover the total of %s",
				valueobject.FormatBRL(counted), valueobject.FormatBRL(o.Total)))
	}
	for i := range o.Payments {
		o.Payments[i].MarkPaid()
	}
	return o.transition(OrderStatusPicking, actor)
}

// PickScan is one counted line during picking
type PickScan struct {
	ItemID       uuid.UUID
	UnitType     inventory.UnitType
	Quantity     int64
	LocationID   uuid.UUID
	LocationCode string
}

// LinePickOutcome is the classification of one line after a pick
type LinePickOutcome struct {
	LineID    uuid.UUID          `json:"line_id"`
	ItemID    uuid.UUID          `json:"item_id"`
	UnitType  inventory.UnitType `json:"unit_type"`
	Requested int64              `json:"requested"`
	Counted   int64              `json:"counted"`
	Status    PickStatus         `json:"status"`
}

// PickResult summarises a pick submission
type PickResult struct {
	Lines      []LinePickOutcome `json:"lines"`
	AllCorrect bool              `json:"all_correct"`
}

// RecordPick classifies scanned lines. Lines not present in scans keep their
// previous classification, so a partial re-submission only corrects what it
// names. Unless every line ends up correto the order goes back to pendente.
func (o *Order) RecordPick(scans []PickScan, actor string) (*PickResult, error) {
	if o.Status != OrderStatusPicking && o.Status != OrderStatusPending {
		return nil, shared.InvalidStatef("order %d cannot be picked in status %s", o.OrderNumber, o.Status)
	}
	if o.StockCommitted {
		return nil, shared.InvalidStatef("order %d was already picked", o.OrderNumber)
	}
	if len(scans) == 0 {
		return nil, shared.Invalidf("at least one scanned line is required")
	}

	// validate every scan before touching any line
	targets := make([]int, len(scans))
	used := make(map[int]struct{}, len(scans))
	for i, s := range scans {
		if s.Quantity < 0 {
			return nil, shared.Invalidf("scanned quantity cannot be negative")
		}
		if s.LocationID == uuid.Nil {
			return nil, shared.Invalidf("scan for item %s has no location", s.ItemID)
		}
		idx := o.lineIndex(s.ItemID, s.UnitType)
		if idx < 0 {
			return nil, shared.Invalidf("item %s (%s) is not on order %d", s.ItemID, s.UnitType, o.OrderNumber)
		}
		if _, dup := used[idx]; dup {
			return nil, shared.Invalidf("item %s (%s) was scanned twice", s.ItemID, s.UnitType)
		}
		used[idx] = struct{}{}
		targets[i] = idx
	}

	for i, s := range scans {
		line := &o.Items[targets[i]]
		loc := s.LocationID
		line.PickedQuantity = s.Quantity
		line.PickLocationID = &loc
		line.PickLocationCode = s.LocationCode
		line.PickStatus = ClassifyPick(line.Quantity, s.Quantity)
	}

	result := &PickResult{Lines: make([]LinePickOutcome, 0, len(o.Items)), AllCorrect: true}
	for _, l := range o.Items {
		result.Lines = append(result.Lines, LinePickOutcome{
			LineID:    l.ID,
			ItemID:    l.ItemID,
			UnitType:  l.UnitType,
			Requested: l.Quantity,
			Counted:   l.PickedQuantity,
			Status:    l.PickStatus,
		})
		if l.PickStatus != PickStatusCorrect {
			result.AllCorrect = false
		}
	}

	o.AddDomainEvent(NewOrderPickRecordedEvent(o, result, actor))
	if !result.AllCorrect && o.Status != OrderStatusPending {
		if err := o.transition(OrderStatusPending, actor); err != nil {
			return nil, err
		}
	} else {
		o.Touch(actor)
	}
	return result, nil
}

// CommitPick records that every line left its pick location and advances to conferencia
func (o *Order) CommitPick(actor string) error {
	if o.Status != OrderStatusPicking && o.Status != OrderStatusPending {
		return shared.InvalidStatef("order %d cannot commit a pick in status %s", o.OrderNumber, o.Status)
	}
	if o.StockCommitted {
		return shared.InvalidStatef("order %d was already picked", o.OrderNumber)
	}
	for _, l := range o.Items {
		if l.PickStatus != PickStatusCorrect || l.PickLocationID == nil {
			return shared.InvalidStatef("line for item %s is not correctly picked", l.ItemID)
		}
	}
	now := time.Now()
	o.StockCommitted = true
	o.PickedAt = &now
	return o.transition(OrderStatusVerifying, actor)
}

// ConfirmPending sends a corrected pending order back into the pipeline.
// Orders whose stock was already taken return to conferencia so they are
// never picked twice.
func (o *Order) ConfirmPending(actor string) error {
	if err := o.ensureStatus(OrderStatusPending); err != nil {
		return err
	}
	if o.StockCommitted {
		return o.transition(OrderStatusVerifying, actor)
	}
	return o.transition(OrderStatusPicking, actor)
}

// ReplaceLines swaps the lines of a pending order for re-priced ones
func (o *Order) ReplaceLines(lines []LineItem, quote *pricing.Quote, total decimal.Decimal, actor string) error {
	if err := o.ensureStatus(OrderStatusPending); err != nil {
		return err
	}
	if o.StockCommitted {
		return shared.InvalidStatef("order %d lines cannot change after picking", o.OrderNumber)
	}
	if len(lines) == 0 {
		return shared.Invalidf("order must have at least one line")
	}
	if err := ensureDistinctLines(lines); err != nil {
		return err
	}
	replaced := make([]LineItem, len(lines))
	copy(replaced, lines)
	if err := applyQuote(replaced, quote); err != nil {
		return err
	}

	oldTotal := o.Total
	o.Items = replaced
	o.Subtotal = quote.Subtotal
	o.TotalTax = quote.TotalTax
	o.Total = total
	o.Touch(actor)
	o.AddDomainEvent(NewOrderLinesAdjustedEvent(o, oldTotal, actor))
	return nil
}

// VerifyCount is one counted line during verification
type VerifyCount struct {
	ItemID    uuid.UUID
	Quantity  int64
	Completed bool
}

// Mismatch reasons
const (
	MismatchMissing    = "missing"
	MismatchUnexpected = "unexpected"
	MismatchQuantity   = "quantity"
	MismatchIncomplete = "incomplete"
)

// VerifyMismatch describes one line that did not match
type VerifyMismatch struct {
	ItemID   uuid.UUID `json:"item_id"`
	Reason   string    `json:"reason"`
	Expected int64     `json:"expected"`
	Counted  int64     `json:"counted"`
}

// VerifyResult is the outcome of a verification pass
type VerifyResult struct {
	Matched    bool             `json:"matched"`
	Mismatches []VerifyMismatch `json:"mismatches,omitempty"`
}

// Verify compares counted lines with the order one to one by item. A mismatch
// is reported back and sends the order to pendente; it is not an error.
func (o *Order) Verify(counts []VerifyCount, actor string) (*VerifyResult, error) {
	if err := o.ensureStatus(OrderStatusVerifying); err != nil {
		return nil, err
	}

	counted := make(map[uuid.UUID]VerifyCount, len(counts))
	for _, c := range counts {
		if _, dup := counted[c.ItemID]; dup {
			return nil, shared.Invalidf("item %s was counted twice", c.ItemID)
		}
		counted[c.ItemID] = c
	}

	expected := make(map[uuid.UUID]int64, len(o.Items))
	for _, l := range o.Items {
		expected[l.ItemID] += l.Quantity
	}

	result := &VerifyResult{}
	for _, l := range o.Items {
		if _, seen := counted[l.ItemID]; !seen {
			result.Mismatches = append(result.Mismatches, VerifyMismatch{ItemID: l.ItemID, Reason: MismatchMissing, Expected: l.Quantity})
		}
	}
	for _, c := range counts {
		want, ok := expected[c.ItemID]
		switch {
		case !ok:
			result.Mismatches = append(result.Mismatches, VerifyMismatch{ItemID: c.ItemID, Reason: MismatchUnexpected, Counted: c.Quantity})
		case c.Quantity != want:
			result.Mismatches = append(result.Mismatches, VerifyMismatch{ItemID: c.ItemID, Reason: MismatchQuantity, Expected: want, Counted: c.Quantity})
		case !c.Completed:
			result.Mismatches = append(result.Mismatches, VerifyMismatch{ItemID: c.ItemID, Reason: MismatchIncomplete, Expected: want, Counted: c.Quantity})
		}
	}

	if len(result.Mismatches) > 0 {
		if err := o.transition(OrderStatusPending, actor); err != nil {
			return nil, err
		}
		return result, nil
	}

	for i := range o.Items {
		c := counted[o.Items[i].ItemID]
		o.Items[i].VerifiedQuantity = o.Items[i].Quantity
		o.Items[i].Completed = c.Completed
	}
	now := time.Now()
	o.VerifiedAt = &now
	result.Matched = true
	return result, o.transition(OrderStatusDocked, actor)
}

// AssignDock records the loading dock. A verifying order moves to docas.
func (o *Order) AssignDock(dock, actor string) error {
	if !o.Lifecycle.IsActive() {
		return shared.InvalidStatef("order %d is not active", o.OrderNumber)
	}
	if o.Status != OrderStatusVerifying && o.Status != OrderStatusDocked {
		return shared.InvalidStatef("order %d is %s, expected %s or %s",
			o.OrderNumber, o.Status, OrderStatusVerifying, OrderStatusDocked)
	}
	if dock == "" {
		return shared.Invalidf("dock cannot be empty")
	}
	old := o.Dock
	o.Dock = dock
	if o.Status == OrderStatusVerifying {
		if err := o.transition(OrderStatusDocked, actor); err != nil {
			return err
		}
	} else {
		o.Touch(actor)
	}
	o.AddDomainEvent(NewOrderDockAssignedEvent(o, old, actor))
	return nil
}

// Dispatch moves a docked order into transit
func (o *Order) Dispatch(actor string) error {
	if err := o.ensureStatus(OrderStatusDocked); err != nil {
		return err
	}
	now := time.Now()
	o.DispatchedAt = &now
	return o.transition(OrderStatusInTransit, actor)
}

// Deliver completes an order in transit
func (o *Order) Deliver(actor string) error {
	if err := o.ensureStatus(OrderStatusInTransit); err != nil {
		return err
	}
	now := time.Now()
	o.DeliveredAt = &now
	return o.transition(OrderStatusDelivered, actor)
}

// Cancel stops an order before delivery and moves it out of the active set
func (o *Order) Cancel(actor string) error {
	if !o.Lifecycle.IsActive() || !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.InvalidStatef("order %d cannot be cancelled in status %s", o.OrderNumber, o.Status)
	}
	now := time.Now()
	o.PreviousStatus = o.Status
	o.CancelledAt = &now
	o.Lifecycle = shared.LifecycleInactive
	return o.transition(OrderStatusCancelled, actor)
}

// Reactivate restores a cancelled order to the stage it was cancelled from
func (o *Order) Reactivate(actor string) error {
	if o.Status != OrderStatusCancelled || o.PreviousStatus == "" {
		return shared.InvalidStatef("order %d is not cancelled", o.OrderNumber)
	}
	from := o.Status
	o.Status = o.PreviousStatus
	o.PreviousStatus = ""
	o.CancelledAt = nil
	o.Lifecycle = shared.LifecycleActive
	o.Touch(actor)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, actor))
	return nil
}

// AttachProofOfPayment stores the object key of an uploaded payment proof
func (o *Order) AttachProofOfPayment(key, actor string) error {
	if !o.Lifecycle.IsActive() {
		return shared.InvalidStatef("order %d is not active", o.OrderNumber)
	}
	if key == "" {
		return shared.Invalidf("proof of payment key cannot be empty")
	}
	old := o.ProofOfPayment
	o.ProofOfPayment = key
	o.Touch(actor)
	o.AddDomainEvent(NewOrderProofAttachedEvent(o, old, actor))
	return nil
}

// NeedsReservation reports whether the order still holds promised stock
func (o *Order) NeedsReservation() bool {
	return o.Lifecycle.IsActive() && o.Channel == ChannelOnline && !o.StockCommitted && !o.Status.IsTerminal()
}

// Line returns the line for an item and unit type
func (o *Order) Line(itemID uuid.UUID, unitType inventory.UnitType) *LineItem {
	if i := o.lineIndex(itemID, unitType); i >= 0 {
		return &o.Items[i]
	}
	return nil
}

func (o *Order) lineIndex(itemID uuid.UUID, unitType inventory.UnitType) int {
	for i := range o.Items {
		if o.Items[i].Matches(itemID, unitType) {
			return i
		}
	}
	return -1
}

func (o *Order) ensureStatus(want OrderStatus) error {
	if !o.Lifecycle.IsActive() {
		return shared.InvalidStatef("order %d is not active", o.OrderNumber)
	}
	if o.Status != want {
		return shared.InvalidStatef("order %d is %s, expected %s", o.OrderNumber, o.Status, want)
	}
	return nil
}

func (o *Order) transition(target OrderStatus, actor string) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.InvalidStatef("order %d cannot move from %s to %s", o.OrderNumber, o.Status, target)
	}
	from := o.Status
	o.Status = target
	o.Touch(actor)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, actor))
	return nil
}
