package trade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/payment"
	"github.com/erp/fulfillment/internal/domain/pricing"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/erp/fulfillment/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxOrderNumberAttempts bounds retries when a concurrent placement took
// the order number first
const maxOrderNumberAttempts = 3

var proofContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// FulfillmentService drives orders from placement to delivery
type FulfillmentService struct {
	orders         trade.OrderRepository
	carts          trade.CartRepository
	locations      catalog.LocationResolver
	stock          StockLedger
	reservations   ReservationLedger
	quoter         quoter
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	storage        ObjectStorage
	eventPublisher shared.EventPublisher
	locks          *inventoryapp.KeyedLocker
	logger         *zap.Logger
}

// NewFulfillmentService creates a new FulfillmentService
func NewFulfillmentService(
	orders trade.OrderRepository,
	carts trade.CartRepository,
	items catalog.ItemReader,
	taxes catalog.TaxConfigReader,
	locations catalog.LocationResolver,
	stock StockLedger,
	reservations ReservationLedger,
	logger *zap.Logger,
) *FulfillmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FulfillmentService{
		orders:         orders,
		carts:          carts,
		locations:      locations,
		stock:          stock,
		reservations:   reservations,
		quoter:         quoter{items: items, taxes: taxes},
		idempotencyTTL: shared.DefaultIdempotencyConfig().TTL,
		locks:          inventoryapp.NewKeyedLocker(),
		logger:         logger,
	}
}

// SetLocker shares the locker of the stock and reservation services. Order
// keys never collide with stock keys.
func (s *FulfillmentService) SetLocker(locker *inventoryapp.KeyedLocker) {
	if locker != nil {
		s.locks = locker
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *FulfillmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables idempotency keys on order placement
func (s *FulfillmentService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// SetObjectStorage sets where proofs of payment are uploaded
func (s *FulfillmentService) SetObjectStorage(storage ObjectStorage) {
	s.storage = storage
}

func orderLockKey(orderID uuid.UUID) string {
	return "order:" + orderID.String()
}

// begin opens the span of one order operation and takes the order lock, so
// the load, the stock side effects and the versioned save of an order never
// interleave. The returned func ends both.
func (s *FulfillmentService) begin(ctx context.Context, method string, orderID uuid.UUID) (context.Context, func(error), error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fulfillment", method, telemetry.WithAttribute("order.id", orderID))
	unlock, err := s.locks.Lock(ctx, orderLockKey(orderID))
	if err != nil {
		endSpan(span, err)
		return ctx, nil, err
	}
	return ctx, func(err error) {
		unlock()
		endSpan(span, err)
	}, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		telemetry.RecordError(span, err)
	} else {
		telemetry.SetOK(span)
	}
	span.End()
}

// ============================================================================
// Placement
// ============================================================================

// PlaceOrder turns a cart or inline lines into an order. Online orders
// reserve their lines; walk-in orders take the stock out immediately.
func (s *FulfillmentService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fulfillment", "PlaceOrder", telemetry.WithAttribute("order.channel", req.Channel))
	defer func() { endSpan(span, err) }()

	if req.IdempotencyKey != "" && s.idempotency != nil {
		key := "order:place:" + req.IdempotencyKey
		claimed, claimErr := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
		if claimErr != nil {
			return nil, fmt.Errorf("claim idempotency key: %w", claimErr)
		}
		if !claimed {
			return nil, shared.NewDomainError(shared.CodeConflict, "an order was already placed with this idempotency key")
		}
		defer func() {
			if err == nil {
				return
			}
			if relErr := s.idempotency.Release(ctx, key); relErr != nil {
				s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
			}
		}()
	}

	return s.placeOrder(ctx, req)
}

func (s *FulfillmentService) placeOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	var (
		cart     *trade.Cart
		lines    []trade.LineItem
		err      error
		sellerID = req.SellerID
		clientID = req.ClientID
		discount = decimal.Zero
	)
	if req.CartID != nil {
		cart, err = s.carts.FindByID(ctx, *req.CartID)
		if err != nil {
			return nil, err
		}
		if !cart.IsOpen() {
			return nil, shared.InvalidStatef("cart %s is %s", cart.ID, cart.Status)
		}
		lines = make([]trade.LineItem, len(cart.Items))
		copy(lines, cart.Items)
		for i := range lines {
			lines[i].ID = uuid.New()
		}
		sellerID = cart.SellerID
		if clientID == nil {
			clientID = cart.ClientID
		}
		discount = cart.Discount
	} else if lines, err = newLineItems(req.Lines); err != nil {
		return nil, err
	}
	if req.Discount != nil {
		discount = *req.Discount
	}
	if len(lines) == 0 {
		return nil, shared.Invalidf("order must have at least one line")
	}
	if sellerID == uuid.Nil {
		return nil, shared.Invalidf("seller id cannot be empty")
	}

	inputs := make([]pricing.LineInput, len(lines))
	for i := range lines {
		inputs[i] = lines[i].PricingInput()
	}
	quote, items, err := s.quoter.quote(ctx, inputs)
	if err != nil {
		return nil, err
	}
	total, err := pricing.OrderTotal(quote.Subtotal, discount, req.Tenders)
	if err != nil {
		return nil, err
	}
	settlement, err := payment.Validate(req.Tenders, total)
	if err != nil {
		return nil, err
	}

	number, err := s.orders.NextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}
	order, err := trade.NewOrder(trade.OrderParams{
		OrderNumber:  number,
		ClientID:     clientID,
		SellerID:     sellerID,
		Channel:      req.Channel,
		DeliveryType: req.DeliveryType,
		Lines:        lines,
		Quote:        quote,
		Discount:     discount,
		Total:        total,
		Tenders:      req.Tenders,
		Settlement:   settlement,
		Observation:  req.Observation,
		Actor:        req.Actor,
	})
	if err != nil {
		return nil, err
	}
	if err := order.MarkPlaced(req.Actor); err != nil {
		return nil, err
	}

	switch order.Channel {
	case trade.ChannelOnline:
		err = s.reserveLines(ctx, order, req.Actor)
	case trade.ChannelWalkIn:
		err = s.takeWalkInStock(ctx, order, items, req.Actor)
	}
	if err != nil {
		return nil, err
	}

	if err := s.createOrder(ctx, order); err != nil {
		s.undoPlacement(ctx, order, req.Actor)
		return nil, err
	}

	toPublish := []shared.AggregateRoot{order}
	if cart != nil {
		if err := cart.Close(order.ID, req.Actor); err == nil {
			if err := s.carts.SaveWithLock(ctx, cart); err != nil {
				s.logger.Warn("order placed but cart could not be closed",
					zap.String("cart_id", cart.ID.String()),
					zap.Int64("order_number", order.OrderNumber),
					zap.Error(err),
				)
			} else {
				toPublish = append(toPublish, cart)
			}
		}
	}
	publishDomainEvents(ctx, s.eventPublisher, s.logger, toPublish...)

	s.logger.Info("order placed",
		zap.Int64("order_number", order.OrderNumber),
		zap.String("channel", string(order.Channel)),
		zap.String("status", order.Status.String()),
		zap.String("total", order.Total.StringFixed(2)),
	)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// reserveLines checks availability of every line before reserving any, and
// releases what was reserved when a later line fails
func (s *FulfillmentService) reserveLines(ctx context.Context, order *trade.Order, actor string) error {
	for _, l := range order.Items {
		available, err := s.reservations.Availability(ctx, l.ItemID, l.UnitType)
		if err != nil {
			return err
		}
		if l.Quantity > available {
			return shared.NewDomainError(shared.CodeInsufficientStock,
				fmt.Sprintf("requested %d %s of item %s, only %d available", l.Quantity, l.UnitType, l.ItemID, available))
		}
	}
	for _, l := range order.Items {
		_, err := s.reservations.Reserve(ctx, inventoryapp.ReserveInput{
			ItemID:   l.ItemID,
			OrderID:  order.ID,
			UnitType: l.UnitType,
			Quantity: l.Quantity,
			Actor:    actor,
		})
		if err != nil {
			s.releaseQuietly(ctx, order, actor)
			return err
		}
	}
	return nil
}

// takeWalkInStock removes every line oldest first. Box lines are converted to
// single units with the item's box factor.
func (s *FulfillmentService) takeWalkInStock(ctx context.Context, order *trade.Order, items map[uuid.UUID]*catalog.Item, actor string) error {
	inputs := make([]inventoryapp.RemoveFifoInput, 0, len(order.Items))
	for _, l := range order.Items {
		units := l.Quantity
		if l.UnitType == inventory.UnitTypeBox {
			units *= items[l.ItemID].BoxFactor()
		}
		inputs = append(inputs, inventoryapp.RemoveFifoInput{
			ItemID:   l.ItemID,
			Quantity: units,
			Reason:   fmt.Sprintf("order %d", order.OrderNumber),
			Actor:    actor,
		})
	}
	_, err := s.stock.RemoveFifoMany(ctx, inputs)
	return err
}

// createOrder stores the order, taking the next number when a concurrent
// placement claimed the current one
func (s *FulfillmentService) createOrder(ctx context.Context, order *trade.Order) error {
	for attempt := 1; ; attempt++ {
		err := s.orders.Create(ctx, order)
		if err == nil || !errors.Is(err, shared.ErrConflict) || attempt == maxOrderNumberAttempts {
			return err
		}
		number, nerr := s.orders.NextOrderNumber(ctx)
		if nerr != nil {
			return nerr
		}
		s.logger.Warn("order number already taken, retrying",
			zap.Int64("taken", order.OrderNumber),
			zap.Int64("next", number),
		)
		order.OrderNumber = number
	}
}

func (s *FulfillmentService) undoPlacement(ctx context.Context, order *trade.Order, actor string) {
	if order.Channel == trade.ChannelOnline {
		s.releaseQuietly(ctx, order, actor)
		return
	}
	s.logger.Error("walk-in stock was removed but the order could not be stored",
		zap.String("order_id", order.ID.String()),
		zap.Int64("order_number", order.OrderNumber),
	)
}

func (s *FulfillmentService) releaseQuietly(ctx context.Context, order *trade.Order, actor string) {
	if _, err := s.reservations.Release(ctx, order.ID, actor); err != nil {
		s.logger.Error("failed to release reservations",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

// ============================================================================
// Picking and verification
// ============================================================================

// RecordPick classifies scanned lines. When every line is correct the pick
// is committed: stock leaves the pick locations and the reservations are
// released. Otherwise the order goes to pendente.
func (s *FulfillmentService) RecordPick(ctx context.Context, orderID uuid.UUID, req RecordPickRequest, actor string) (_ *PickResponse, err error) {
	ctx, done, err := s.begin(ctx, "RecordPick", orderID)
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]*catalog.Location, len(req.Scans))
	scans := make([]trade.PickScan, len(req.Scans))
	for i, sc := range req.Scans {
		code := catalog.NormalizeLocationCode(sc.LocationCode)
		loc, ok := resolved[code]
		if !ok {
			if loc, err = s.locations.FindLocationByCode(ctx, code); err != nil {
				return nil, err
			}
			resolved[code] = loc
		}
		scans[i] = trade.PickScan{
			ItemID:       sc.ItemID,
			UnitType:     sc.UnitType,
			Quantity:     sc.Quantity,
			LocationID:   loc.ID,
			LocationCode: loc.Code,
		}
	}

	result, err := order.RecordPick(scans, actor)
	if err != nil {
		return nil, err
	}
	if result.AllCorrect {
		if err := order.CommitPick(actor); err != nil {
			return nil, err
		}
		if err := s.stock.CommitPick(ctx, order.ID, pickedLines(order), actor); err != nil {
			return nil, err
		}
	}

	if err := s.orders.SaveWithLock(ctx, order); err != nil {
		if order.StockCommitted {
			s.undoPickCommit(ctx, order, actor)
		}
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, s.logger, order)

	return &PickResponse{Order: ToOrderResponse(order), Result: result}, nil
}

// undoPickCommit puts the picked stock back and reserves the lines again
// after the order that committed them failed to save
func (s *FulfillmentService) undoPickCommit(ctx context.Context, order *trade.Order, actor string) {
	if err := s.stock.Restock(ctx, pickedLines(order), actor); err != nil {
		s.logger.Error("pick committed to stock but the order could not be saved; restock failed",
			zap.Int64("order_number", order.OrderNumber),
			zap.Error(err),
		)
		return
	}
	s.restoreReservations(ctx, order.ID, order.Items, actor)
}

// restoreReservations reserves lines for an order whose reservations were
// released by a change that did not persist. Failures are left to the
// backfill job.
func (s *FulfillmentService) restoreReservations(ctx context.Context, orderID uuid.UUID, lines []trade.LineItem, actor string) {
	for _, l := range lines {
		_, err := s.reservations.EnsureReserved(ctx, inventoryapp.ReserveInput{
			ItemID:   l.ItemID,
			OrderID:  orderID,
			UnitType: l.UnitType,
			Quantity: l.Quantity,
			Actor:    actor,
		})
		if err != nil {
			s.logger.Warn("could not restore reservation",
				zap.String("order_id", orderID.String()),
				zap.String("item_id", l.ItemID.String()),
				zap.Error(err),
			)
		}
	}
}

// pickedLines lists the quantities each line took from its pick location
func pickedLines(order *trade.Order) []inventoryapp.PickedLine {
	lines := make([]inventoryapp.PickedLine, 0, len(order.Items))
	for _, l := range order.Items {
		if l.PickLocationID == nil || l.PickedQuantity <= 0 {
			continue
		}
		lines = append(lines, inventoryapp.PickedLine{
			ItemID:     l.ItemID,
			LocationID: *l.PickLocationID,
			UnitType:   l.UnitType,
			Quantity:   l.PickedQuantity,
		})
	}
	return lines
}

// Verify compares counted lines with the order. A mismatch sends the order
// to pendente and is reported in the result.
func (s *FulfillmentService) Verify(ctx context.Context, orderID uuid.UUID, req VerifyRequest, actor string) (*VerifyResponse, error) {
	counts := make([]trade.VerifyCount, len(req.Lines))
	for i, l := range req.Lines {
		counts[i] = trade.VerifyCount{ItemID: l.ItemID, Quantity: l.Quantity, Completed: l.Completed}
	}

	var result *trade.VerifyResult
	resp, err := s.mutate(ctx, "Verify", orderID, func(o *trade.Order) error {
		var err error
		result, err = o.Verify(counts, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &VerifyResponse{Order: *resp, Result: result}, nil
}

// ============================================================================
// Simple transitions
// ============================================================================

// ConfirmPayment marks the receipts as collected and releases the order to picking
func (s *FulfillmentService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, actor string) (*OrderResponse, error) {
	return s.mutate(ctx, "ConfirmPayment", orderID, func(o *trade.Order) error {
		return o.ConfirmPayment(actor)
	})
}

// ConfirmPending sends a corrected pending order back into the pipeline
func (s *FulfillmentService) ConfirmPending(ctx context.Context, orderID uuid.UUID, actor string) (*OrderResponse, error) {
	return s.mutate(ctx, "ConfirmPending", orderID, func(o *trade.Order) error {
		return o.ConfirmPending(actor)
	})
}

// AssignDock records the loading dock of a verified order
func (s *FulfillmentService) AssignDock(ctx context.Context, orderID uuid.UUID, req AssignDockRequest, actor string) (*OrderResponse, error) {
	return s.mutate(ctx, "AssignDock", orderID, func(o *trade.Order) error {
		return o.AssignDock(strings.TrimSpace(req.Dock), actor)
	})
}

// Dispatch moves a docked order into transit
func (s *FulfillmentService) Dispatch(ctx context.Context, orderID uuid.UUID, actor string) (*OrderResponse, error) {
	return s.mutate(ctx, "Dispatch", orderID, func(o *trade.Order) error {
		return o.Dispatch(actor)
	})
}

// Deliver completes an order in transit
func (s *FulfillmentService) Deliver(ctx context.Context, orderID uuid.UUID, actor string) (*OrderResponse, error) {
	return s.mutate(ctx, "Deliver", orderID, func(o *trade.Order) error {
		return o.Deliver(actor)
	})
}

// mutate loads an active order, applies fn and saves it with a version check
func (s *FulfillmentService) mutate(ctx context.Context, method string, orderID uuid.UUID, fn func(o *trade.Order) error) (_ *OrderResponse, err error) {
	ctx, done, err := s.begin(ctx, method, orderID)
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := s.orders.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, s.logger, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ============================================================================
// Corrections
// ============================================================================

// AdjustPending replaces the lines of a pending order, re-prices it against
// its receipts and brings the reservations in line with the new quantities
func (s *FulfillmentService) AdjustPending(ctx context.Context, orderID uuid.UUID, req AdjustPendingRequest, actor string) (_ *OrderResponse, err error) {
	ctx, done, err := s.begin(ctx, "AdjustPending", orderID)
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	lines, err := newLineItems(req.Lines)
	if err != nil {
		return nil, err
	}
	inputs := make([]pricing.LineInput, len(lines))
	for i := range lines {
		inputs[i] = lines[i].PricingInput()
	}
	quote, _, err := s.quoter.quote(ctx, inputs)
	if err != nil {
		return nil, err
	}
	tenders := make([]payment.Tender, len(order.Payments))
	for i, p := range order.Payments {
		tenders[i] = payment.Tender{Type: p.Type, Amount: p.Amount, Installments: p.Installments}
	}
	total, err := pricing.OrderTotal(quote.Subtotal, order.Discount, tenders)
	if err != nil {
		return nil, err
	}

	previousLines := append([]trade.LineItem(nil), order.Items...)
	if err := order.ReplaceLines(lines, quote, total, actor); err != nil {
		return nil, err
	}
	adjusted := order.NeedsReservation()
	if adjusted {
		if err := s.adjustReservations(ctx, order, previousLines, actor); err != nil {
			return nil, err
		}
	}

	if err := s.orders.SaveWithLock(ctx, order); err != nil {
		if adjusted {
			s.releaseQuietly(ctx, order, actor)
			s.restoreReservations(ctx, order.ID, previousLines, actor)
		}
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, s.logger, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

type lineKey struct {
	itemID   uuid.UUID
	unitType inventory.UnitType
}

// adjustReservations reserves the growth of each line. When any line shrank
// or disappeared the order's reservations are rebuilt from scratch. A
// failure after the first write puts the previous reservations back.
func (s *FulfillmentService) adjustReservations(ctx context.Context, order *trade.Order, previousLines []trade.LineItem, actor string) error {
	previous := make(map[lineKey]int64, len(previousLines))
	for _, l := range previousLines {
		previous[lineKey{l.ItemID, l.UnitType}] = l.Quantity
	}
	for _, l := range order.Items {
		delta := l.Quantity - previous[lineKey{l.ItemID, l.UnitType}]
		if delta <= 0 {
			continue
		}
		available, err := s.reservations.Availability(ctx, l.ItemID, l.UnitType)
		if err != nil {
			return err
		}
		if delta > available {
			return shared.NewDomainError(shared.CodeInsufficientStock,
				fmt.Sprintf("requested %d more %s of item %s, only %d available", delta, l.UnitType, l.ItemID, available))
		}
	}

	shrank := false
	for k, qty := range previous {
		line := order.Line(k.itemID, k.unitType)
		if line == nil || line.Quantity < qty {
			shrank = true
			break
		}
	}
	if shrank {
		if _, err := s.reservations.Release(ctx, order.ID, actor); err != nil {
			return err
		}
	}
	for _, l := range order.Items {
		_, err := s.reservations.EnsureReserved(ctx, inventoryapp.ReserveInput{
			ItemID:   l.ItemID,
			OrderID:  order.ID,
			UnitType: l.UnitType,
			Quantity: l.Quantity,
			Actor:    actor,
		})
		if err != nil {
			s.releaseQuietly(ctx, order, actor)
			s.restoreReservations(ctx, order.ID, previousLines, actor)
			return err
		}
	}
	return nil
}

// Cancel stops an order and releases its reservations. With Restock set and
// the pick already committed, the picked quantities go back to their
// pick locations.
func (s *FulfillmentService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelOrderRequest, actor string) (_ *OrderResponse, err error) {
	ctx, done, err := s.begin(ctx, "Cancel", orderID)
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	committed := order.StockCommitted
	reserved := order.NeedsReservation()
	if err := order.Cancel(actor); err != nil {
		return nil, err
	}
	if _, err := s.reservations.Release(ctx, order.ID, actor); err != nil {
		return nil, err
	}
	if err := s.orders.SaveWithLock(ctx, order); err != nil {
		if reserved {
			s.restoreReservations(ctx, order.ID, order.Items, actor)
		}
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, s.logger, order)

	if req.Restock && committed {
		if err := s.stock.Restock(ctx, pickedLines(order), actor); err != nil {
			s.logger.Error("order cancelled but restock failed",
				zap.Int64("order_number", order.OrderNumber),
				zap.Error(err),
			)
			return nil, fmt.Errorf("order %d cancelled, restock failed: %w", order.OrderNumber, err)
		}
	}

	s.logger.Info("order cancelled",
		zap.Int64("order_number", order.OrderNumber),
		zap.String("from", order.PreviousStatus.String()),
		zap.Bool("restocked", req.Restock && committed),
	)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Reactivate restores a cancelled order to the stage it was cancelled from.
// Orders that still need stock are reserved again on a best-effort basis;
// the backfill job retries whatever could not be reserved.
func (s *FulfillmentService) Reactivate(ctx context.Context, orderID uuid.UUID, actor string) (_ *OrderResponse, err error) {
	ctx, done, err := s.begin(ctx, "Reactivate", orderID)
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	order, err := s.orders.FindByIDIncludingInactive(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Reactivate(actor); err != nil {
		return nil, err
	}
	if err := s.orders.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, s.logger, order)

	if order.NeedsReservation() {
		s.restoreReservations(ctx, order.ID, order.Items, actor)
	}

	resp := ToOrderResponse(order)
	return &resp, nil
}

// AttachProofOfPayment uploads a payment proof and records its object key
func (s *FulfillmentService) AttachProofOfPayment(ctx context.Context, orderID uuid.UUID, filename, contentType string, body io.Reader, size int64, actor string) (_ *OrderResponse, err error) {
	if s.storage == nil {
		return nil, shared.InvalidStatef("object storage is not configured")
	}
	if !proofContentTypes[contentType] {
		return nil, shared.Invalidf("unsupported proof of payment type %q", contentType)
	}
	ctx, done, err := s.begin(ctx, "AttachProofOfPayment", orderID)
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("proof-of-payment/%d/%s%s", order.OrderNumber, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	if err := s.storage.Put(ctx, key, contentType, body, size); err != nil {
		return nil, fmt.Errorf("upload proof of payment: %w", err)
	}
	if err := order.AttachProofOfPayment(key, actor); err != nil {
		s.discardUpload(ctx, key)
		return nil, err
	}
	if err := s.orders.SaveWithLock(ctx, order); err != nil {
		s.discardUpload(ctx, key)
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, s.logger, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// discardUpload removes an uploaded proof no order points to
func (s *FulfillmentService) discardUpload(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove orphaned proof of payment", zap.String("key", key), zap.Error(err))
	}
}

// ProofOfPaymentLink returns a temporary link to the order's proof of payment
func (s *FulfillmentService) ProofOfPaymentLink(ctx context.Context, orderID uuid.UUID) (*ProofLinkResponse, error) {
	if s.storage == nil {
		return nil, shared.InvalidStatef("object storage is not configured")
	}
	order, err := s.orders.FindByIDIncludingInactive(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ProofOfPayment == "" {
		return nil, shared.NotFoundf("order %d has no proof of payment", order.OrderNumber)
	}
	url, expiresAt, err := s.storage.DownloadURL(ctx, order.ProofOfPayment)
	if err != nil {
		return nil, fmt.Errorf("proof of payment link: %w", err)
	}
	return &ProofLinkResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// ============================================================================
// Queries
// ============================================================================

// GetOrder retrieves an order, cancelled ones included
func (s *FulfillmentService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByIDIncludingInactive(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetOrderByNumber retrieves an active order by its number
func (s *FulfillmentService) GetOrderByNumber(ctx context.Context, number int64) (*OrderResponse, error) {
	order, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListOrders lists orders with filtering and pagination
func (s *FulfillmentService) ListOrders(ctx context.Context, filter OrderListFilter) (*shared.Paginated[OrderResponse], error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, shared.Invalidf("unknown order status %q", filter.Status)
	}
	f := trade.OrderFilter{
		Filter:          shared.DefaultFilter(),
		Status:          filter.Status,
		Channel:         filter.Channel,
		IncludeInactive: filter.IncludeInactive,
	}
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}

	orders, total, err := s.orders.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	page := shared.NewPaginated(out, total, f.Page, f.PageSize)
	return &page, nil
}
