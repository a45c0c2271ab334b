package trade

import (
	"context"
	"fmt"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/pricing"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartService handles pre-order carts
type CartService struct {
	carts          trade.CartRepository
	reservations   ReservationLedger
	quoter         quoter
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(
	carts trade.CartRepository,
	items catalog.ItemReader,
	taxes catalog.TaxConfigReader,
	reservations ReservationLedger,
	logger *zap.Logger,
) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		carts:        carts,
		reservations: reservations,
		quoter:       quoter{items: items, taxes: taxes},
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CartService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Open creates an empty cart
func (s *CartService) Open(ctx context.Context, req OpenCartRequest, actor string) (*CartResponse, error) {
	cart, err := trade.NewCart(req.SellerID, req.ClientID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, err
	}
	resp := ToCartResponse(cart)
	return &resp, nil
}

// Get retrieves a cart
func (s *CartService) Get(ctx context.Context, id uuid.UUID) (*CartResponse, error) {
	cart, err := s.carts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(cart)
	return &resp, nil
}

// AddLine adds an item to the cart. The resulting line quantity may not
// exceed what is currently available for the item and unit type.
func (s *CartService) AddLine(ctx context.Context, cartID uuid.UUID, req LineRequest, actor string) (*CartResponse, error) {
	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	wanted := req.Quantity
	if line := cart.Line(req.ItemID, req.UnitType); line != nil {
		wanted += line.Quantity
	}
	if err := s.ensureAvailable(ctx, req.ItemID, req.UnitType, wanted); err != nil {
		return nil, err
	}
	if _, err := cart.AddLine(req.ItemID, req.Quantity, req.UnitType, actor); err != nil {
		return nil, err
	}
	return s.reprice(ctx, cart)
}

// UpdateLine replaces the quantity of a cart line, subject to availability
func (s *CartService) UpdateLine(ctx context.Context, cartID, itemID uuid.UUID, req UpdateLineRequest, actor string) (*CartResponse, error) {
	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, itemID, req.UnitType, req.Quantity); err != nil {
		return nil, err
	}
	if err := cart.SetLineQuantity(itemID, req.UnitType, req.Quantity, actor); err != nil {
		return nil, err
	}
	return s.reprice(ctx, cart)
}

// RemoveLine drops a line from the cart
func (s *CartService) RemoveLine(ctx context.Context, cartID, itemID uuid.UUID, unitType inventory.UnitType, actor string) (*CartResponse, error) {
	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := cart.RemoveLine(itemID, unitType, actor); err != nil {
		return nil, err
	}
	return s.reprice(ctx, cart)
}

// Cancel abandons a cart
func (s *CartService) Cancel(ctx context.Context, cartID uuid.UUID, actor string) (*CartResponse, error) {
	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := cart.Cancel(actor); err != nil {
		return nil, err
	}
	if err := s.carts.SaveWithLock(ctx, cart); err != nil {
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, s.logger, cart)
	resp := ToCartResponse(cart)
	return &resp, nil
}

// Quote prices arbitrary lines with the current tax configuration. Nothing
// is stored.
func (s *CartService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	lines, err := newLineItems(req.Lines)
	if err != nil {
		return nil, err
	}
	inputs := make([]pricing.LineInput, len(lines))
	for i := range lines {
		inputs[i] = lines[i].PricingInput()
	}
	q, _, err := s.quoter.quote(ctx, inputs)
	if err != nil {
		return nil, err
	}
	total, err := pricing.OrderTotal(q.Subtotal, req.Discount, req.Tenders)
	if err != nil {
		return nil, err
	}
	resp := toQuoteResponse(q, req.Discount, total)
	return &resp, nil
}

func (s *CartService) ensureAvailable(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType, quantity int64) error {
	available, err := s.reservations.Availability(ctx, itemID, unitType)
	if err != nil {
		return err
	}
	if quantity > available {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("requested %d %s of item %s, only %d available", quantity, unitType, itemID, available))
	}
	return nil
}

// reprice refreshes the cart totals and saves it
func (s *CartService) reprice(ctx context.Context, cart *trade.Cart) (*CartResponse, error) {
	if len(cart.Items) > 0 {
		q, _, err := s.quoter.quote(ctx, cart.PricingInputs())
		if err != nil {
			return nil, err
		}
		if err := cart.ApplyQuote(q); err != nil {
			return nil, err
		}
	} else {
		cart.Subtotal = decimal.Zero
		cart.TotalTax = decimal.Zero
	}
	if err := s.carts.SaveWithLock(ctx, cart); err != nil {
		return nil, err
	}
	resp := ToCartResponse(cart)
	return &resp, nil
}
