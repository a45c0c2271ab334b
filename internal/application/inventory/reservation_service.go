package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReservationService handles stock promised to orders. Reservations never
// change physical quantities.
type ReservationService struct {
	reservations   inventory.ReservationRepository
	records        inventory.StockRecordRepository
	locker         *KeyedLocker
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(
	reservations inventory.ReservationRepository,
	records inventory.StockRecordRepository,
	locker *KeyedLocker,
	logger *zap.Logger,
) *ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{
		reservations: reservations,
		records:      records,
		locker:       locker,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReservationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// availabilityKey serializes reservations competing for the same pool
func availabilityKey(itemID uuid.UUID, unitType inventory.UnitType) string {
	return fmt.Sprintf("availability:%s:%s", itemID, unitType)
}

// Reserve promises quantity of an item to an order. The active reservation
// of the (item, order) pair is incremented, or created when there is none.
func (s *ReservationService) Reserve(ctx context.Context, in ReserveInput) (*ReservationResponse, error) {
	if err := validateReserveInput(in); err != nil {
		return nil, err
	}
	unlock, err := s.lockPair(ctx, in)
	if err != nil {
		return nil, err
	}
	defer unlock()

	r, err := s.reserveLocked(ctx, in)
	if err != nil {
		return nil, err
	}
	resp := ToReservationResponse(r)
	return &resp, nil
}

// EnsureReserved tops the order's reservation of an item up to quantity.
// Nothing is written when the order already holds at least that much, so
// it can be repeated safely. Returns whether anything was reserved.
func (s *ReservationService) EnsureReserved(ctx context.Context, in ReserveInput) (bool, error) {
	if err := validateReserveInput(in); err != nil {
		return false, err
	}
	unlock, err := s.lockPair(ctx, in)
	if err != nil {
		return false, err
	}
	defer unlock()

	existing, err := s.reservations.FindByItemAndOrder(ctx, in.ItemID, in.OrderID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}
	if existing != nil {
		held := existing.Count(in.UnitType)
		if held >= in.Quantity {
			return false, nil
		}
		in.Quantity -= held
	}
	if _, err := s.reserveLocked(ctx, in); err != nil {
		return false, err
	}
	return true, nil
}

func validateReserveInput(in ReserveInput) error {
	if in.ItemID == uuid.Nil || in.OrderID == uuid.Nil {
		return shared.Invalidf("item and order are required")
	}
	if !in.UnitType.IsValid() {
		return shared.Invalidf("unknown unit type %q", in.UnitType)
	}
	if in.Quantity <= 0 {
		return shared.Invalidf("quantity must be positive")
	}
	return nil
}

func (s *ReservationService) lockPair(ctx context.Context, in ReserveInput) (func(), error) {
	return s.locker.LockAll(ctx,
		availabilityKey(in.ItemID, in.UnitType),
		inventory.ReservationLockKey(in.ItemID, in.OrderID),
	)
}

// reserveLocked checks availability and writes the reservation; the caller
// holds the pair's locks
func (s *ReservationService) reserveLocked(ctx context.Context, in ReserveInput) (*inventory.Reservation, error) {
	available, err := s.Availability(ctx, in.ItemID, in.UnitType)
	if err != nil {
		return nil, err
	}
	if available < in.Quantity {
		return nil, shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("requested %d %s of item %s, only %d available", in.Quantity, in.UnitType, in.ItemID, available))
	}

	r, err := s.upsert(ctx, in)
	if err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, r)
	return r, nil
}

func (s *ReservationService) upsert(ctx context.Context, in ReserveInput) (*inventory.Reservation, error) {
	existing, err := s.reservations.FindByItemAndOrder(ctx, in.ItemID, in.OrderID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return existing, s.increment(ctx, existing, in)
	}

	r, err := inventory.NewReservation(in.ItemID, in.OrderID, in.UnitType, in.Quantity, in.Actor)
	if err != nil {
		return nil, err
	}
	err = s.reservations.Create(ctx, r)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, shared.ErrConflict) {
		return nil, err
	}

	// another process created the pair first; fold into its row
	existing, err = s.reservations.FindByItemAndOrder(ctx, in.ItemID, in.OrderID)
	if err != nil {
		return nil, err
	}
	return existing, s.increment(ctx, existing, in)
}

func (s *ReservationService) increment(ctx context.Context, r *inventory.Reservation, in ReserveInput) error {
	if err := r.Add(in.UnitType, in.Quantity, in.Actor); err != nil {
		return err
	}
	return s.reservations.SaveWithLock(ctx, r)
}

// Release deactivates every active reservation of an order and returns how
// many were released
func (s *ReservationService) Release(ctx context.Context, orderID uuid.UUID, actor string) (int, error) {
	current, err := s.reservations.FindByOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	if len(current) == 0 {
		return 0, nil
	}
	keys := make([]string, len(current))
	for i := range current {
		keys[i] = current[i].LockKey()
	}
	unlock, err := s.locker.LockAll(ctx, keys...)
	if err != nil {
		return 0, err
	}
	defer unlock()

	released, err := releaseOrder(ctx, s.reservations, orderID, actor)
	for _, r := range released {
		s.publishDomainEvents(ctx, r)
	}
	if err != nil {
		return len(released), err
	}
	if len(released) > 0 {
		s.logger.Info("reservations released",
			zap.String("order_id", orderID.String()),
			zap.Int("count", len(released)),
		)
	}
	return len(released), nil
}

// releaseOrder releases the active reservations of an order through repo
func releaseOrder(ctx context.Context, repo inventory.ReservationRepository, orderID uuid.UUID, actor string) ([]*inventory.Reservation, error) {
	current, err := repo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	released := make([]*inventory.Reservation, 0, len(current))
	for i := range current {
		r := &current[i]
		if !r.Release(actor) {
			continue
		}
		if err := repo.SaveWithLock(ctx, r); err != nil {
			return released, err
		}
		released = append(released, r)
	}
	return released, nil
}

// Availability returns physical quantity minus active reservations of the
// same unit type. Box and unit pools are never converted into each other.
func (s *ReservationService) Availability(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType) (int64, error) {
	detail, err := s.AvailabilityDetail(ctx, itemID, unitType)
	if err != nil {
		return 0, err
	}
	return detail.Available, nil
}

// AvailabilityDetail returns the physical, reserved and available quantities
func (s *ReservationService) AvailabilityDetail(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType) (*AvailabilityResponse, error) {
	if !unitType.IsValid() {
		return nil, shared.Invalidf("unknown unit type %q", unitType)
	}
	physical, err := s.records.SumQuantity(ctx, itemID, unitType)
	if err != nil {
		return nil, err
	}
	reserved, err := s.reservations.SumActive(ctx, itemID, unitType)
	if err != nil {
		return nil, err
	}
	return &AvailabilityResponse{
		ItemID:    itemID,
		UnitType:  unitType,
		Physical:  physical,
		Reserved:  reserved,
		Available: inventory.Available(physical, reserved),
	}, nil
}

// ListByOrder lists the active reservations of an order
func (s *ReservationService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]ReservationResponse, error) {
	current, err := s.reservations.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]ReservationResponse, len(current))
	for i := range current {
		out[i] = ToReservationResponse(&current[i])
	}
	return out, nil
}

// publishDomainEvents publishes all domain events from the reservation
func (s *ReservationService) publishDomainEvents(ctx context.Context, r *inventory.Reservation) {
	publishDomainEvents(ctx, s.eventPublisher, s.logger, r)
}
