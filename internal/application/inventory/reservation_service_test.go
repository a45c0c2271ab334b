package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReservationFixture() (*ReservationService, *MockReservationRepository, *MockStockRecordRepository, *MockEventPublisher) {
	reservations := new(MockReservationRepository)
	records := new(MockStockRecordRepository)
	publisher := NewMockEventPublisher()
	svc := NewReservationService(reservations, records, NewKeyedLocker(), nil)
	svc.SetEventPublisher(publisher)
	return svc, reservations, records, publisher
}

func TestReservationService_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a reservation holding one counter", func(t *testing.T) {
		svc, reservations, records, publisher := newReservationFixture()
		itemID, orderID := uuid.New(), uuid.New()
		records.On("SumQuantity", mock.Anything, itemID, inventory.UnitTypeBox).Return(int64(10), nil)
		reservations.On("SumActive", mock.Anything, itemID, inventory.UnitTypeBox).Return(int64(0), nil)
		reservations.On("FindByItemAndOrder", mock.Anything, itemID, orderID).Return(nil, shared.ErrNotFound)
		reservations.On("Create", mock.Anything, mock.AnythingOfType("*inventory.Reservation")).Return(nil)

		resp, err := svc.Reserve(ctx, ReserveInput{ItemID: itemID, OrderID: orderID, UnitType: inventory.UnitTypeBox, Quantity: 4, Actor: "seller"})
		require.NoError(t, err)
		assert.Equal(t, int64(4), resp.BoxCount)
		assert.Equal(t, int64(0), resp.UnitCount)
		assert.Len(t, publisher.GetEventsByType(inventory.EventTypeReservationPlaced), 1)
	})

	t.Run("repeated reserve accumulates", func(t *testing.T) {
		svc, reservations, records, _ := newReservationFixture()
		itemID, orderID := uuid.New(), uuid.New()
		existing, err := inventory.NewReservation(itemID, orderID, inventory.UnitTypeUnit, 3, "seller")
		require.NoError(t, err)
		records.On("SumQuantity", mock.Anything, itemID, inventory.UnitTypeUnit).Return(int64(10), nil)
		reservations.On("SumActive", mock.Anything, itemID, inventory.UnitTypeUnit).Return(int64(3), nil)
		reservations.On("FindByItemAndOrder", mock.Anything, itemID, orderID).Return(existing, nil)
		reservations.On("SaveWithLock", mock.Anything, existing).Return(nil)

		resp, err := svc.Reserve(ctx, ReserveInput{ItemID: itemID, OrderID: orderID, UnitType: inventory.UnitTypeUnit, Quantity: 2, Actor: "seller"})
		require.NoError(t, err)
		assert.Equal(t, int64(5), resp.UnitCount)
		reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects more than available", func(t *testing.T) {
		svc, reservations, records, _ := newReservationFixture()
		itemID, orderID := uuid.New(), uuid.New()
		records.On("SumQuantity", mock.Anything, itemID, inventory.UnitTypeUnit).Return(int64(10), nil)
		reservations.On("SumActive", mock.Anything, itemID, inventory.UnitTypeUnit).Return(int64(8), nil)

		_, err := svc.Reserve(ctx, ReserveInput{ItemID: itemID, OrderID: orderID, UnitType: inventory.UnitTypeUnit, Quantity: 3, Actor: "seller"})
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})

	t.Run("losing a create race folds into the winner", func(t *testing.T) {
		svc, reservations, records, _ := newReservationFixture()
		itemID, orderID := uuid.New(), uuid.New()
		winner, err := inventory.NewReservation(itemID, orderID, inventory.UnitTypeUnit, 1, "other")
		require.NoError(t, err)
		records.On("SumQuantity", mock.Anything, itemID, inventory.UnitTypeUnit).Return(int64(10), nil)
		reservations.On("SumActive", mock.Anything, itemID, inventory.UnitTypeUnit).Return(int64(0), nil)
		reservations.On("FindByItemAndOrder", mock.Anything, itemID, orderID).Return(nil, shared.ErrNotFound).Once()
		reservations.On("Create", mock.Anything, mock.AnythingOfType("*inventory.Reservation")).Return(shared.ErrConflict)
		reservations.On("FindByItemAndOrder", mock.Anything, itemID, orderID).Return(winner, nil)
		reservations.On("SaveWithLock", mock.Anything, winner).Return(nil)

		resp, err := svc.Reserve(ctx, ReserveInput{ItemID: itemID, OrderID: orderID, UnitType: inventory.UnitTypeUnit, Quantity: 2, Actor: "seller"})
		require.NoError(t, err)
		assert.Equal(t, winner.ID, resp.ID)
		assert.Equal(t, int64(3), winner.UnitCount)
	})

	t.Run("validates input", func(t *testing.T) {
		svc, _, _, _ := newReservationFixture()
		_, err := svc.Reserve(ctx, ReserveInput{ItemID: uuid.New(), OrderID: uuid.New(), UnitType: inventory.UnitTypeUnit, Quantity: 0})
		assert.True(t, errors.Is(err, shared.ErrValidationFailed))
	})
}

func TestReservationService_ConcurrentReserve(t *testing.T) {
	svc, reservations, records, _ := newReservationFixture()
	itemID := uuid.New()

	var mu sync.Mutex
	var reserved int64
	records.On("SumQuantity", mock.Anything, itemID, inventory.UnitTypeUnit).Return(int64(10), nil)
	reservations.On("SumActive", mock.Anything, itemID, inventory.UnitTypeUnit).Return(
		func(context.Context, uuid.UUID, inventory.UnitType) int64 {
			mu.Lock()
			defer mu.Unlock()
			return reserved
		}, nil)
	reservations.On("FindByItemAndOrder", mock.Anything, itemID, mock.Anything).Return(nil, shared.ErrNotFound)
	reservations.On("Create", mock.Anything, mock.AnythingOfType("*inventory.Reservation")).
		Run(func(args mock.Arguments) {
			mu.Lock()
			defer mu.Unlock()
			reserved += args.Get(1).(*inventory.Reservation).UnitCount
		}).
		Return(nil)

	var wg sync.WaitGroup
	var okCount, failCount int
	var countMu sync.Mutex
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), ReserveInput{
				ItemID: itemID, OrderID: uuid.New(), UnitType: inventory.UnitTypeUnit, Quantity: 3, Actor: "seller",
			})
			countMu.Lock()
			defer countMu.Unlock()
			if err == nil {
				okCount++
			} else {
				failCount++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, okCount)
	assert.Equal(t, 5, failCount)
	assert.LessOrEqual(t, reserved, int64(10))
}

func TestReservationService_EnsureReserved(t *testing.T) {
	ctx := context.Background()

	t.Run("no-op when already held", func(t *testing.T) {
		svc, reservations, _, _ := newReservationFixture()
		itemID, orderID := uuid.New(), uuid.New()
		existing, err := inventory.NewReservation(itemID, orderID, inventory.UnitTypeUnit, 3, "seller")
		require.NoError(t, err)
		reservations.On("FindByItemAndOrder", mock.Anything, itemID, orderID).Return(existing, nil)

		created, err := svc.EnsureReserved(ctx, ReserveInput{ItemID: itemID, OrderID: orderID, UnitType: inventory.UnitTypeUnit, Quantity: 3, Actor: "backfill"})
		require.NoError(t, err)
		assert.False(t, created)
		reservations.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("tops up the missing unit type", func(t *testing.T) {
		svc, reservations, records, _ := newReservationFixture()
		itemID, orderID := uuid.New(), uuid.New()
		existing, err := inventory.NewReservation(itemID, orderID, inventory.UnitTypeUnit, 3, "seller")
		require.NoError(t, err)
		records.On("SumQuantity", mock.Anything, itemID, inventory.UnitTypeBox).Return(int64(5), nil)
		reservations.On("SumActive", mock.Anything, itemID, inventory.UnitTypeBox).Return(int64(0), nil)
		reservations.On("FindByItemAndOrder", mock.Anything, itemID, orderID).Return(existing, nil)
		reservations.On("SaveWithLock", mock.Anything, existing).Return(nil)

		created, err := svc.EnsureReserved(ctx, ReserveInput{ItemID: itemID, OrderID: orderID, UnitType: inventory.UnitTypeBox, Quantity: 2, Actor: "backfill"})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, int64(2), existing.BoxCount)
		assert.Equal(t, int64(3), existing.UnitCount)
	})
}

func TestReservationService_Release(t *testing.T) {
	svc, reservations, _, publisher := newReservationFixture()
	orderID := uuid.New()
	a, _ := inventory.NewReservation(uuid.New(), orderID, inventory.UnitTypeUnit, 1, "seller")
	b, _ := inventory.NewReservation(uuid.New(), orderID, inventory.UnitTypeBox, 1, "seller")
	current := []inventory.Reservation{*a, *b}
	reservations.On("FindByOrder", mock.Anything, orderID).Return(current, nil)
	reservations.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*inventory.Reservation")).Return(nil)

	n, err := svc.Release(context.Background(), orderID, "manager")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, shared.LifecycleInactive, current[0].Lifecycle)
	assert.Equal(t, shared.LifecycleInactive, current[1].Lifecycle)
	assert.Len(t, publisher.GetEventsByType(inventory.EventTypeReservationReleased), 2)
}

func TestReservationService_Availability(t *testing.T) {
	svc, reservations, records, _ := newReservationFixture()
	itemID := uuid.New()
	records.On("SumQuantity", mock.Anything, itemID, inventory.UnitTypeUnit).Return(int64(4), nil)
	reservations.On("SumActive", mock.Anything, itemID, inventory.UnitTypeUnit).Return(int64(6), nil)

	detail, err := svc.AvailabilityDetail(context.Background(), itemID, inventory.UnitTypeUnit)
	require.NoError(t, err)
	assert.Equal(t, int64(0), detail.Available)
	assert.Equal(t, int64(6), detail.Reserved)
}
