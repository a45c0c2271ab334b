package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRecord(t *testing.T, itemID uuid.UUID, location *uuid.UUID, unitType UnitType, qty int64, cost string) *StockRecord {
	t.Helper()
	r, err := NewStockRecord(itemID, location, unitType, qty, decimal.RequireFromString(cost), OriginPurchase, "tester")
	require.NoError(t, err)
	r.ClearDomainEvents()
	r.MarkClean()
	return r
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestNewStockRecord(t *testing.T) {
	itemID := uuid.New()

	t.Run("creates active record with event", func(t *testing.T) {
		r, err := NewStockRecord(itemID, nil, UnitTypeUnit, 10, decimal.NewFromInt(2), OriginPurchase, "alice")
		require.NoError(t, err)
		assert.Equal(t, shared.LifecycleActive, r.Lifecycle)
		assert.False(t, r.IsAssigned())
		assert.Equal(t, uuid.Nil, r.Key().LocationID)
		require.Len(t, r.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeStockRecordCreated, r.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := NewStockRecord(itemID, nil, UnitTypeUnit, -1, decimal.Zero, OriginPurchase, "alice")
		assert.True(t, errors.Is(err, shared.ErrValidationFailed))
	})

	t.Run("rejects unknown unit type", func(t *testing.T) {
		_, err := NewStockRecord(itemID, nil, UnitType("pallet"), 1, decimal.Zero, OriginPurchase, "alice")
		assert.Error(t, err)
	})
}

func TestStockRecord_Remove(t *testing.T) {
	t.Run("decrements and stamps actor", func(t *testing.T) {
		r := createTestRecord(t, uuid.New(), nil, UnitTypeUnit, 10, "1")
		require.NoError(t, r.Remove(4, "sale", "bob"))
		assert.Equal(t, int64(6), r.Quantity)
		assert.Equal(t, "bob", r.UpdatedBy)
		assert.Equal(t, 2, r.Version)
		events := r.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeStockRemoved, events[0].EventType())
		assert.Equal(t, "bob", events[0].Actor())
	})

	t.Run("never goes negative", func(t *testing.T) {
		r := createTestRecord(t, uuid.New(), nil, UnitTypeUnit, 3, "1")
		err := r.Remove(4, "sale", "bob")
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.Equal(t, int64(3), r.Quantity)
	})

	t.Run("inactive record is not found", func(t *testing.T) {
		r := createTestRecord(t, uuid.New(), nil, UnitTypeUnit, 0, "1")
		require.NoError(t, r.Retire("bob"))
		assert.True(t, errors.Is(r.Remove(1, "sale", "bob"), shared.ErrNotFound))
	})
}

func TestStockRecord_Add(t *testing.T) {
	r := createTestRecord(t, uuid.New(), nil, UnitTypeUnit, 10, "2")
	require.NoError(t, r.Add(30, decimal.NewFromInt(4), "transfer", "bob"))
	assert.Equal(t, int64(40), r.Quantity)
	assert.True(t, r.UnitCost.Equal(decimal.RequireFromString("3.5")))
	assert.Error(t, r.Add(0, decimal.NewFromInt(4), "transfer", "bob"))
}

func TestStockRecord_AssignTo(t *testing.T) {
	r := createTestRecord(t, uuid.New(), nil, UnitTypeBox, 2, "20")
	loc := uuid.New()
	require.NoError(t, r.AssignTo(loc, "bob"))
	assert.True(t, r.IsAt(loc))

	err := r.AssignTo(uuid.New(), "bob")
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

func TestStockRecord_Retire(t *testing.T) {
	r := createTestRecord(t, uuid.New(), nil, UnitTypeUnit, 1, "1")
	assert.True(t, errors.Is(r.Retire("bob"), shared.ErrInvalidState))

	require.NoError(t, r.Remove(1, "sale", "bob"))
	require.NoError(t, r.Retire("bob"))
	assert.Equal(t, shared.LifecycleInactive, r.Lifecycle)
	assert.NoError(t, r.Retire("bob"))
}

func TestConvertQuantity(t *testing.T) {
	t.Run("box to unit multiplies", func(t *testing.T) {
		q, err := ConvertQuantity(3, UnitTypeBox, UnitTypeUnit, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(60), q)
	})

	t.Run("unit to box needs whole boxes", func(t *testing.T) {
		q, err := ConvertQuantity(40, UnitTypeUnit, UnitTypeBox, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(2), q)

		_, err = ConvertQuantity(41, UnitTypeUnit, UnitTypeBox, 20)
		assert.True(t, errors.Is(err, shared.ErrUnresolvableBoxFraction))
	})

	t.Run("cost follows the conversion", func(t *testing.T) {
		c := ConvertCost(decimal.NewFromInt(40), UnitTypeBox, UnitTypeUnit, 20)
		assert.True(t, c.Equal(decimal.NewFromInt(2)))
		back := ConvertCost(c, UnitTypeUnit, UnitTypeBox, 20)
		assert.True(t, back.Equal(decimal.NewFromInt(40)))
	})
}

func TestPlanFifoRemoval(t *testing.T) {
	itemID := uuid.New()
	l1 := ptr(uuid.New())

	t.Run("removes exactly the unit stock", func(t *testing.T) {
		records := []*StockRecord{createTestRecord(t, itemID, l1, UnitTypeUnit, 15, "1")}
		plan, err := PlanFifoRemoval(records, 20, 15)
		require.NoError(t, err)
		require.Len(t, plan.Steps, 1)
		assert.Equal(t, int64(15), plan.Steps[0].Quantity)
	})

	t.Run("one more than available is insufficient", func(t *testing.T) {
		records := []*StockRecord{createTestRecord(t, itemID, l1, UnitTypeUnit, 15, "1")}
		_, err := PlanFifoRemoval(records, 20, 16)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})

	t.Run("consumes units before boxes", func(t *testing.T) {
		box := createTestRecord(t, itemID, l1, UnitTypeBox, 2, "20")
		box.CreatedAt = time.Now().Add(-time.Hour)
		unit := createTestRecord(t, itemID, l1, UnitTypeUnit, 5, "1")
		plan, err := PlanFifoRemoval([]*StockRecord{box, unit}, 10, 15)
		require.NoError(t, err)
		require.Len(t, plan.Steps, 2)
		assert.Equal(t, unit.ID, plan.Steps[0].RecordID)
		assert.Equal(t, int64(5), plan.Steps[0].Quantity)
		assert.Equal(t, box.ID, plan.Steps[1].RecordID)
		assert.Equal(t, int64(1), plan.Steps[1].Quantity)
		assert.Equal(t, int64(10), plan.Steps[1].Units)
	})

	t.Run("fractional box is rejected", func(t *testing.T) {
		unit := createTestRecord(t, itemID, l1, UnitTypeUnit, 15, "1")
		box := createTestRecord(t, itemID, l1, UnitTypeBox, 1, "20")
		_, err := PlanFifoRemoval([]*StockRecord{unit, box}, 20, 16)
		assert.True(t, errors.Is(err, shared.ErrUnresolvableBoxFraction))
	})

	t.Run("older records go first within a type", func(t *testing.T) {
		newer := createTestRecord(t, itemID, l1, UnitTypeUnit, 5, "1")
		older := createTestRecord(t, itemID, l1, UnitTypeUnit, 5, "1")
		older.CreatedAt = newer.CreatedAt.Add(-time.Minute)
		plan, err := PlanFifoRemoval([]*StockRecord{newer, older}, 1, 3)
		require.NoError(t, err)
		assert.Equal(t, older.ID, plan.Steps[0].RecordID)
	})

	t.Run("skips empty and inactive records", func(t *testing.T) {
		empty := createTestRecord(t, itemID, l1, UnitTypeUnit, 0, "1")
		live := createTestRecord(t, itemID, l1, UnitTypeUnit, 2, "1")
		plan, err := PlanFifoRemoval([]*StockRecord{empty, live}, 1, 2)
		require.NoError(t, err)
		require.Len(t, plan.Steps, 1)
		assert.Equal(t, live.ID, plan.Steps[0].RecordID)
	})

	t.Run("rejects non-positive request", func(t *testing.T) {
		_, err := PlanFifoRemoval(nil, 1, 0)
		assert.True(t, errors.Is(err, shared.ErrValidationFailed))
	})
}

func TestPlanTransfer(t *testing.T) {
	itemID := uuid.New()
	a := uuid.New()
	b := uuid.New()

	t.Run("same location and type is a no-op", func(t *testing.T) {
		src := createTestRecord(t, itemID, &a, UnitTypeUnit, 10, "1")
		_, err := PlanTransfer(src, a, UnitTypeUnit, 5, 1)
		assert.True(t, errors.Is(err, shared.ErrNoOpTransfer))
	})

	t.Run("insufficient source", func(t *testing.T) {
		src := createTestRecord(t, itemID, &a, UnitTypeUnit, 10, "1")
		_, err := PlanTransfer(src, b, UnitTypeUnit, 11, 1)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})

	t.Run("box to unit converts quantity and cost", func(t *testing.T) {
		src := createTestRecord(t, itemID, &a, UnitTypeBox, 3, "40")
		plan, err := PlanTransfer(src, a, UnitTypeUnit, 2, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(40), plan.DestinationQuantity)
		assert.True(t, plan.DestinationUnitCost.Equal(decimal.NewFromInt(2)))
		assert.Equal(t, StockKey{ItemID: itemID, LocationID: a, UnitType: UnitTypeUnit}, plan.DestinationKey)
	})

	t.Run("round trip restores quantity and cost", func(t *testing.T) {
		src := createTestRecord(t, itemID, &a, UnitTypeUnit, 10, "3")
		plan, err := PlanTransfer(src, b, UnitTypeUnit, 4, 1)
		require.NoError(t, err)
		require.NoError(t, src.Remove(plan.SourceQuantity, "transfer", "bob"))
		dst, err := NewStockRecord(itemID, &b, UnitTypeUnit, plan.DestinationQuantity, plan.DestinationUnitCost, OriginTransfer, "bob")
		require.NoError(t, err)

		back, err := PlanTransfer(dst, a, UnitTypeUnit, 4, 1)
		require.NoError(t, err)
		require.NoError(t, dst.Remove(back.SourceQuantity, "transfer", "bob"))
		require.NoError(t, src.Add(back.DestinationQuantity, back.DestinationUnitCost, "transfer", "bob"))

		assert.Equal(t, int64(10), src.Quantity)
		assert.True(t, src.UnitCost.Equal(decimal.NewFromInt(3)))
		assert.True(t, ShouldRetireAfterTransfer(dst))
		assert.False(t, ShouldRetireAfterTransfer(src))
	})
}

func TestPlanConsolidation(t *testing.T) {
	itemA := uuid.New()
	itemB := uuid.New()
	loc := ptr(uuid.New())

	primary := createTestRecord(t, itemA, loc, UnitTypeUnit, 5, "2")
	primary.CreatedAt = time.Now().Add(-time.Hour)
	dup := createTestRecord(t, itemA, loc, UnitTypeUnit, 5, "4")
	box := createTestRecord(t, itemA, loc, UnitTypeBox, 1, "40")
	single := createTestRecord(t, itemB, loc, UnitTypeUnit, 1, "1")

	groups := PlanConsolidation([]*StockRecord{dup, box, single, primary})
	require.Len(t, groups, 1)
	assert.Equal(t, primary.ID, groups[0].Primary.ID)
	require.Len(t, groups[0].Duplicates, 1)
	assert.Equal(t, dup.ID, groups[0].Duplicates[0].ID)

	require.NoError(t, primary.Absorb(dup, "bob"))
	assert.Equal(t, int64(10), primary.Quantity)
	assert.True(t, primary.UnitCost.Equal(decimal.NewFromInt(3)))
	assert.Error(t, primary.Absorb(box, "bob"))
	assert.Error(t, primary.Absorb(primary, "bob"))
}
