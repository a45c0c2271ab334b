package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord(t *testing.T, itemID uuid.UUID, locationID *uuid.UUID, unitType inventory.UnitType, qty int64) *inventory.StockRecord {
	t.Helper()
	r, err := inventory.NewStockRecord(itemID, locationID, unitType, qty, decimal.NewFromInt(2), inventory.OriginPurchase, "tester")
	require.NoError(t, err)
	return r
}

func TestGormStockRecordRepository_FindByID_NotFound(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormStockRecordRepository(db.DB)

	mock.ExpectQuery(`SELECT \* FROM "stock_records" WHERE lifecycle = \$1 AND id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStockRecordRepository_SaveWithLock_StaleVersion(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormStockRecordRepository(db.DB)

	record := newTestRecord(t, uuid.New(), nil, inventory.UnitTypeUnit, 5)
	record.MarkClean()
	require.NoError(t, record.Remove(1, "sale", "tester"))

	mock.ExpectExec(`UPDATE "stock_records" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveWithLock(context.Background(), record)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, shared.CodeConcurrencyConflict, domainErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStockRecordRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormStockRecordRepository(db)

	itemID := uuid.New()
	shelf := uuid.New()
	unassigned := newTestRecord(t, itemID, nil, inventory.UnitTypeUnit, 7)
	shelved := newTestRecord(t, itemID, &shelf, inventory.UnitTypeUnit, 3)
	boxes := newTestRecord(t, itemID, &shelf, inventory.UnitTypeBox, 2)
	for _, r := range []*inventory.StockRecord{unassigned, shelved, boxes} {
		require.NoError(t, repo.Create(ctx, r))
	}

	t.Run("find by key distinguishes unassigned stock", func(t *testing.T) {
		found, err := repo.FindByKey(ctx, inventory.StockKey{ItemID: itemID, UnitType: inventory.UnitTypeUnit})
		require.NoError(t, err)
		assert.Equal(t, unassigned.ID, found.ID)
		assert.Nil(t, found.LocationID)

		found, err = repo.FindByKey(ctx, inventory.StockKey{ItemID: itemID, LocationID: shelf, UnitType: inventory.UnitTypeUnit})
		require.NoError(t, err)
		assert.Equal(t, shelved.ID, found.ID)
		assert.True(t, found.UnitCost.Equal(decimal.NewFromInt(2)))

		_, err = repo.FindByKey(ctx, inventory.StockKey{ItemID: itemID, LocationID: uuid.New(), UnitType: inventory.UnitTypeUnit})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("sums quantity per unit type", func(t *testing.T) {
		units, err := repo.SumQuantity(ctx, itemID, inventory.UnitTypeUnit)
		require.NoError(t, err)
		assert.Equal(t, int64(10), units)

		none, err := repo.SumQuantity(ctx, uuid.New(), inventory.UnitTypeBox)
		require.NoError(t, err)
		assert.Equal(t, int64(0), none)
	})

	t.Run("lists by item and location", func(t *testing.T) {
		byItem, err := repo.FindByItem(ctx, itemID)
		require.NoError(t, err)
		assert.Len(t, byItem, 3)

		atShelf, err := repo.FindByLocation(ctx, shelf)
		require.NoError(t, err)
		assert.Len(t, atShelf, 2)
	})

	t.Run("save with lock rejects a stale copy", func(t *testing.T) {
		first, err := repo.FindByID(ctx, shelved.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, shelved.ID)
		require.NoError(t, err)

		require.NoError(t, first.Remove(1, "sale", "a"))
		require.NoError(t, repo.SaveWithLock(ctx, first))

		require.NoError(t, second.Remove(2, "sale", "b"))
		err = repo.SaveWithLock(ctx, second)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.CodeConcurrencyConflict, domainErr.Code)

		stored, err := repo.FindByID(ctx, shelved.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored.Quantity)
		assert.Equal(t, first.Version, stored.Version)
	})

	t.Run("retired records drop out of sums", func(t *testing.T) {
		r, err := repo.FindByID(ctx, boxes.ID)
		require.NoError(t, err)
		require.NoError(t, r.Remove(2, "sale", "tester"))
		require.NoError(t, r.Retire("tester"))
		require.NoError(t, repo.SaveWithLock(ctx, r))

		total, err := repo.SumQuantity(ctx, itemID, inventory.UnitTypeBox)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		_, err = repo.FindByID(ctx, boxes.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("delete removes the row", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, unassigned.ID))
		assert.True(t, errors.Is(repo.Delete(ctx, unassigned.ID), shared.ErrNotFound))
	})
}
