package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(t *testing.T, sku string) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(sku, "Item "+sku, decimal.NewFromInt(10), 12, "tester")
	require.NoError(t, err)
	return item
}

func TestGormItemRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormItemRepository(db)

	a, b, c := newTestItem(t, "A-1"), newTestItem(t, "B-1"), newTestItem(t, "C-1")
	for _, item := range []*catalog.Item{a, b, c} {
		require.NoError(t, repo.Save(ctx, item))
	}

	t.Run("get items skips unknown ids", func(t *testing.T) {
		found, err := repo.GetItems(ctx, []uuid.UUID{a.ID, c.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, found, 2)
		assert.Equal(t, "C-1", found[c.ID].SKU)
		assert.Equal(t, 12, found[a.ID].UnitsPerBox)

		empty, err := repo.GetItems(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("pages through items", func(t *testing.T) {
		filter := shared.Filter{Page: 1, PageSize: 2, OrderBy: "sku", OrderDir: "asc"}
		items, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 2)
		assert.Equal(t, "A-1", items[0].SKU)

		filter.Page = 2
		items, _, err = repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "C-1", items[0].SKU)
	})

	t.Run("duplicate sku conflicts", func(t *testing.T) {
		assert.True(t, errors.Is(repo.Save(ctx, newTestItem(t, "a-1")), shared.ErrConflict))
	})

	t.Run("updates keep the price", func(t *testing.T) {
		require.NoError(t, a.StartPromotion(decimal.NewFromInt(8)))
		require.NoError(t, repo.Save(ctx, a))

		stored, err := repo.GetItem(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsPromotion)
		assert.True(t, stored.BasePrice().Equal(decimal.NewFromInt(8)))
	})
}

func TestGormLocationRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormLocationRepository(db)

	loc, err := catalog.NewLocation("a-01-03", "Aisle A", "tester")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loc))

	t.Run("codes are matched normalized", func(t *testing.T) {
		found, err := repo.FindLocationByCode(ctx, "  a-01-03 ")
		require.NoError(t, err)
		assert.Equal(t, loc.ID, found.ID)
		assert.Equal(t, "A-01-03", found.Code)

		_, err = repo.FindLocationByCode(ctx, "Z-99")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("duplicate code conflicts", func(t *testing.T) {
		dup, err := catalog.NewLocation("A-01-03", "Again", "tester")
		require.NoError(t, err)
		assert.True(t, errors.Is(repo.Save(ctx, dup), shared.ErrConflict))
	})

	t.Run("item index is idempotent", func(t *testing.T) {
		recordID := uuid.New()
		require.NoError(t, repo.IndexStockRecord(ctx, loc.ID, recordID))
		require.NoError(t, repo.IndexStockRecord(ctx, loc.ID, recordID))

		ids, err := repo.IndexedStockRecords(ctx, loc.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{recordID}, ids)

		require.NoError(t, repo.UnindexStockRecord(ctx, loc.ID, recordID))
		ids, err = repo.IndexedStockRecords(ctx, loc.ID)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestGormTaxConfigRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormTaxConfigRepository(db)

	_, err := repo.FindSelected(ctx)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	standard, err := catalog.NewTaxConfig("standard", decimal.NewFromInt(35), decimal.NewFromInt(20), 10, "admin")
	require.NoError(t, err)
	reduced, err := catalog.NewTaxConfig("reduced", decimal.NewFromInt(10), decimal.NewFromInt(5), 6, "admin")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, standard))
	require.NoError(t, repo.Save(ctx, reduced))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Select(ctx, standard.ID, "admin"))
	selected, err := repo.FindSelected(ctx)
	require.NoError(t, err)
	assert.Equal(t, standard.ID, selected.ID)
	assert.True(t, selected.RetailPercent.Equal(decimal.NewFromInt(35)))
	assert.Equal(t, int64(10), selected.MinWholesaleQty)

	require.NoError(t, repo.Select(ctx, reduced.ID, "admin"))
	selected, err = repo.FindSelected(ctx)
	require.NoError(t, err)
	assert.Equal(t, reduced.ID, selected.ID)

	var rows int64
	require.NoError(t, db.Table("tax_selection").Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}
