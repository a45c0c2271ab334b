package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCartRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCartRepository(setupTestDB(t))

	cart, err := trade.NewCart(uuid.New(), nil, "seller")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, cart))

	loaded, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	stale, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)

	first, second := uuid.New(), uuid.New()
	_, err = loaded.AddLine(first, 2, inventory.UnitTypeUnit, "seller")
	require.NoError(t, err)
	_, err = loaded.AddLine(second, 1, inventory.UnitTypeBox, "seller")
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	stored, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, first, stored.Items[0].ItemID)
	assert.Equal(t, inventory.UnitTypeBox, stored.Items[1].UnitType)

	require.NoError(t, stored.RemoveLine(first, inventory.UnitTypeUnit, "seller"))
	require.NoError(t, repo.SaveWithLock(ctx, stored))
	stored, err = repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, second, stored.Items[0].ItemID)

	require.NoError(t, stale.Cancel("seller"))
	assert.True(t, errors.Is(repo.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
