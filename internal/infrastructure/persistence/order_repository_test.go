package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/payment"
	"github.com/erp/fulfillment/internal/domain/pricing"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestOrder builds a placed order paid by pix with one unit line per quantity
func newTestOrder(t *testing.T, number int64, channel trade.Channel, quantities ...int64) *trade.Order {
	t.Helper()
	items := make(map[uuid.UUID]*catalog.Item)
	lines := make([]trade.LineItem, 0, len(quantities))
	for _, q := range quantities {
		item, err := catalog.NewItem("SKU-"+uuid.NewString()[:8], "Item", decimal.NewFromInt(10), 12, "seller")
		require.NoError(t, err)
		items[item.ID] = item
		line, err := trade.NewLineItem(item.ID, q, inventory.UnitTypeUnit)
		require.NoError(t, err)
		lines = append(lines, *line)
	}
	inputs := make([]pricing.LineInput, len(lines))
	for i := range lines {
		inputs[i] = lines[i].PricingInput()
	}
	quote, err := pricing.PriceLines(inputs, nil, items)
	require.NoError(t, err)
	tenders := []payment.Tender{{Type: payment.TypePix, Amount: quote.Subtotal}}
	total, err := pricing.OrderTotal(quote.Subtotal, decimal.Zero, tenders)
	require.NoError(t, err)
	tenders[0].Amount = total
	settlement, err := payment.Validate(tenders, total)
	require.NoError(t, err)

	o, err := trade.NewOrder(trade.OrderParams{
		OrderNumber: number,
		SellerID:    uuid.New(),
		Channel:     channel,
		Lines:       lines,
		Quote:       quote,
		Discount:    decimal.Zero,
		Total:       total,
		Tenders:     tenders,
		Settlement:  settlement,
		Actor:       "seller",
	})
	require.NoError(t, err)
	require.NoError(t, o.MarkPlaced("seller"))
	return o
}

func TestGormOrderRepository_NextOrderNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	next, err := repo.NextOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, trade.FirstOrderNumber, next)

	require.NoError(t, repo.Create(ctx, newTestOrder(t, next, trade.ChannelOnline, 1)))
	next, err = repo.NextOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, trade.FirstOrderNumber+1, next)
}

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	order := newTestOrder(t, trade.FirstOrderNumber, trade.ChannelOnline, 3, 1, 2)
	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, found.OrderNumber)
	assert.Equal(t, trade.OrderStatusAwaitingPayment, found.Status)
	require.Len(t, found.Items, 3)
	for i := range order.Items {
		assert.Equal(t, order.Items[i].ItemID, found.Items[i].ItemID)
		assert.Equal(t, order.Items[i].Quantity, found.Items[i].Quantity)
	}
	require.Len(t, found.Payments, 1)
	assert.Equal(t, payment.TypePix, found.Payments[0].Type)
	assert.True(t, found.Total.Equal(order.Total))

	byNumber, err := repo.FindByNumber(ctx, trade.FirstOrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, byNumber.ID)

	dup := newTestOrder(t, trade.FirstOrderNumber, trade.ChannelOnline, 1)
	assert.True(t, errors.Is(repo.Create(ctx, dup), shared.ErrConflict))
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	order := newTestOrder(t, trade.FirstOrderNumber, trade.ChannelOnline, 2)
	require.NoError(t, repo.Create(ctx, order))

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	stale, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)

	require.NoError(t, loaded.ConfirmPayment("manager"))
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	stored, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusPicking, stored.Status)
	assert.Equal(t, loaded.Version, stored.Version)
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Payments[0].IsPaid())

	require.NoError(t, stale.Cancel("manager"))
	assert.True(t, errors.Is(repo.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict))
}

func TestGormOrderRepository_Listing(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	online1 := newTestOrder(t, trade.FirstOrderNumber, trade.ChannelOnline, 1)
	walkIn := newTestOrder(t, trade.FirstOrderNumber+1, trade.ChannelWalkIn, 1)
	online2 := newTestOrder(t, trade.FirstOrderNumber+2, trade.ChannelOnline, 1)
	cancelled := newTestOrder(t, trade.FirstOrderNumber+3, trade.ChannelOnline, 1)
	require.NoError(t, cancelled.Cancel("manager"))
	for _, o := range []*trade.Order{online1, walkIn, online2, cancelled} {
		require.NoError(t, repo.Create(ctx, o))
	}

	t.Run("orders needing reservation", func(t *testing.T) {
		pending, err := repo.FindNeedingReservation(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, online1.ID, pending[0].ID)
		assert.Equal(t, online2.ID, pending[1].ID)

		after, err := repo.FindNeedingReservation(ctx, online1.OrderNumber, 10)
		require.NoError(t, err)
		require.Len(t, after, 1)
		assert.Equal(t, online2.ID, after[0].ID)
	})

	t.Run("filters by channel and lifecycle", func(t *testing.T) {
		filter := trade.OrderFilter{Filter: shared.Filter{Page: 1, PageSize: 10, OrderDir: "asc"}}
		orders, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, orders, 3)

		filter.Channel = trade.ChannelWalkIn
		orders, total, err = repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, walkIn.ID, orders[0].ID)

		filter.Channel = ""
		filter.IncludeInactive = true
		filter.Status = trade.OrderStatusCancelled
		orders, total, err = repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, cancelled.ID, orders[0].ID)
	})

	t.Run("cancelled orders are hidden from active lookups", func(t *testing.T) {
		_, err := repo.FindByID(ctx, cancelled.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		found, err := repo.FindByIDIncludingInactive(ctx, cancelled.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusAwaitingPayment, found.PreviousStatus)
	})
}
