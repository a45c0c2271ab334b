package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogapp "github.com/erp/fulfillment/internal/application/catalog"
	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/payment"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/erp/fulfillment/internal/infrastructure/persistence"
)

// Actor is recorded on everything the fixture writes
const Actor = "op-test"

// Services holds the catalog, inventory and fulfillment services over one
// database, sharing one locker the way the server wires them.
type Services struct {
	DB           *gorm.DB
	Locker       *inventoryapp.KeyedLocker
	Orders       trade.OrderRepository
	Items        *catalogapp.ItemService
	Locations    *catalogapp.LocationService
	Stock        *inventoryapp.StockService
	Reservations *inventoryapp.ReservationService
	Fulfillment  *tradeapp.FulfillmentService
}

type servicesOptions struct {
	wrapOrders func(trade.OrderRepository) trade.OrderRepository
	logger     *zap.Logger
}

// ServicesOption configures NewServices
type ServicesOption func(*servicesOptions)

// WithOrderRepository wraps the order repository the fulfillment service uses
func WithOrderRepository(wrap func(trade.OrderRepository) trade.OrderRepository) ServicesOption {
	return func(o *servicesOptions) { o.wrapOrders = wrap }
}

// WithLogger sets the logger of every service
func WithLogger(logger *zap.Logger) ServicesOption {
	return func(o *servicesOptions) { o.logger = logger }
}

// NewServices wires the services onto db
func NewServices(t *testing.T, db *gorm.DB, opts ...ServicesOption) *Services {
	t.Helper()

	o := servicesOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	itemRepo := persistence.NewGormItemRepository(db)
	locationRepo := persistence.NewGormLocationRepository(db)
	stockRepo := persistence.NewGormStockRecordRepository(db)
	resRepo := persistence.NewGormReservationRepository(db)
	var orderRepo trade.OrderRepository = persistence.NewGormOrderRepository(db)
	if o.wrapOrders != nil {
		orderRepo = o.wrapOrders(orderRepo)
	}

	taxSvc := catalogapp.NewTaxConfigService(persistence.NewGormTaxConfigRepository(db), o.logger)
	require.NoError(t, taxSvc.Load(context.Background()))

	locker := inventoryapp.NewKeyedLocker()
	stockSvc := inventoryapp.NewStockService(stockRepo, locationRepo, itemRepo,
		persistence.NewGormTransactionScope(db), locker, o.logger)
	resSvc := inventoryapp.NewReservationService(resRepo, stockRepo, locker, o.logger)
	fulfillment := tradeapp.NewFulfillmentService(orderRepo, persistence.NewGormCartRepository(db),
		itemRepo, taxSvc, locationRepo, stockSvc, resSvc, o.logger)
	fulfillment.SetLocker(locker)

	return &Services{
		DB:           db,
		Locker:       locker,
		Orders:       orderRepo,
		Items:        catalogapp.NewItemService(itemRepo),
		Locations:    catalogapp.NewLocationService(locationRepo),
		Stock:        stockSvc,
		Reservations: resSvc,
		Fulfillment:  fulfillment,
	}
}

// StockUnits creates an item, a location with the given code and qty loose
// units shelved there. It returns the item ID.
func (s *Services) StockUnits(t *testing.T, code string, qty int64) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	item, err := s.Items.Create(ctx, catalogapp.CreateItemRequest{
		SKU:         "SKU-" + uuid.NewString()[:8],
		Name:        "Mineral water 1.5l",
		Price:       decimal.NewFromInt(3),
		UnitsPerBox: 6,
	}, Actor)
	require.NoError(t, err)

	_, err = s.Locations.Create(ctx, catalogapp.CreateLocationRequest{Code: code}, Actor)
	require.NoError(t, err)

	rec, err := s.Stock.ReceivePurchase(ctx, inventoryapp.ReceiveInput{
		ItemID:   item.ID,
		UnitType: inventory.UnitTypeUnit,
		Quantity: qty,
		UnitCost: decimal.NewFromInt(1),
		Actor:    Actor,
	})
	require.NoError(t, err)

	_, err = s.Stock.Shelve(ctx, inventoryapp.ShelveInput{RecordID: rec.ID, LocationCode: code, Actor: Actor})
	require.NoError(t, err)
	return item.ID
}

// PlaceOnlineOrder places a cash-paid online order for qty units of the
// item. The order lands in separacao with its lines reserved.
func (s *Services) PlaceOnlineOrder(t *testing.T, itemID uuid.UUID, qty int64) *tradeapp.OrderResponse {
	t.Helper()

	order, err := s.Fulfillment.PlaceOrder(context.Background(), tradeapp.PlaceOrderRequest{
		SellerID: uuid.New(),
		Lines:    []tradeapp.LineRequest{{ItemID: itemID, Quantity: qty, UnitType: inventory.UnitTypeUnit}},
		Channel:  trade.ChannelOnline,
		Tenders:  []payment.Tender{{Type: payment.TypeCash, Amount: decimal.NewFromInt(1000)}},
		Actor:    Actor,
	})
	require.NoError(t, err)
	require.Equal(t, trade.OrderStatusPicking, order.Status)
	return order
}

// PickAll is a pick request that scans every unit of the item at code
func PickAll(itemID uuid.UUID, code string, qty int64) tradeapp.RecordPickRequest {
	return tradeapp.RecordPickRequest{Scans: []tradeapp.PickScanRequest{{
		ItemID:       itemID,
		LocationCode: code,
		UnitType:     inventory.UnitTypeUnit,
		Quantity:     qty,
	}}}
}

// Units sums the loose units of the item on every record
func (s *Services) Units(t *testing.T, itemID uuid.UUID) int64 {
	t.Helper()

	units, err := s.Stock.QueryAvailable(context.Background(), itemID, inventory.UnitTypeUnit)
	require.NoError(t, err)
	return units
}

// Reserved sums what the order holds in reservations
func (s *Services) Reserved(t *testing.T, orderID uuid.UUID) int64 {
	t.Helper()

	reservations, err := s.Reservations.ListByOrder(context.Background(), orderID)
	require.NoError(t, err)
	var total int64
	for _, r := range reservations {
		total += r.UnitCount + r.BoxCount
	}
	return total
}
