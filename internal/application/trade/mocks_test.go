package trade

import (
	"context"
	"io"
	"sync"
	"time"

	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDIncludingInactive(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number int64) (*trade.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]trade.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindNeedingReservation(ctx context.Context, afterNumber int64, limit int) ([]trade.Order, error) {
	args := m.Called(ctx, afterNumber, limit)
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) NextOrderNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockCartRepository is a mock implementation of trade.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Cart), args.Error(1)
}

func (m *MockCartRepository) Create(ctx context.Context, cart *trade.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockCartRepository) SaveWithLock(ctx context.Context, cart *trade.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

// stubItemReader serves a fixed set of catalog items
type stubItemReader struct {
	items map[uuid.UUID]*catalog.Item
}

func (r *stubItemReader) GetItem(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	if item, ok := r.items[id]; ok {
		return item, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubItemReader) GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error) {
	out := make(map[uuid.UUID]*catalog.Item, len(ids))
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

// stubTaxReader returns a fixed configuration
type stubTaxReader struct {
	cfg *catalog.TaxConfig
}

func (r stubTaxReader) Current() *catalog.TaxConfig {
	return r.cfg
}

// MockLocationResolver is a mock implementation of catalog.LocationResolver
type MockLocationResolver struct {
	mock.Mock
}

func (m *MockLocationResolver) FindLocationByCode(ctx context.Context, code string) (*catalog.Location, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Location), args.Error(1)
}

// MockStockLedger is a mock implementation of StockLedger
type MockStockLedger struct {
	mock.Mock
}

func (m *MockStockLedger) RemoveFifoMany(ctx context.Context, inputs []inventoryapp.RemoveFifoInput) ([]inventoryapp.RemovalOutcome, error) {
	args := m.Called(ctx, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventoryapp.RemovalOutcome), args.Error(1)
}

func (m *MockStockLedger) CommitPick(ctx context.Context, orderID uuid.UUID, lines []inventoryapp.PickedLine, actor string) error {
	args := m.Called(ctx, orderID, lines, actor)
	return args.Error(0)
}

func (m *MockStockLedger) Restock(ctx context.Context, lines []inventoryapp.PickedLine, actor string) error {
	args := m.Called(ctx, lines, actor)
	return args.Error(0)
}

// MockReservationLedger is a mock implementation of ReservationLedger
type MockReservationLedger struct {
	mock.Mock
}

func (m *MockReservationLedger) Reserve(ctx context.Context, in inventoryapp.ReserveInput) (*inventoryapp.ReservationResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.ReservationResponse), args.Error(1)
}

func (m *MockReservationLedger) EnsureReserved(ctx context.Context, in inventoryapp.ReserveInput) (bool, error) {
	args := m.Called(ctx, in)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationLedger) Release(ctx context.Context, orderID uuid.UUID, actor string) (int, error) {
	args := m.Called(ctx, orderID, actor)
	return args.Int(0), args.Error(1)
}

func (m *MockReservationLedger) Availability(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType) (int64, error) {
	args := m.Called(ctx, itemID, unitType)
	return args.Get(0).(int64), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return nil
}

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	args := m.Called(ctx, key, contentType, body, size)
	return args.Error(0)
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockObjectStorage) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
