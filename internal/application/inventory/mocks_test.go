package inventory

import (
	"context"
	"sync"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		events: make([]shared.DomainEvent, 0),
	}
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

// MockStockRecordRepository is a mock implementation of StockRecordRepository
type MockStockRecordRepository struct {
	mock.Mock
}

func (m *MockStockRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockRecord), args.Error(1)
}

func (m *MockStockRecordRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]inventory.StockRecord, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).([]inventory.StockRecord), args.Error(1)
}

func (m *MockStockRecordRepository) FindByLocation(ctx context.Context, locationID uuid.UUID) ([]inventory.StockRecord, error) {
	args := m.Called(ctx, locationID)
	return args.Get(0).([]inventory.StockRecord), args.Error(1)
}

func (m *MockStockRecordRepository) FindByKey(ctx context.Context, key inventory.StockKey) (*inventory.StockRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockRecord), args.Error(1)
}

func (m *MockStockRecordRepository) SumQuantity(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType) (int64, error) {
	args := m.Called(ctx, itemID, unitType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockRecordRepository) Create(ctx context.Context, record *inventory.StockRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockStockRecordRepository) SaveWithLock(ctx context.Context, record *inventory.StockRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockStockRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReservationRepository is a mock implementation of ReservationRepository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) FindByItemAndOrder(ctx context.Context, itemID, orderID uuid.UUID) (*inventory.Reservation, error) {
	args := m.Called(ctx, itemID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.Reservation, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]inventory.Reservation), args.Error(1)
}

func (m *MockReservationRepository) SumActive(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType) (int64, error) {
	args := m.Called(ctx, itemID, unitType)
	if fn, ok := args.Get(0).(func(context.Context, uuid.UUID, inventory.UnitType) int64); ok {
		return fn(ctx, itemID, unitType), args.Error(1)
	}
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReservationRepository) Create(ctx context.Context, reservation *inventory.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepository) SaveWithLock(ctx context.Context, reservation *inventory.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

// MockLocationRepository is a mock implementation of LocationRepository
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) FindLocationByCode(ctx context.Context, code string) (*catalog.Location, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Location), args.Error(1)
}

func (m *MockLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Location), args.Error(1)
}

func (m *MockLocationRepository) FindAll(ctx context.Context) ([]catalog.Location, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Location), args.Error(1)
}

func (m *MockLocationRepository) Save(ctx context.Context, location *catalog.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockLocationRepository) IndexStockRecord(ctx context.Context, locationID, stockRecordID uuid.UUID) error {
	args := m.Called(ctx, locationID, stockRecordID)
	return args.Error(0)
}

func (m *MockLocationRepository) UnindexStockRecord(ctx context.Context, locationID, stockRecordID uuid.UUID) error {
	args := m.Called(ctx, locationID, stockRecordID)
	return args.Error(0)
}

func (m *MockLocationRepository) IndexedStockRecords(ctx context.Context, locationID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, locationID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockItemReader is a mock implementation of catalog.ItemReader
type MockItemReader struct {
	mock.Mock
}

func (m *MockItemReader) GetItem(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemReader) GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]*catalog.Item), args.Error(1)
}
