package catalog

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockItemRepository is a mock implementation of catalog.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) GetItem(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Item, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Item), args.Get(1).(int64), args.Error(2)
}

func (m *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockLocationRepository is a mock implementation of catalog.LocationRepository
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

// MockTaxConfigRepository is a mock implementation of catalog.TaxConfigRepository
type MockTaxConfigRepository struct {
	mock.Mock
}

func (m *MockTaxConfigRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.TaxConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.TaxConfig), args.Error(1)
}

func (m *MockTaxConfigRepository) FindAll(ctx context.Context) ([]catalog.TaxConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.TaxConfig), args.Error(1)
}

func (m *MockTaxConfigRepository) Save(ctx context.Context, cfg *catalog.TaxConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockTaxConfigRepository) FindSelected(ctx context.Context) (*catalog.TaxConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.TaxConfig), args.Error(1)
}

func (m *MockTaxConfigRepository) Select(ctx context.Context, id uuid.UUID, actor string) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}
