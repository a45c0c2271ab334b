package catalog

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// ItemReader is the read-only catalog accessor used by pricing and fulfillment
type ItemReader interface {
	// GetItem returns an active item or NOT_FOUND
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	// GetItems returns the active items among ids keyed by id; missing ids are absent
	GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Item, error)
}

// ItemRepository persists catalog items
type ItemRepository interface {
	ItemReader
	FindAll(ctx context.Context, filter shared.Filter) ([]Item, int64, error)
	Save(ctx context.Context, item *Item) error
}

// LocationResolver resolves location codes to locations
type LocationResolver interface {
	// FindLocationByCode returns an active location or NOT_FOUND
	FindLocationByCode(ctx context.Context, code string) (*Location, error)
}

// LocationRepository persists locations and their item index
type LocationRepository interface {
	LocationResolver
	FindByID(ctx context.Context, id uuid.UUID) (*Location, error)
	FindAll(ctx context.Context) ([]Location, error)
	Save(ctx context.Context, location *Location) error
	// IndexStockRecord adds a stock record to the location's item index; idempotent
	IndexStockRecord(ctx context.Context, locationID, stockRecordID uuid.UUID) error
	// UnindexStockRecord removes a stock record from the location's item index
	UnindexStockRecord(ctx context.Context, locationID, stockRecordID uuid.UUID) error
	// IndexedStockRecords lists the stock records indexed at a location
	IndexedStockRecords(ctx context.Context, locationID uuid.UUID) ([]uuid.UUID, error)
}

// TaxConfigReader returns the currently selected tax configuration, nil when none
type TaxConfigReader interface {
	Current() *TaxConfig
}

// TaxConfigRepository persists tax configurations and the single selection
type TaxConfigRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TaxConfig, error)
	FindAll(ctx context.Context) ([]TaxConfig, error)
	Save(ctx context.Context, cfg *TaxConfig) error
	// FindSelected returns the selected configuration or NOT_FOUND
	FindSelected(ctx context.Context) (*TaxConfig, error)
	// Select records id as the only selected configuration
	Select(ctx context.Context, id uuid.UUID, actor string) error
}
