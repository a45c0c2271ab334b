package persistence

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockRecordRepository implements StockRecordRepository using GORM
type GormStockRecordRepository struct {
	db *gorm.DB
}

// NewGormStockRecordRepository creates a new GormStockRecordRepository
func NewGormStockRecordRepository(db *gorm.DB) *GormStockRecordRepository {
	return &GormStockRecordRepository{db: db}
}

func (r *GormStockRecordRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.StockRecordModel{}).
		Where("lifecycle = ?", shared.LifecycleActive)
}

// FindByID finds an active stock record by ID
func (r *GormStockRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockRecord, error) {
	var model models.StockRecordModel
	if err := r.active(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByItem lists the active records of an item, oldest first
func (r *GormStockRecordRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]inventory.StockRecord, error) {
	var rows []models.StockRecordModel
	if err := r.active(ctx).
		Where("item_id = ?", itemID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return stockRecordsToDomain(rows), nil
}

// FindByLocation lists the active records at a location, oldest first
func (r *GormStockRecordRepository) FindByLocation(ctx context.Context, locationID uuid.UUID) ([]inventory.StockRecord, error) {
	var rows []models.StockRecordModel
	if err := r.active(ctx).
		Where("location_id = ?", locationID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return stockRecordsToDomain(rows), nil
}

// FindByKey finds the oldest active record occupying an (item, location, type) slot
func (r *GormStockRecordRepository) FindByKey(ctx context.Context, key inventory.StockKey) (*inventory.StockRecord, error) {
	query := r.active(ctx).Where("item_id = ? AND unit_type = ?", key.ItemID, string(key.UnitType))
	if key.LocationID == uuid.Nil {
		query = query.Where("location_id IS NULL")
	} else {
		query = query.Where("location_id = ?", key.LocationID)
	}

	var model models.StockRecordModel
	if err := query.Order("created_at ASC, id ASC").First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// SumQuantity sums the active quantity of an item in one unit type
func (r *GormStockRecordRepository) SumQuantity(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType) (int64, error) {
	var total int64
	if err := r.active(ctx).
		Where("item_id = ? AND unit_type = ?", itemID, string(unitType)).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Create inserts a new record
func (r *GormStockRecordRepository) Create(ctx context.Context, record *inventory.StockRecord) error {
	model := models.StockRecordModelFromDomain(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	record.MarkClean()
	return nil
}

// SaveWithLock updates a record if its stored version is unchanged
func (r *GormStockRecordRepository) SaveWithLock(ctx context.Context, record *inventory.StockRecord) error {
	if err := casUpdate(ctx, r.db, &models.StockRecordModel{}, &record.BaseAggregateRoot, map[string]any{
		"location_id": record.LocationID,
		"quantity":    record.Quantity,
		"unit_cost":   record.UnitCost,
		"origin":      string(record.Origin),
		"lifecycle":   string(record.Lifecycle),
	}); err != nil {
		return err
	}
	record.MarkClean()
	return nil
}

// Delete physically removes a record
func (r *GormStockRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.StockRecordModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func stockRecordsToDomain(rows []models.StockRecordModel) []inventory.StockRecord {
	out := make([]inventory.StockRecord, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormStockRecordRepository implements StockRecordRepository
var _ inventory.StockRecordRepository = (*GormStockRecordRepository)(nil)
