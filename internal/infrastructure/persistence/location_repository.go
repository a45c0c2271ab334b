package persistence

import (
	"context"
	"time"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLocationRepository implements LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

func (r *GormLocationRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.LocationModel{}).
		Where("lifecycle = ?", shared.LifecycleActive)
}

// FindLocationByCode returns an active location or NOT_FOUND
func (r *GormLocationRepository) FindLocationByCode(ctx context.Context, code string) (*catalog.Location, error) {
	var model models.LocationModel
	if err := r.active(ctx).
		Where("code = ?", catalog.NormalizeLocationCode(code)).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByID finds an active location by ID
func (r *GormLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Location, error) {
	var model models.LocationModel
	if err := r.active(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists active locations ordered by code
func (r *GormLocationRepository) FindAll(ctx context.Context) ([]catalog.Location, error) {
	var rows []models.LocationModel
	if err := r.active(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.Location, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a location. A duplicate code fails with CONFLICT.
func (r *GormLocationRepository) Save(ctx context.Context, location *catalog.Location) error {
	model := models.LocationModelFromDomain(location)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return translateError(err)
	}
	location.MarkClean()
	return nil
}

// IndexStockRecord adds a stock record to the location's item index
func (r *GormLocationRepository) IndexStockRecord(ctx context.Context, locationID, stockRecordID uuid.UUID) error {
	row := models.LocationItemModel{
		LocationID:    locationID,
		StockRecordID: stockRecordID,
		CreatedAt:     time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

// UnindexStockRecord removes a stock record from the location's item index
func (r *GormLocationRepository) UnindexStockRecord(ctx context.Context, locationID, stockRecordID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("location_id = ? AND stock_record_id = ?", locationID, stockRecordID).
		Delete(&models.LocationItemModel{}).Error
}

// IndexedStockRecords lists the stock records indexed at a location
func (r *GormLocationRepository) IndexedStockRecords(ctx context.Context, locationID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.LocationItemModel{}).
		Where("location_id = ?", locationID).
		Order("created_at ASC").
		Pluck("stock_record_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Ensure GormLocationRepository implements LocationRepository
var _ catalog.LocationRepository = (*GormLocationRepository)(nil)
