package persistence

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.ItemModel{}).
		Where("lifecycle = ?", shared.LifecycleActive)
}

// GetItem returns an active item or NOT_FOUND
func (r *GormItemRepository) GetItem(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var model models.ItemModel
	if err := r.active(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// GetItems returns the active items among ids keyed by id
func (r *GormItemRepository) GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error) {
	out := make(map[uuid.UUID]*catalog.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.ItemModel
	if err := r.active(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		item := rows[i].ToDomain()
		out[item.ID] = item
	}
	return out, nil
}

// FindAll lists active items and returns the total count
func (r *GormItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Item, int64, error) {
	var total int64
	if err := r.active(ctx).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ItemModel
	if err := applyPage(r.active(ctx), filter, ItemSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]catalog.Item, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// Save creates or updates an item. A duplicate SKU fails with CONFLICT.
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	model := models.ItemModelFromDomain(item)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return translateError(err)
	}
	item.MarkClean()
	return nil
}

// Ensure GormItemRepository implements ItemRepository
var _ catalog.ItemRepository = (*GormItemRepository)(nil)
