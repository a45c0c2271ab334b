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

// GormTaxConfigRepository implements TaxConfigRepository using GORM
type GormTaxConfigRepository struct {
	db *gorm.DB
}

// NewGormTaxConfigRepository creates a new GormTaxConfigRepository
func NewGormTaxConfigRepository(db *gorm.DB) *GormTaxConfigRepository {
	return &GormTaxConfigRepository{db: db}
}

// FindByID finds an active tax configuration by ID
func (r *GormTaxConfigRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.TaxConfig, error) {
	var model models.TaxConfigModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND lifecycle = ?", id, shared.LifecycleActive).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists active tax configurations, newest first
func (r *GormTaxConfigRepository) FindAll(ctx context.Context) ([]catalog.TaxConfig, error) {
	var rows []models.TaxConfigModel
	if err := r.db.WithContext(ctx).
		Where("lifecycle = ?", shared.LifecycleActive).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.TaxConfig, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a tax configuration
func (r *GormTaxConfigRepository) Save(ctx context.Context, cfg *catalog.TaxConfig) error {
	model := models.TaxConfigModelFromDomain(cfg)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return translateError(err)
	}
	cfg.MarkClean()
	return nil
}

// FindSelected returns the selected configuration or NOT_FOUND
func (r *GormTaxConfigRepository) FindSelected(ctx context.Context) (*catalog.TaxConfig, error) {
	var selection models.TaxSelectionModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", models.TaxSelectionSingletonID).
		First(&selection).Error; err != nil {
		return nil, translateError(err)
	}
	return r.FindByID(ctx, selection.TaxConfigID)
}

// Select records id as the only selected configuration
func (r *GormTaxConfigRepository) Select(ctx context.Context, id uuid.UUID, actor string) error {
	selection := models.TaxSelectionModel{
		ID:          models.TaxSelectionSingletonID,
		TaxConfigID: id,
		UpdatedBy:   actor,
		UpdatedAt:   time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"tax_config_id", "updated_by", "updated_at"}),
		}).
		Create(&selection).Error
}

// Ensure GormTaxConfigRepository implements TaxConfigRepository
var _ catalog.TaxConfigRepository = (*GormTaxConfigRepository)(nil)
