package persistence

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/audit"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements the audit Repository using GORM
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create stores an audit entry. An entry for an event already stored fails
// with CONFLICT.
func (r *GormAuditLogRepository) Create(ctx context.Context, log *audit.Log) error {
	model, err := models.AuditLogModelFromDomain(log)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// FindAll lists audit entries matching the filter and returns the total count
func (r *GormAuditLogRepository) FindAll(ctx context.Context, filter audit.Filter) ([]audit.Log, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.AuditLogModel{})
		if filter.EntityType != "" {
			query = query.Where("entity_type = ?", filter.EntityType)
		}
		if filter.EntityID != nil {
			query = query.Where("entity_id = ?", *filter.EntityID)
		}
		if filter.Actor != "" {
			query = query.Where("actor = ?", filter.Actor)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.AuditLogModel
	if err := applyPage(base(), filter.Filter, AuditLogSortFields, "occurred_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]audit.Log, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Ensure GormAuditLogRepository implements audit.Repository
var _ audit.Repository = (*GormAuditLogRepository)(nil)
