package persistence

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByID finds a cart by ID
func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Cart, error) {
	var model models.CartModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a new cart with its lines
func (r *GormCartRepository) Create(ctx context.Context, cart *trade.Cart) error {
	model := models.CartModelFromDomain(cart)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		return translateError(err)
	}
	cart.MarkClean()
	return nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormCartRepository) SaveWithLock(ctx context.Context, cart *trade.Cart) error {
	model := models.CartModelFromDomain(cart)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := casUpdate(ctx, tx, &models.CartModel{}, &cart.BaseAggregateRoot, map[string]any{
			"client_id": model.ClientID,
			"discount":  model.Discount,
			"subtotal":  model.Subtotal,
			"total_tax": model.TotalTax,
			"status":    model.Status,
			"order_id":  model.OrderID,
		}); err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			return tx.Create(&model.Items).Error
		}
		return nil
	})
	if err != nil {
		return translateError(err)
	}
	cart.MarkClean()
	return nil
}

// Ensure GormCartRepository implements CartRepository
var _ trade.CartRepository = (*GormCartRepository)(nil)
