package persistence

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// withLines preloads lines and receipts in their stored order
func withLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// FindByID finds an active order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := withLines(r.db.WithContext(ctx)).
		Where("id = ? AND lifecycle = ?", id, shared.LifecycleActive).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDIncludingInactive finds an order by ID regardless of lifecycle
func (r *GormOrderRepository) FindByIDIncludingInactive(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := withLines(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an active order by its order number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number int64) (*trade.Order, error) {
	var model models.OrderModel
	if err := withLines(r.db.WithContext(ctx)).
		Where("order_number = ? AND lifecycle = ?", number, shared.LifecycleActive).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists orders matching the filter and returns the total count
func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.OrderModel{})
		if !filter.IncludeInactive {
			query = query.Where("lifecycle = ?", shared.LifecycleActive)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", string(filter.Status))
		}
		if filter.Channel != "" {
			query = query.Where("channel = ?", string(filter.Channel))
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	if err := applyPage(withLines(base()), filter.Filter, OrderSortFields, "order_number").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return ordersToDomain(rows), total, nil
}

// FindNeedingReservation lists active online orders whose stock was not yet
// taken, ordered by order number, starting after afterNumber
func (r *GormOrderRepository) FindNeedingReservation(ctx context.Context, afterNumber int64, limit int) ([]trade.Order, error) {
	var rows []models.OrderModel
	if err := withLines(r.db.WithContext(ctx)).
		Where("lifecycle = ? AND channel = ? AND stock_committed = ?", shared.LifecycleActive, string(trade.ChannelOnline), false).
		Where("status <> ?", string(trade.OrderStatusCancelled)).
		Where("order_number > ?", afterNumber).
		Order("order_number ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return ordersToDomain(rows), nil
}

// NextOrderNumber returns the number the next order should carry. The
// sequence starts at FirstOrderNumber; the unique index on order_number
// rejects a number taken by a concurrent placement.
func (r *GormOrderRepository) NextOrderNumber(ctx context.Context) (int64, error) {
	var last int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("COALESCE(MAX(order_number), 0)").
		Scan(&last).Error; err != nil {
		return 0, err
	}
	if last < trade.FirstOrderNumber {
		return trade.FirstOrderNumber, nil
	}
	return last + 1, nil
}

// Create inserts a new order with its lines and receipts. A duplicate order
// number fails with CONFLICT.
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		return translateError(err)
	}
	order.MarkClean()
	return nil
}

// SaveWithLock saves with optimistic locking (version check). Lines and
// receipts are rewritten with the order.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := casUpdate(ctx, tx, &models.OrderModel{}, &order.BaseAggregateRoot, map[string]any{
			"client_id":        model.ClientID,
			"delivery_type":    model.DeliveryType,
			"discount":         model.Discount,
			"subtotal":         model.Subtotal,
			"total_tax":        model.TotalTax,
			"total":            model.Total,
			"total_paid":       model.TotalPaid,
			"change_due":       model.Change,
			"status":           model.Status,
			"previous_status":  model.PreviousStatus,
			"stock_committed":  model.StockCommitted,
			"dock":             model.Dock,
			"observation":      model.Observation,
			"proof_of_payment": model.ProofOfPayment,
			"lifecycle":        model.Lifecycle,
			"picked_at":        model.PickedAt,
			"verified_at":      model.VerifiedAt,
			"dispatched_at":    model.DispatchedAt,
			"delivered_at":     model.DeliveredAt,
			"cancelled_at":     model.CancelledAt,
		}); err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.PaymentReceiptModel{}).Error; err != nil {
			return err
		}
		if len(model.Payments) > 0 {
			if err := tx.Create(&model.Payments).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return translateError(err)
	}
	order.MarkClean()
	return nil
}

func ordersToDomain(rows []models.OrderModel) []trade.Order {
	out := make([]trade.Order, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
