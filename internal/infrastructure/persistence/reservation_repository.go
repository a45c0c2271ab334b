package persistence

import (
	"context"
	"fmt"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReservationRepository implements ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

func (r *GormReservationRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("lifecycle = ?", shared.LifecycleActive)
}

// FindByItemAndOrder finds the active reservation for an (item, order) pair
func (r *GormReservationRepository) FindByItemAndOrder(ctx context.Context, itemID, orderID uuid.UUID) (*inventory.Reservation, error) {
	var model models.ReservationModel
	if err := r.active(ctx).
		Where("item_id = ? AND order_id = ?", itemID, orderID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByOrder lists the active reservations of an order
func (r *GormReservationRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.Reservation, error) {
	var rows []models.ReservationModel
	if err := r.active(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.Reservation, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// SumActive sums the active reserved quantity of an item in one unit type
func (r *GormReservationRepository) SumActive(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType) (int64, error) {
	column, err := reservationCountColumn(unitType)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := r.active(ctx).
		Where("item_id = ?", itemID).
		Select(fmt.Sprintf("COALESCE(SUM(%s), 0)", column)).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Create inserts a new reservation. The partial unique index on active
// (item_id, order_id) turns a second active pair into CONFLICT.
func (r *GormReservationRepository) Create(ctx context.Context, reservation *inventory.Reservation) error {
	model := models.ReservationModelFromDomain(reservation)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	reservation.MarkClean()
	return nil
}

// SaveWithLock updates a reservation if its stored version is unchanged
func (r *GormReservationRepository) SaveWithLock(ctx context.Context, reservation *inventory.Reservation) error {
	if err := casUpdate(ctx, r.db, &models.ReservationModel{}, &reservation.BaseAggregateRoot, map[string]any{
		"box_count":  reservation.BoxCount,
		"unit_count": reservation.UnitCount,
		"lifecycle":  string(reservation.Lifecycle),
	}); err != nil {
		return err
	}
	reservation.MarkClean()
	return nil
}

func reservationCountColumn(unitType inventory.UnitType) (string, error) {
	switch unitType {
	case inventory.UnitTypeBox:
		return "box_count", nil
	case inventory.UnitTypeUnit:
		return "unit_count", nil
	default:
		return "", shared.Invalidf("unknown unit type %q", unitType)
	}
}

// Ensure GormReservationRepository implements ReservationRepository
var _ inventory.ReservationRepository = (*GormReservationRepository)(nil)
