package trade

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderFilter narrows an order listing
type OrderFilter struct {
	shared.Filter
	Status  OrderStatus
	Channel Channel
	// IncludeInactive also lists cancelled orders
	IncludeInactive bool
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an active order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDIncludingInactive finds an order by ID regardless of lifecycle
	FindByIDIncludingInactive(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByNumber finds an active order by its order number
	FindByNumber(ctx context.Context, number int64) (*Order, error)

	// FindAll lists orders matching the filter and returns the total count
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)

	// FindNeedingReservation lists active online orders whose stock was not
	// yet taken, ordered by order number, starting after afterNumber
	FindNeedingReservation(ctx context.Context, afterNumber int64, limit int) ([]Order, error)

	// NextOrderNumber returns the number the next order should carry
	NextOrderNumber(ctx context.Context) (int64, error)

	// Create inserts a new order with its lines and receipts. A duplicate
	// order number fails with CONFLICT.
	Create(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *Order) error
}

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	// FindByID finds a cart by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)

	// Create inserts a new cart
	Create(ctx context.Context, cart *Cart) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, cart *Cart) error
}
