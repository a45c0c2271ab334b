package inventory

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/inventory"
)

// TransactionScope provides transactional access to the stock repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories touched by a
// multi-record stock mutation. All repositories returned share the same
// underlying database transaction.
//
// Aggregate boundary notes:
//   - StockRepo: every StockRecord change goes through SaveWithLock, so a
//     concurrent writer surfaces as CONCURRENCY_CONFLICT and rolls the whole
//     unit of work back.
//   - ReservationRepo: reservations are released in the same transaction as
//     the stock they promised leaves the ledger.
//   - LocationRepo: only the location item index is written here.
type TransactionalRepositories interface {
	// StockRepo returns the stock record repository scoped to the current transaction
	StockRepo() inventory.StockRecordRepository
	// ReservationRepo returns the reservation repository scoped to the current transaction
	ReservationRepo() inventory.ReservationRepository
	// LocationRepo returns the location repository scoped to the current transaction
	LocationRepo() catalog.LocationRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	stockRepo       inventory.StockRecordRepository
	reservationRepo inventory.ReservationRepository
	locationRepo    catalog.LocationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	stockRepo inventory.StockRecordRepository,
	reservationRepo inventory.ReservationRepository,
	locationRepo catalog.LocationRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockRepo:       stockRepo,
		reservationRepo: reservationRepo,
		locationRepo:    locationRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockRepo returns the stock record repository.
func (s *NoOpTransactionScope) StockRepo() inventory.StockRecordRepository {
	return s.stockRepo
}

// ReservationRepo returns the reservation repository.
func (s *NoOpTransactionScope) ReservationRepo() inventory.ReservationRepository {
	return s.reservationRepo
}

// LocationRepo returns the location repository.
func (s *NoOpTransactionScope) LocationRepo() catalog.LocationRepository {
	return s.locationRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
