package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AuditStamps records which actor created and last modified a record.
// Actors are opaque strings supplied by the caller.
type AuditStamps struct {
	CreatedBy string
	UpdatedBy string
}

// Lifecycle replaces boolean soft-delete flags with an explicit state
type Lifecycle string

const (
	LifecycleActive   Lifecycle = "active"
	LifecycleInactive Lifecycle = "inactive"
)

// IsActive returns true if the lifecycle is active
func (l Lifecycle) IsActive() bool {
	return l == LifecycleActive
}

// IsValid checks if the lifecycle value is known
func (l Lifecycle) IsValid() bool {
	return l == LifecycleActive || l == LifecycleInactive
}
