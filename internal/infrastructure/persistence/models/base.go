package models

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with the actor stamps and the version used for
// optimistic locking.
type AggregateModel struct {
	BaseModel
	CreatedBy string `gorm:"type:varchar(100);not null;default:''"`
	UpdatedBy string `gorm:"type:varchar(100);not null;default:''"`
	Version   int    `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a *shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.CreatedBy = a.CreatedBy
	m.UpdatedBy = a.UpdatedBy
	m.Version = a.Version
}

// ToAggregateRoot rebuilds a clean domain BaseAggregateRoot from the stored row
func (m *AggregateModel) ToAggregateRoot() shared.BaseAggregateRoot {
	a := shared.BaseAggregateRoot{
		BaseEntity:  m.BaseModel.ToDomain(),
		AuditStamps: shared.AuditStamps{CreatedBy: m.CreatedBy, UpdatedBy: m.UpdatedBy},
		Version:     m.Version,
	}
	a.MarkClean()
	return a
}
