package shared

import "time"

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	AuditStamps
	Version      int
	dirty        bool
	domainEvents []DomainEvent
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// Touch stamps the modifying actor and UpdatedAt. The version is bumped on
// the first change after the aggregate was loaded or saved, so one unit of
// work maps to one version step.
func (a *BaseAggregateRoot) Touch(actor string) {
	a.UpdatedBy = actor
	a.UpdatedAt = time.Now()
	if !a.dirty {
		a.IncrementVersion()
		a.dirty = true
	}
}

// MarkClean is called by repositories after the aggregate is loaded or saved
func (a *BaseAggregateRoot) MarkClean() {
	a.dirty = false
}

// ExpectedVersion returns the version the stored row must still carry for a
// compare-and-swap write of this aggregate to succeed
func (a *BaseAggregateRoot) ExpectedVersion() int {
	if a.dirty {
		return a.Version - 1
	}
	return a.Version
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new base aggregate root stamped with its creator
func NewBaseAggregateRoot(actor string) BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		AuditStamps:  AuditStamps{CreatedBy: actor, UpdatedBy: actor},
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}
