package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an event that occurred in the domain
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	// Actor returns the opaque identifier of whoever caused the event
	Actor() string
	// Changes returns the field-level diff carried by the event, if any
	Changes() []FieldDiff
}

// FieldDiff is a single before/after pair recorded for auditing
type FieldDiff struct {
	Field string `json:"field"`
	Old   any    `json:"old,omitempty"`
	New   any    `json:"new,omitempty"`
}

// Diff builds a FieldDiff
func Diff(field string, oldValue, newValue any) FieldDiff {
	return FieldDiff{Field: field, Old: oldValue, New: newValue}
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID         uuid.UUID   `json:"id"`
	Type       string      `json:"type"`
	Timestamp  time.Time   `json:"timestamp"`
	AggID      uuid.UUID   `json:"aggregate_id"`
	AggType    string      `json:"aggregate_type"`
	ActorValue string      `json:"actor"`
	Diffs      []FieldDiff `json:"changes,omitempty"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that produced this event
func (e *BaseDomainEvent) AggregateID() uuid.UUID {
	return e.AggID
}

// AggregateType returns the type of the aggregate
func (e *BaseDomainEvent) AggregateType() string {
	return e.AggType
}

// Actor returns the actor that caused the event
func (e *BaseDomainEvent) Actor() string {
	return e.ActorValue
}

// Changes returns the recorded field diffs
func (e *BaseDomainEvent) Changes() []FieldDiff {
	return e.Diffs
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID, actor string, diffs ...FieldDiff) BaseDomainEvent {
	return BaseDomainEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Timestamp:  time.Now(),
		AggID:      aggID,
		AggType:    aggType,
		ActorValue: actor,
		Diffs:      diffs,
	}
}
