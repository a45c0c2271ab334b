package audit

import (
	"context"
	"strings"
	"time"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// Log is one audited change to an entity, written from a domain event
type Log struct {
	ID         uuid.UUID
	EventID    uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	Action     string
	Changes    []shared.FieldDiff
	Actor      string
	OccurredAt time.Time
}

// FromEvent builds the audit entry for a domain event
func FromEvent(event shared.DomainEvent) (*Log, error) {
	if event == nil {
		return nil, shared.Invalidf("event cannot be nil")
	}
	if strings.TrimSpace(event.AggregateType()) == "" || event.AggregateID() == uuid.Nil {
		return nil, shared.Invalidf("event %s has no aggregate", event.EventType())
	}
	changes := event.Changes()
	if changes == nil {
		changes = []shared.FieldDiff{}
	}
	return &Log{
		ID:         uuid.New(),
		EventID:    event.EventID(),
		EntityType: event.AggregateType(),
		EntityID:   event.AggregateID(),
		Action:     event.EventType(),
		Changes:    changes,
		Actor:      event.Actor(),
		OccurredAt: event.OccurredAt(),
	}, nil
}

// Filter narrows an audit log query
type Filter struct {
	shared.Filter
	EntityType string
	EntityID   *uuid.UUID
	Actor      string
}

// Repository persists audit logs. Entries are append-only.
type Repository interface {
	// Create inserts an entry. A second entry for the same event returns
	// shared.ErrConflict.
	Create(ctx context.Context, log *Log) error

	// FindAll lists entries, newest first, and returns the total count
	FindAll(ctx context.Context, filter Filter) ([]Log, int64, error)
}
