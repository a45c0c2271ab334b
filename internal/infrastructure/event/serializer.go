package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// Envelope is the wire form of a domain event. Metadata is lifted out of the
// payload so consumers can route without knowing the concrete event type.
type Envelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	Actor         string          `json:"actor"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// EventSerializer encodes domain events for consumers outside the process.
// Each event type is registered with the concrete type that carries it.
type EventSerializer struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewEventSerializer creates a serializer with no registered types
func NewEventSerializer() *EventSerializer {
	return &EventSerializer{
		types: make(map[string]reflect.Type),
	}
}

// Register binds eventType to the concrete type of eventInstance
func (s *EventSerializer) Register(eventType string, eventInstance shared.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := reflect.TypeOf(eventInstance)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.types[eventType] = t
}

// Serialize encodes the event payload
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Wrap builds the envelope of an event and encodes it. A registered event
// type must arrive as the concrete type it was registered with.
func (s *EventSerializer) Wrap(event shared.DomainEvent) ([]byte, error) {
	if err := s.checkType(event); err != nil {
		return nil, err
	}
	payload, err := s.Serialize(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return json.Marshal(Envelope{
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		Actor:         event.Actor(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	})
}

func (s *EventSerializer) checkType(event shared.DomainEvent) error {
	s.mu.RLock()
	want, ok := s.types[event.EventType()]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	got := reflect.TypeOf(event)
	if got.Kind() == reflect.Ptr {
		got = got.Elem()
	}
	if got != want {
		return fmt.Errorf("event type %s is registered as %s, got %s", event.EventType(), want, got)
	}
	return nil
}

// IsRegistered reports whether eventType has a registered concrete type
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.types[eventType]
	return ok
}

// RegisteredTypes returns the registered event types in sorted order
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.types))
	for t := range s.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
