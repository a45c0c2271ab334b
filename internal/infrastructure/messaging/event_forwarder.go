package messaging

import (
	"context"
	"fmt"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/infrastructure/event"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Header names set on every forwarded message
const (
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
	HeaderEventID       = "event_id"
)

// EventForwarder copies every domain event to Kafka. Messages are keyed by
// aggregate ID so the events of one order or stock record stay in order
// within a partition.
type EventForwarder struct {
	producer   MessageProducer
	serializer *event.EventSerializer
	logger     *zap.Logger
}

// NewEventForwarder creates an EventForwarder
func NewEventForwarder(producer MessageProducer, serializer *event.EventSerializer, logger *zap.Logger) *EventForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventForwarder{
		producer:   producer,
		serializer: serializer,
		logger:     logger,
	}
}

// EventTypes subscribes to every event
func (f *EventForwarder) EventTypes() []string {
	return nil
}

// Handle writes the event envelope to the topic. Event types the serializer
// does not know are not published.
func (f *EventForwarder) Handle(ctx context.Context, e shared.DomainEvent) error {
	if !f.serializer.IsRegistered(e.EventType()) {
		f.logger.Warn("event type not registered for forwarding",
			zap.String("event_type", e.EventType()),
			zap.String("event_id", e.EventID().String()),
		)
		return nil
	}
	value, err := f.serializer.Wrap(e)
	if err != nil {
		return fmt.Errorf("kafka: failed to encode %s: %w", e.EventType(), err)
	}

	msg := kafka.Message{
		Key:   []byte(e.AggregateID().String()),
		Value: value,
		Time:  e.OccurredAt(),
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(e.EventType())},
			{Key: HeaderAggregateType, Value: []byte(e.AggregateType())},
			{Key: HeaderEventID, Value: []byte(e.EventID().String())},
		},
	}
	if err := f.producer.WriteMessage(ctx, msg); err != nil {
		return fmt.Errorf("kafka: failed to publish %s: %w", e.EventType(), err)
	}

	f.logger.Debug("event forwarded",
		zap.String("event_type", e.EventType()),
		zap.String("event_id", e.EventID().String()),
	)
	return nil
}

var _ shared.EventHandler = (*EventForwarder)(nil)
