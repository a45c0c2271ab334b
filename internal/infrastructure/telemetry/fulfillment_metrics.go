package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/trade"
)

// ErrMeterNil is returned when a metrics component is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// FulfillmentMetrics counts fulfillment activity by subscribing to domain events
type FulfillmentMetrics struct {
	ordersPlaced         *Counter
	statusTransitions    *Counter
	reservationsPlaced   *Counter
	reservationsReleased *Counter
	unitsRemoved         *Counter
	eventsSeen           *Counter
}

// NewFulfillmentMetrics creates the fulfillment counters on meter
func NewFulfillmentMetrics(meter metric.Meter) (*FulfillmentMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &FulfillmentMetrics{}
	var err error
	if m.ordersPlaced, err = NewCounter(meter, "fulfillment_orders_placed_total", "Orders placed by channel", "{order}"); err != nil {
		return nil, err
	}
	if m.statusTransitions, err = NewCounter(meter, "fulfillment_order_transitions_total", "Order status transitions by target status", "{transition}"); err != nil {
		return nil, err
	}
	if m.reservationsPlaced, err = NewCounter(meter, "fulfillment_reserved_units_total", "Units reserved for orders", "{unit}"); err != nil {
		return nil, err
	}
	if m.reservationsReleased, err = NewCounter(meter, "fulfillment_reservations_released_total", "Reservations released", "{reservation}"); err != nil {
		return nil, err
	}
	if m.unitsRemoved, err = NewCounter(meter, "fulfillment_removed_units_total", "Units removed from stock", "{unit}"); err != nil {
		return nil, err
	}
	if m.eventsSeen, err = NewCounter(meter, "fulfillment_domain_events_total", "Domain events observed by type", "{event}"); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes subscribes to every event
func (m *FulfillmentMetrics) EventTypes() []string {
	return nil
}

// Handle updates the counters for event
func (m *FulfillmentMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.eventsSeen.Inc(ctx, AttrEventType.String(event.EventType()))

	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		m.ordersPlaced.Inc(ctx, AttrChannel.String(string(e.Channel)))
	case *trade.OrderStatusChangedEvent:
		m.statusTransitions.Inc(ctx, AttrStatus.String(string(e.To)))
	case *inventory.ReservationPlacedEvent:
		m.reservationsPlaced.Add(ctx, e.Quantity, AttrUnitType.String(string(e.UnitType)))
	case *inventory.ReservationReleasedEvent:
		m.reservationsReleased.Inc(ctx)
	case *inventory.StockRemovedEvent:
		m.unitsRemoved.Add(ctx, e.Quantity, AttrUnitType.String(string(e.UnitType)))
	}
	return nil
}

var _ shared.EventHandler = (*FulfillmentMetrics)(nil)
