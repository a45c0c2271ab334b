package event

import (
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/trade"
)

// RegisterAllEvents registers every domain event type with the serializer
func RegisterAllEvents(serializer *EventSerializer) {
	// Inventory
	serializer.Register(inventory.EventTypeStockRecordCreated, &inventory.StockRecordCreatedEvent{})
	serializer.Register(inventory.EventTypeStockRemoved, &inventory.StockRemovedEvent{})
	serializer.Register(inventory.EventTypeStockAdded, &inventory.StockAddedEvent{})
	serializer.Register(inventory.EventTypeStockShelved, &inventory.StockShelvedEvent{})
	serializer.Register(inventory.EventTypeStockConsolidated, &inventory.StockConsolidatedEvent{})
	serializer.Register(inventory.EventTypeStockRetired, &inventory.StockRetiredEvent{})
	serializer.Register(inventory.EventTypeReservationPlaced, &inventory.ReservationPlacedEvent{})
	serializer.Register(inventory.EventTypeReservationReleased, &inventory.ReservationReleasedEvent{})

	// Trade
	serializer.Register(trade.EventTypeOrderPlaced, &trade.OrderPlacedEvent{})
	serializer.Register(trade.EventTypeOrderStatusChanged, &trade.OrderStatusChangedEvent{})
	serializer.Register(trade.EventTypeOrderPickRecorded, &trade.OrderPickRecordedEvent{})
	serializer.Register(trade.EventTypeOrderLinesAdjusted, &trade.OrderLinesAdjustedEvent{})
	serializer.Register(trade.EventTypeOrderDockAssigned, &trade.OrderDockAssignedEvent{})
	serializer.Register(trade.EventTypeOrderProofAttached, &trade.OrderProofAttachedEvent{})
	serializer.Register(trade.EventTypeCartStatusChanged, &trade.CartStatusChangedEvent{})
}
