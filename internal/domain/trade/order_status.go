package trade

// OrderStatus is the pipeline stage of an order
type OrderStatus string

const (
	OrderStatusOrder           OrderStatus = "order"
	OrderStatusAwaitingPayment OrderStatus = "em pagamento"
	OrderStatusPending         OrderStatus = "pendente"
	OrderStatusPicking         OrderStatus = "separacao"
	OrderStatusVerifying       OrderStatus = "conferencia"
	OrderStatusDocked          OrderStatus = "docas"
	OrderStatusInTransit       OrderStatus = "transito"
	OrderStatusDelivered       OrderStatus = "entregue"
	OrderStatusCancelled       OrderStatus = "cancelado"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusOrder, OrderStatusAwaitingPayment, OrderStatusPending, OrderStatusPicking,
		OrderStatusVerifying, OrderStatusDocked, OrderStatusInTransit, OrderStatusDelivered,
		OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for delivered and cancelled orders
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status.
// Reactivating a cancelled order is handled separately.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if target == OrderStatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case OrderStatusOrder:
		return target == OrderStatusAwaitingPayment || target == OrderStatusPicking || target == OrderStatusDelivered
	case OrderStatusAwaitingPayment:
		return target == OrderStatusPicking || target == OrderStatusPending
	case OrderStatusPending:
		return target == OrderStatusPicking || target == OrderStatusVerifying
	case OrderStatusPicking:
		return target == OrderStatusPending || target == OrderStatusVerifying
	case OrderStatusVerifying:
		return target == OrderStatusPending || target == OrderStatusDocked
	case OrderStatusDocked:
		return target == OrderStatusInTransit
	case OrderStatusInTransit:
		return target == OrderStatusDelivered
	}
	return false
}

// Channel is where the order was placed
type Channel string

const (
	ChannelOnline Channel = "online"
	ChannelWalkIn Channel = "presencial"
)

// IsValid checks if the channel is known
func (c Channel) IsValid() bool {
	return c == ChannelOnline || c == ChannelWalkIn
}

// DeliveryType is how the order leaves the warehouse
type DeliveryType string

const (
	DeliveryPickup DeliveryType = "retirada"
	DeliverySedex  DeliveryType = "sedex"
	DeliveryPAC    DeliveryType = "pac"
	DeliveryJadlog DeliveryType = "jadlog"
	DeliveryBus    DeliveryType = "onibus"
)

// IsValid checks if the delivery type is known
func (d DeliveryType) IsValid() bool {
	switch d {
	case DeliveryPickup, DeliverySedex, DeliveryPAC, DeliveryJadlog, DeliveryBus:
		return true
	}
	return false
}

// PickStatus classifies a picked line against the requested quantity
type PickStatus string

const (
	PickStatusDefault   PickStatus = "default"
	PickStatusCorrect   PickStatus = "correto"
	PickStatusPartial   PickStatus = "parcial"
	PickStatusIncorrect PickStatus = "incorreto"
)

// ClassifyPick compares a counted quantity with the requested one
func ClassifyPick(requested, counted int64) PickStatus {
	switch {
	case counted == requested:
		return PickStatusCorrect
	case counted < requested:
		return PickStatusPartial
	default:
		return PickStatusIncorrect
	}
}
