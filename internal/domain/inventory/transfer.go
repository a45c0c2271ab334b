package inventory

import (
	"fmt"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferPlan describes how much leaves the source and arrives at the destination
type TransferPlan struct {
	SourceQuantity      int64
	DestinationKey      StockKey
	DestinationQuantity int64
	DestinationUnitCost decimal.Decimal
}

// PlanTransfer validates moving quantity (in the source's unit type) from
// source to destination and converts it to the destination unit type.
func PlanTransfer(source *StockRecord, destinationID uuid.UUID, destType UnitType, quantity, unitsPerBox int64) (*TransferPlan, error) {
	if quantity <= 0 {
		return nil, shared.Invalidf("quantity must be positive")
	}
	if !destType.IsValid() {
		return nil, shared.Invalidf("unknown unit type %q", destType)
	}
	if !source.Lifecycle.IsActive() {
		return nil, shared.NotFoundf("stock record %s not found", source.ID)
	}
	if source.IsAt(destinationID) && source.UnitType == destType {
		return nil, shared.NewDomainError(shared.CodeNoOpTransfer,
			"source and destination are the same location and unit type")
	}
	if source.Quantity < quantity {
		return nil, shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("record holds %d %s, cannot transfer %d", source.Quantity, source.UnitType, quantity))
	}

	destQty, err := ConvertQuantity(quantity, source.UnitType, destType, unitsPerBox)
	if err != nil {
		return nil, err
	}

	return &TransferPlan{
		SourceQuantity:      quantity,
		DestinationKey:      StockKey{ItemID: source.ItemID, LocationID: destinationID, UnitType: destType},
		DestinationQuantity: destQty,
		DestinationUnitCost: ConvertCost(source.UnitCost, source.UnitType, destType, unitsPerBox),
	}, nil
}

// ShouldRetireAfterTransfer reports whether a drained source should leave the
// active set. Only records that were themselves created by a transfer are
// retired; purchased stock stays as an inert zero record.
func ShouldRetireAfterTransfer(source *StockRecord) bool {
	return source.Quantity == 0 && source.Origin == OriginTransfer
}
