package inventory

import (
	"fmt"
	"sort"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// RemovalStep is the quantity to take from one record, in the record's own unit type
type RemovalStep struct {
	RecordID uuid.UUID `json:"record_id"`
	UnitType UnitType  `json:"unit_type"`
	Quantity int64     `json:"quantity"`
	Units    int64     `json:"units"`
}

// RemovalPlan is the full set of steps that satisfies a removal request
type RemovalPlan struct {
	Requested int64         `json:"requested"`
	Steps     []RemovalStep `json:"steps"`
}

// SortForRemoval orders records unit-type first, then oldest first
func SortForRemoval(records []*StockRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].UnitType != records[j].UnitType {
			return records[i].UnitType == UnitTypeUnit
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}

// PlanFifoRemoval decides which records satisfy a request of quantity single
// units. Unit records are consumed before box records; box records can only
// give up whole boxes. No record is mutated.
func PlanFifoRemoval(records []*StockRecord, unitsPerBox, quantity int64) (*RemovalPlan, error) {
	if quantity <= 0 {
		return nil, shared.Invalidf("quantity must be positive")
	}
	if unitsPerBox <= 0 {
		unitsPerBox = 1
	}

	candidates := make([]*StockRecord, 0, len(records))
	var available int64
	for _, r := range records {
		if !r.Lifecycle.IsActive() || r.Quantity <= 0 {
			continue
		}
		candidates = append(candidates, r)
		available += r.Units(unitsPerBox)
	}
	if available < quantity {
		return nil, shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("requested %d units, only %d available", quantity, available))
	}

	SortForRemoval(candidates)

	plan := &RemovalPlan{Requested: quantity}
	remaining := quantity
	for _, r := range candidates {
		if remaining == 0 {
			break
		}
		take := min(r.Units(unitsPerBox), remaining)
		step := RemovalStep{RecordID: r.ID, UnitType: r.UnitType, Units: take, Quantity: take}
		if r.UnitType == UnitTypeBox {
			if take%unitsPerBox != 0 {
				return nil, shared.NewDomainError(shared.CodeUnresolvableBoxFraction,
					fmt.Sprintf("%d units would leave a fractional box of %d", take, unitsPerBox))
			}
			step.Quantity = take / unitsPerBox
		}
		plan.Steps = append(plan.Steps, step)
		remaining -= take
	}
	return plan, nil
}
