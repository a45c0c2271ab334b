package inventory

import (
	"strings"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// UnitType is the packaging a quantity is counted in
type UnitType string

const (
	UnitTypeBox  UnitType = "box"
	UnitTypeUnit UnitType = "unit"
)

// IsValid checks if the unit type is known
func (t UnitType) IsValid() bool {
	return t == UnitTypeBox || t == UnitTypeUnit
}

// String returns the string representation
func (t UnitType) String() string {
	return string(t)
}

// ParseUnitType parses a unit type, accepting any casing
func ParseUnitType(s string) (UnitType, error) {
	t := UnitType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.Invalidf("unknown unit type %q", s)
	}
	return t, nil
}

// ToUnits converts a quantity of the given type into single units
func ToUnits(quantity int64, t UnitType, unitsPerBox int64) int64 {
	if t == UnitTypeBox {
		return quantity * unitsPerBox
	}
	return quantity
}

// ConvertQuantity converts a quantity between unit types. Converting units
// into boxes must land on a whole number of boxes.
func ConvertQuantity(quantity int64, from, to UnitType, unitsPerBox int64) (int64, error) {
	if from == to {
		return quantity, nil
	}
	if unitsPerBox <= 0 {
		return 0, shared.Invalidf("units per box must be positive")
	}
	if from == UnitTypeBox {
		return quantity * unitsPerBox, nil
	}
	if quantity%unitsPerBox != 0 {
		return 0, shared.NewDomainError(shared.CodeUnresolvableBoxFraction,
			"quantity does not fill a whole number of boxes")
	}
	return quantity / unitsPerBox, nil
}

// ConvertCost converts a per-unit-type cost between unit types
func ConvertCost(cost decimal.Decimal, from, to UnitType, unitsPerBox int64) decimal.Decimal {
	if from == to || unitsPerBox <= 0 {
		return cost
	}
	factor := decimal.NewFromInt(unitsPerBox)
	if from == UnitTypeBox {
		return cost.Div(factor).Round(valueobject.CostPlaces)
	}
	return cost.Mul(factor).Round(valueobject.CostPlaces)
}
