package catalog

import (
	"strings"

	"github.com/erp/fulfillment/internal/domain/shared"
)

// Location is a shelf position stock can be placed at, addressed by a
// unique code such as "A-01-03".
type Location struct {
	shared.BaseAggregateRoot
	Code      string
	Name      string
	Lifecycle shared.Lifecycle
}

// NewLocation creates a location
func NewLocation(code, name, actor string) (*Location, error) {
	code = NormalizeLocationCode(code)
	if code == "" {
		return nil, shared.Invalidf("location code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.Invalidf("location code cannot exceed 50 characters")
	}
	return &Location{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(actor),
		Code:              code,
		Name:              name,
		Lifecycle:         shared.LifecycleActive,
	}, nil
}

// NormalizeLocationCode trims and upper-cases a location code
func NormalizeLocationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
