package trade

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/pricing"
	"github.com/google/uuid"
)

// quoter prices lines against the catalog and the selected tax configuration
type quoter struct {
	items catalog.ItemReader
	taxes catalog.TaxConfigReader
}

// quote returns the priced lines together with the catalog items they used
func (q quoter) quote(ctx context.Context, lines []pricing.LineInput) (*pricing.Quote, map[uuid.UUID]*catalog.Item, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ItemID]; ok {
			continue
		}
		seen[l.ItemID] = struct{}{}
		ids = append(ids, l.ItemID)
	}

	items, err := q.items.GetItems(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	var tax *catalog.TaxConfig
	if q.taxes != nil {
		tax = q.taxes.Current()
	}
	priced, err := pricing.PriceLines(lines, tax, items)
	if err != nil {
		return nil, nil, err
	}
	return priced, items, nil
}
