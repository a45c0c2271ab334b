package inventory

import (
	"sort"

	"github.com/google/uuid"
)

// ConsolidationGroup is a primary record and the duplicates to merge into it
type ConsolidationGroup struct {
	Primary    *StockRecord
	Duplicates []*StockRecord
}

type groupKey struct {
	itemID   uuid.UUID
	unitType UnitType
}

// PlanConsolidation groups a location's active records by item and unit type.
// The oldest record of each group is the primary. Only groups with duplicates
// are returned, ordered by primary creation time.
func PlanConsolidation(records []*StockRecord) []ConsolidationGroup {
	active := make([]*StockRecord, 0, len(records))
	for _, r := range records {
		if r.Lifecycle.IsActive() {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})

	index := make(map[groupKey]int)
	var groups []ConsolidationGroup
	for _, r := range active {
		k := groupKey{itemID: r.ItemID, unitType: r.UnitType}
		if i, ok := index[k]; ok {
			groups[i].Duplicates = append(groups[i].Duplicates, r)
			continue
		}
		index[k] = len(groups)
		groups = append(groups, ConsolidationGroup{Primary: r})
	}

	result := groups[:0]
	for _, g := range groups {
		if len(g.Duplicates) > 0 {
			result = append(result, g)
		}
	}
	return result
}
