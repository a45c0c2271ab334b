package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockService handles the physical stock ledger
type StockService struct {
	records        inventory.StockRecordRepository
	locations      catalog.LocationRepository
	items          catalog.ItemReader
	txScope        TransactionScope
	locker         *KeyedLocker
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	records inventory.StockRecordRepository,
	locations catalog.LocationRepository,
	items catalog.ItemReader,
	txScope TransactionScope,
	locker *KeyedLocker,
	logger *zap.Logger,
) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		records:   records,
		locations: locations,
		items:     items,
		txScope:   txScope,
		locker:    locker,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// QueryAvailable sums the active physical quantity of an item in one unit type
// across every location, unassigned stock included
func (s *StockService) QueryAvailable(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType) (int64, error) {
	if !unitType.IsValid() {
		return 0, shared.Invalidf("unknown unit type %q", unitType)
	}
	return s.records.SumQuantity(ctx, itemID, unitType)
}

// GetRecord retrieves an active stock record
func (s *StockService) GetRecord(ctx context.Context, id uuid.UUID) (*StockRecordResponse, error) {
	r, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToStockRecordResponse(r)
	return &resp, nil
}

// ListByItem lists the active records of an item
func (s *StockService) ListByItem(ctx context.Context, itemID uuid.UUID) ([]StockRecordResponse, error) {
	records, err := s.records.FindByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return ToStockRecordResponses(records), nil
}

// ListByLocation lists the active records at a location
func (s *StockService) ListByLocation(ctx context.Context, locationID uuid.UUID) ([]StockRecordResponse, error) {
	if _, err := s.locations.FindByID(ctx, locationID); err != nil {
		return nil, err
	}
	records, err := s.records.FindByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return ToStockRecordResponses(records), nil
}

// ReceivePurchase books purchased stock as a new unassigned record
func (s *StockService) ReceivePurchase(ctx context.Context, in ReceiveInput) (*StockRecordResponse, error) {
	if in.Quantity <= 0 {
		return nil, shared.Invalidf("quantity must be positive")
	}
	if _, err := s.items.GetItem(ctx, in.ItemID); err != nil {
		return nil, err
	}

	record, err := inventory.NewStockRecord(in.ItemID, nil, in.UnitType, in.Quantity, in.UnitCost, inventory.OriginPurchase, in.Actor)
	if err != nil {
		return nil, err
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, record)
	s.logger.Info("stock received",
		zap.String("record_id", record.ID.String()),
		zap.String("item_id", in.ItemID.String()),
		zap.String("unit_type", string(in.UnitType)),
		zap.Int64("quantity", in.Quantity),
	)
	resp := ToStockRecordResponse(record)
	return &resp, nil
}

// Shelve assigns an unassigned record to a location. When the location
// already holds the same item and unit type the two records are merged.
func (s *StockService) Shelve(ctx context.Context, in ShelveInput) (*StockRecordResponse, error) {
	source, err := s.records.FindByID(ctx, in.RecordID)
	if err != nil {
		return nil, err
	}
	if source.IsAssigned() {
		return nil, shared.NewDomainError(shared.CodeConflict, "stock record is already at a location")
	}
	loc, err := s.locations.FindLocationByCode(ctx, catalog.NormalizeLocationCode(in.LocationCode))
	if err != nil {
		return nil, err
	}
	destKey := inventory.StockKey{ItemID: source.ItemID, LocationID: loc.ID, UnitType: source.UnitType}

	unlock, err := s.locker.LockAll(ctx, source.Key().String(), destKey.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *inventory.StockRecord
	var touched []shared.AggregateRoot
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		source, err := repos.StockRepo().FindByID(ctx, in.RecordID)
		if err != nil {
			return err
		}

		existing, err := findByKey(ctx, repos.StockRepo(), destKey)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := source.AssignTo(loc.ID, in.Actor); err != nil {
				return err
			}
			if err := repos.StockRepo().SaveWithLock(ctx, source); err != nil {
				return err
			}
			result = source
			touched = append(touched, source)
			return repos.LocationRepo().IndexStockRecord(ctx, loc.ID, source.ID)
		}

		if err := existing.Absorb(source, in.Actor); err != nil {
			return err
		}
		if err := repos.StockRepo().SaveWithLock(ctx, existing); err != nil {
			return err
		}
		if err := repos.StockRepo().Delete(ctx, source.ID); err != nil {
			return err
		}
		result = existing
		touched = append(touched, existing)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, touched...)
	resp := ToStockRecordResponse(result)
	return &resp, nil
}

// Transfer moves quantity from a record to a location, converting between
// box and unit when the destination unit type differs
func (s *StockService) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	source, err := s.records.FindByID(ctx, in.SourceRecordID)
	if err != nil {
		return nil, err
	}
	loc, err := s.locations.FindLocationByCode(ctx, catalog.NormalizeLocationCode(in.DestinationLocationCode))
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetItem(ctx, source.ItemID)
	if err != nil {
		return nil, err
	}
	destKey := inventory.StockKey{ItemID: source.ItemID, LocationID: loc.ID, UnitType: in.UnitType}

	unlock, err := s.locker.LockAll(ctx, source.Key().String(), destKey.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	var src, dst *inventory.StockRecord
	var retired bool
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		src, err = repos.StockRepo().FindByID(ctx, in.SourceRecordID)
		if err != nil {
			return err
		}
		plan, err := inventory.PlanTransfer(src, loc.ID, in.UnitType, in.Quantity, item.BoxFactor())
		if err != nil {
			return err
		}

		dst, err = findByKey(ctx, repos.StockRepo(), plan.DestinationKey)
		if err != nil {
			return err
		}
		if dst == nil {
			locID := loc.ID
			dst, err = inventory.NewStockRecord(src.ItemID, &locID, in.UnitType, plan.DestinationQuantity,
				plan.DestinationUnitCost, inventory.OriginTransfer, in.Actor)
			if err != nil {
				return err
			}
			if err := repos.StockRepo().Create(ctx, dst); err != nil {
				return err
			}
			if err := repos.LocationRepo().IndexStockRecord(ctx, loc.ID, dst.ID); err != nil {
				return err
			}
		} else {
			if err := dst.Add(plan.DestinationQuantity, plan.DestinationUnitCost, "transfer", in.Actor); err != nil {
				return err
			}
			if err := repos.StockRepo().SaveWithLock(ctx, dst); err != nil {
				return err
			}
		}

		if err := src.Remove(plan.SourceQuantity, "transfer", in.Actor); err != nil {
			return err
		}
		if inventory.ShouldRetireAfterTransfer(src) {
			if err := src.Retire(in.Actor); err != nil {
				return err
			}
			retired = true
			if src.LocationID != nil {
				if err := repos.LocationRepo().UnindexStockRecord(ctx, *src.LocationID, src.ID); err != nil {
					return err
				}
			}
		}
		return repos.StockRepo().SaveWithLock(ctx, src)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, src, dst)
	s.logger.Info("stock transferred",
		zap.String("source_id", src.ID.String()),
		zap.String("destination_id", dst.ID.String()),
		zap.String("location", loc.Code),
		zap.Int64("quantity", in.Quantity),
		zap.Bool("source_retired", retired),
	)
	return &TransferResult{
		Source:        ToStockRecordResponse(src),
		Destination:   ToStockRecordResponse(dst),
		SourceRetired: retired,
	}, nil
}

// ConsolidateDuplicates merges records of the same item and unit type at a
// location into the oldest one. Merged duplicates are physically deleted.
func (s *StockService) ConsolidateDuplicates(ctx context.Context, locationID uuid.UUID, actor string) ([]StockRecordResponse, error) {
	if _, err := s.locations.FindByID(ctx, locationID); err != nil {
		return nil, err
	}
	current, err := s.records.FindByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(current))
	for i := range current {
		keys = append(keys, current[i].Key().String())
	}

	unlock, err := s.locker.LockAll(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var primaries []*inventory.StockRecord
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		records, err := repos.StockRepo().FindByLocation(ctx, locationID)
		if err != nil {
			return err
		}
		for _, g := range inventory.PlanConsolidation(recordPointers(records)) {
			for _, dup := range g.Duplicates {
				if err := g.Primary.Absorb(dup, actor); err != nil {
					return err
				}
				if err := repos.StockRepo().Delete(ctx, dup.ID); err != nil {
					return err
				}
				if err := repos.LocationRepo().UnindexStockRecord(ctx, locationID, dup.ID); err != nil {
					return err
				}
			}
			if err := repos.StockRepo().SaveWithLock(ctx, g.Primary); err != nil {
				return err
			}
			primaries = append(primaries, g.Primary)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]StockRecordResponse, len(primaries))
	for i, p := range primaries {
		s.publishDomainEvents(ctx, p)
		out[i] = ToStockRecordResponse(p)
	}
	if len(primaries) > 0 {
		s.logger.Info("stock consolidated",
			zap.String("location_id", locationID.String()),
			zap.Int("groups", len(primaries)),
		)
	}
	return out, nil
}

// RemoveFifo takes single units of an item out of stock, unit records first
// and oldest first
func (s *StockService) RemoveFifo(ctx context.Context, in RemoveFifoInput) (*RemovalOutcome, error) {
	outcomes, err := s.RemoveFifoMany(ctx, []RemoveFifoInput{in})
	if err != nil {
		return nil, err
	}
	return &outcomes[0], nil
}

// RemoveFifoMany removes several items at once. Every request is planned
// before any record is written, so either all of them succeed or none does.
// Requests for the same item are planned against the same records in order.
func (s *StockService) RemoveFifoMany(ctx context.Context, inputs []RemoveFifoInput) ([]RemovalOutcome, error) {
	if len(inputs) == 0 {
		return nil, shared.Invalidf("nothing to remove")
	}

	perBox := make(map[uuid.UUID]int64, len(inputs))
	var keys []string
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, shared.Invalidf("quantity must be positive")
		}
		if _, seen := perBox[in.ItemID]; seen {
			continue
		}
		item, err := s.items.GetItem(ctx, in.ItemID)
		if err != nil {
			return nil, err
		}
		perBox[in.ItemID] = item.BoxFactor()

		records, err := s.records.FindByItem(ctx, in.ItemID)
		if err != nil {
			return nil, err
		}
		for i := range records {
			keys = append(keys, records[i].Key().String())
		}
	}

	unlock, err := s.locker.LockAll(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	outcomes := make([]RemovalOutcome, len(inputs))
	var touched []shared.AggregateRoot
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		byItem := make(map[uuid.UUID][]*inventory.StockRecord, len(perBox))
		for itemID := range perBox {
			records, err := repos.StockRepo().FindByItem(ctx, itemID)
			if err != nil {
				return err
			}
			byItem[itemID] = recordPointers(records)
		}

		// plan everything against a scratch copy of the quantities first
		remaining := make(map[uuid.UUID]int64)
		for _, records := range byItem {
			for _, r := range records {
				remaining[r.ID] = r.Quantity
			}
		}
		for i, in := range inputs {
			view := make([]*inventory.StockRecord, 0, len(byItem[in.ItemID]))
			for _, r := range byItem[in.ItemID] {
				c := *r
				c.Quantity = remaining[r.ID]
				view = append(view, &c)
			}
			plan, err := inventory.PlanFifoRemoval(view, perBox[in.ItemID], in.Quantity)
			if err != nil {
				return err
			}
			for _, step := range plan.Steps {
				remaining[step.RecordID] -= step.Quantity
			}
			outcomes[i] = RemovalOutcome{ItemID: in.ItemID, Removed: in.Quantity, Steps: plan.Steps}
		}

		index := make(map[uuid.UUID]*inventory.StockRecord)
		for _, records := range byItem {
			for _, r := range records {
				index[r.ID] = r
			}
		}
		changed := make(map[uuid.UUID]bool)
		var dirty []*inventory.StockRecord
		for i, out := range outcomes {
			reason := inputs[i].Reason
			if reason == "" {
				reason = "fifo removal"
			}
			for _, step := range out.Steps {
				r := index[step.RecordID]
				if err := r.Remove(step.Quantity, reason, inputs[i].Actor); err != nil {
					return err
				}
				if !changed[r.ID] {
					changed[r.ID] = true
					touched = append(touched, r)
					dirty = append(dirty, r)
				}
			}
		}
		for _, r := range dirty {
			if err := repos.StockRepo().SaveWithLock(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, touched...)
	return outcomes, nil
}

// PickedLine is a quantity taken from one location by a committed pick
type PickedLine struct {
	ItemID     uuid.UUID
	LocationID uuid.UUID
	UnitType   inventory.UnitType
	Quantity   int64
}

func (l PickedLine) key() inventory.StockKey {
	return inventory.StockKey{ItemID: l.ItemID, LocationID: l.LocationID, UnitType: l.UnitType}
}

// CommitPick decrements the records at the recorded pick locations and
// releases the order's reservations in one unit of work. Every line is checked
// before any record is written.
func (s *StockService) CommitPick(ctx context.Context, orderID uuid.UUID, lines []PickedLine, actor string) error {
	if len(lines) == 0 {
		return shared.Invalidf("nothing was picked")
	}
	keys := make([]string, 0, len(lines)*2)
	for _, l := range lines {
		keys = append(keys, l.key().String(), inventory.ReservationLockKey(l.ItemID, orderID))
	}

	unlock, err := s.locker.LockAll(ctx, keys...)
	if err != nil {
		return err
	}
	defer unlock()

	var touched []shared.AggregateRoot
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		records := make(map[inventory.StockKey]*inventory.StockRecord, len(lines))
		need := make(map[inventory.StockKey]int64, len(lines))
		for _, l := range lines {
			if l.Quantity <= 0 {
				return shared.Invalidf("picked quantity must be positive")
			}
			k := l.key()
			need[k] += l.Quantity
			if _, ok := records[k]; ok {
				continue
			}
			r, err := findByKey(ctx, repos.StockRepo(), k)
			if err != nil {
				return err
			}
			if r == nil {
				return shared.NewDomainError(shared.CodeInsufficientStock,
					fmt.Sprintf("no %s stock of item %s at location %s", l.UnitType, l.ItemID, l.LocationID))
			}
			records[k] = r
		}
		for k, qty := range need {
			if records[k].Quantity < qty {
				return shared.NewDomainError(shared.CodeInsufficientStock,
					fmt.Sprintf("location %s holds %d %s of item %s, picked %d",
						k.LocationID, records[k].Quantity, k.UnitType, k.ItemID, qty))
			}
		}

		for k, qty := range need {
			r := records[k]
			if err := r.Remove(qty, "pick "+orderID.String(), actor); err != nil {
				return err
			}
			if err := repos.StockRepo().SaveWithLock(ctx, r); err != nil {
				return err
			}
			touched = append(touched, r)
		}

		released, err := releaseOrder(ctx, repos.ReservationRepo(), orderID, actor)
		if err != nil {
			return err
		}
		for _, r := range released {
			touched = append(touched, r)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishDomainEvents(ctx, touched...)
	return nil
}

// Restock returns previously picked quantities to their pick locations. A
// location that no longer holds the item gets a new adjustment record.
func (s *StockService) Restock(ctx context.Context, lines []PickedLine, actor string) error {
	if len(lines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(lines))
	for _, l := range lines {
		keys = append(keys, l.key().String())
	}

	unlock, err := s.locker.LockAll(ctx, keys...)
	if err != nil {
		return err
	}
	defer unlock()

	var touched []shared.AggregateRoot
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, l := range lines {
			if l.Quantity <= 0 {
				continue
			}
			r, err := findByKey(ctx, repos.StockRepo(), l.key())
			if err != nil {
				return err
			}
			if r != nil {
				if err := r.Add(l.Quantity, r.UnitCost, "restock", actor); err != nil {
					return err
				}
				if err := repos.StockRepo().SaveWithLock(ctx, r); err != nil {
					return err
				}
				touched = append(touched, r)
				continue
			}

			cost, err := referenceCost(ctx, repos.StockRepo(), l.ItemID, l.UnitType)
			if err != nil {
				return err
			}
			locID := l.LocationID
			r, err = inventory.NewStockRecord(l.ItemID, &locID, l.UnitType, l.Quantity, cost, inventory.OriginAdjustment, actor)
			if err != nil {
				return err
			}
			if err := repos.StockRepo().Create(ctx, r); err != nil {
				return err
			}
			if err := repos.LocationRepo().IndexStockRecord(ctx, locID, r.ID); err != nil {
				return err
			}
			touched = append(touched, r)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishDomainEvents(ctx, touched...)
	return nil
}

// publishDomainEvents publishes and clears the pending events of the given aggregates
func (s *StockService) publishDomainEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	publishDomainEvents(ctx, s.eventPublisher, s.logger, aggregates...)
}

func publishDomainEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggregates ...shared.AggregateRoot) {
	for _, a := range aggregates {
		if a == nil {
			continue
		}
		events := a.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		if publisher != nil {
			// publish failures never roll back a committed change
			if err := publisher.Publish(ctx, events...); err != nil {
				logger.Warn("failed to publish domain events",
					zap.String("aggregate_id", a.GetID().String()),
					zap.Error(err),
				)
			}
		}
		a.ClearDomainEvents()
	}
}

// findByKey returns nil without error when the slot is empty
func findByKey(ctx context.Context, repo inventory.StockRecordRepository, key inventory.StockKey) (*inventory.StockRecord, error) {
	r, err := repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

// referenceCost picks the cost of the item's oldest active record of the same unit type
func referenceCost(ctx context.Context, repo inventory.StockRecordRepository, itemID uuid.UUID, unitType inventory.UnitType) (decimal.Decimal, error) {
	records, err := repo.FindByItem(ctx, itemID)
	if err != nil {
		return decimal.Zero, err
	}
	ptrs := recordPointers(records)
	inventory.SortForRemoval(ptrs)
	for _, r := range ptrs {
		if r.UnitType == unitType {
			return r.UnitCost, nil
		}
	}
	return decimal.Zero, nil
}

func recordPointers(records []inventory.StockRecord) []*inventory.StockRecord {
	ptrs := make([]*inventory.StockRecord, len(records))
	for i := range records {
		ptrs[i] = &records[i]
	}
	return ptrs
}
