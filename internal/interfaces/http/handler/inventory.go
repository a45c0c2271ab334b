package handler

import (
	"context"

	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StockService is the stock ledger use case surface
type StockService interface {
	QueryAvailable(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType) (int64, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*inventoryapp.StockRecordResponse, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]inventoryapp.StockRecordResponse, error)
	ListByLocation(ctx context.Context, locationID uuid.UUID) ([]inventoryapp.StockRecordResponse, error)
	ReceivePurchase(ctx context.Context, in inventoryapp.ReceiveInput) (*inventoryapp.StockRecordResponse, error)
	Shelve(ctx context.Context, in inventoryapp.ShelveInput) (*inventoryapp.StockRecordResponse, error)
	Transfer(ctx context.Context, in inventoryapp.TransferInput) (*inventoryapp.TransferResult, error)
	ConsolidateDuplicates(ctx context.Context, locationID uuid.UUID, actor string) ([]inventoryapp.StockRecordResponse, error)
	RemoveFifo(ctx context.Context, in inventoryapp.RemoveFifoInput) (*inventoryapp.RemovalOutcome, error)
	RemoveFifoMany(ctx context.Context, inputs []inventoryapp.RemoveFifoInput) ([]inventoryapp.RemovalOutcome, error)
}

// ReservationService is the reservation ledger use case surface
type ReservationService interface {
	Reserve(ctx context.Context, in inventoryapp.ReserveInput) (*inventoryapp.ReservationResponse, error)
	Release(ctx context.Context, orderID uuid.UUID, actor string) (int, error)
	AvailabilityDetail(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType) (*inventoryapp.AvailabilityResponse, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]inventoryapp.ReservationResponse, error)
}

// InventoryHandler serves the stock and reservation ledgers
type InventoryHandler struct {
	BaseHandler
	stock        StockService
	reservations ReservationService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stock StockService, reservations ReservationService) *InventoryHandler {
	return &InventoryHandler{
		stock:        stock,
		reservations: reservations,
	}
}

// StockQuantityResponse is the physical quantity of an item in one unit type
type StockQuantityResponse struct {
	ItemID   uuid.UUID          `json:"item_id"`
	UnitType inventory.UnitType `json:"unit_type"`
	Quantity int64              `json:"quantity"`
}

// ConsolidateRequest names the location whose duplicate records are merged
type ConsolidateRequest struct {
	LocationID uuid.UUID `json:"location_id" binding:"required"`
}

// RemoveBatchRequest removes several items in one transaction
type RemoveBatchRequest struct {
	Lines []inventoryapp.RemoveFifoInput `json:"lines" binding:"required,min=1,dive"`
}

// ReleaseResponse reports how many reservations were released
type ReleaseResponse struct {
	OrderID  uuid.UUID `json:"order_id"`
	Released int       `json:"released"`
}

// itemAndUnit reads the item_id and unit_type query parameters
func (h *InventoryHandler) itemAndUnit(c *gin.Context) (uuid.UUID, inventory.UnitType, bool) {
	itemID, ok := h.uuidQuery(c, "item_id")
	if !ok {
		return uuid.Nil, "", false
	}
	unitType, err := inventory.ParseUnitType(c.Query("unit_type"))
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, "", false
	}
	return itemID, unitType, true
}

// PhysicalStock handles GET /stock/quantity?item_id=&unit_type=
func (h *InventoryHandler) PhysicalStock(c *gin.Context) {
	itemID, unitType, ok := h.itemAndUnit(c)
	if !ok {
		return
	}

	qty, err := h.stock.QueryAvailable(c.Request.Context(), itemID, unitType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, StockQuantityResponse{ItemID: itemID, UnitType: unitType, Quantity: qty})
}

// GetRecord handles GET /stock/records/:id
func (h *InventoryHandler) GetRecord(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	rec, err := h.stock.GetRecord(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// ListRecords handles GET /stock/records?item_id= or ?location_id=
func (h *InventoryHandler) ListRecords(c *gin.Context) {
	var (
		records []inventoryapp.StockRecordResponse
		err     error
	)
	switch {
	case c.Query("item_id") != "":
		itemID, ok := h.uuidQuery(c, "item_id")
		if !ok {
			return
		}
		records, err = h.stock.ListByItem(c.Request.Context(), itemID)
	case c.Query("location_id") != "":
		locationID, ok := h.uuidQuery(c, "location_id")
		if !ok {
			return
		}
		records, err = h.stock.ListByLocation(c.Request.Context(), locationID)
	default:
		h.BadRequest(c, "item_id or location_id is required")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// Receive handles POST /stock/receive
func (h *InventoryHandler) Receive(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var in inventoryapp.ReceiveInput
	if !h.bindJSON(c, &in) {
		return
	}
	in.Actor = actor

	rec, err := h.stock.ReceivePurchase(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rec)
}

// Shelve handles POST /stock/shelve
func (h *InventoryHandler) Shelve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var in inventoryapp.ShelveInput
	if !h.bindJSON(c, &in) {
		return
	}
	in.Actor = actor

	rec, err := h.stock.Shelve(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// Transfer handles POST /stock/transfer
func (h *InventoryHandler) Transfer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var in inventoryapp.TransferInput
	if !h.bindJSON(c, &in) {
		return
	}
	in.Actor = actor

	result, err := h.stock.Transfer(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Consolidate handles POST /stock/consolidate
func (h *InventoryHandler) Consolidate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req ConsolidateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	records, err := h.stock.ConsolidateDuplicates(c.Request.Context(), req.LocationID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// Remove handles POST /stock/remove
func (h *InventoryHandler) Remove(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var in inventoryapp.RemoveFifoInput
	if !h.bindJSON(c, &in) {
		return
	}
	in.Actor = actor

	outcome, err := h.stock.RemoveFifo(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, outcome)
}

// RemoveBatch handles POST /stock/remove-batch. Either every line is removed or none.
func (h *InventoryHandler) RemoveBatch(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req RemoveBatchRequest
	if !h.bindJSON(c, &req) {
		return
	}
	for i := range req.Lines {
		req.Lines[i].Actor = actor
	}

	outcomes, err := h.stock.RemoveFifoMany(c.Request.Context(), req.Lines)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, outcomes)
}

// Reserve handles POST /reservations
func (h *InventoryHandler) Reserve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var in inventoryapp.ReserveInput
	if !h.bindJSON(c, &in) {
		return
	}
	in.Actor = actor

	res, err := h.reservations.Reserve(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Release handles DELETE /reservations/orders/:id
func (h *InventoryHandler) Release(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	n, err := h.reservations.Release(c.Request.Context(), orderID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ReleaseResponse{OrderID: orderID, Released: n})
}

// ListReservations handles GET /reservations/orders/:id
func (h *InventoryHandler) ListReservations(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	list, err := h.reservations.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Availability handles GET /availability?item_id=&unit_type=
func (h *InventoryHandler) Availability(c *gin.Context) {
	itemID, unitType, ok := h.itemAndUnit(c)
	if !ok {
		return
	}

	detail, err := h.reservations.AvailabilityDetail(c.Request.Context(), itemID, unitType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}
