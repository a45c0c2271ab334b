package handler

import (
	"context"

	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartService is the cart use case surface
type CartService interface {
	Open(ctx context.Context, req tradeapp.OpenCartRequest, actor string) (*tradeapp.CartResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*tradeapp.CartResponse, error)
	AddLine(ctx context.Context, cartID uuid.UUID, req tradeapp.LineRequest, actor string) (*tradeapp.CartResponse, error)
	UpdateLine(ctx context.Context, cartID, itemID uuid.UUID, req tradeapp.UpdateLineRequest, actor string) (*tradeapp.CartResponse, error)
	RemoveLine(ctx context.Context, cartID, itemID uuid.UUID, unitType inventory.UnitType, actor string) (*tradeapp.CartResponse, error)
	Cancel(ctx context.Context, cartID uuid.UUID, actor string) (*tradeapp.CartResponse, error)
	Quote(ctx context.Context, req tradeapp.QuoteRequest) (*tradeapp.QuoteResponse, error)
}

// CartHandler serves carts and price quotes
type CartHandler struct {
	BaseHandler
	carts CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// Open handles POST /carts
func (h *CartHandler) Open(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req tradeapp.OpenCartRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cart, err := h.carts.Open(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cart)
}

// Get handles GET /carts/:id
func (h *CartHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	cart, err := h.carts.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddLine handles POST /carts/:id/lines
func (h *CartHandler) AddLine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.LineRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cart, err := h.carts.AddLine(c.Request.Context(), id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// UpdateLine handles PUT /carts/:id/lines/:item_id
func (h *CartHandler) UpdateLine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(c, "item_id")
	if !ok {
		return
	}
	var req tradeapp.UpdateLineRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cart, err := h.carts.UpdateLine(c.Request.Context(), id, itemID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveLine handles DELETE /carts/:id/lines/:item_id?unit_type=
func (h *CartHandler) RemoveLine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(c, "item_id")
	if !ok {
		return
	}
	unitType, err := inventory.ParseUnitType(c.Query("unit_type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	cart, err := h.carts.RemoveLine(c.Request.Context(), id, itemID, unitType, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Cancel handles POST /carts/:id/cancel
func (h *CartHandler) Cancel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	cart, err := h.carts.Cancel(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Quote handles POST /quotes. It prices lines without reserving anything.
func (h *CartHandler) Quote(c *gin.Context) {
	var req tradeapp.QuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quote, err := h.carts.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}
