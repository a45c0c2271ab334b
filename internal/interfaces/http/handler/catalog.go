package handler

import (
	"context"

	catalogapp "github.com/erp/fulfillment/internal/application/catalog"
	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ItemService is the catalog item use case surface
type ItemService interface {
	Create(ctx context.Context, req catalogapp.CreateItemRequest, actor string) (*catalogapp.ItemResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ItemResponse, error)
	List(ctx context.Context, filter catalogapp.ItemListFilter) (*shared.Paginated[catalogapp.ItemResponse], error)
	SetPromotion(ctx context.Context, id uuid.UUID, req catalogapp.PromotionRequest, actor string) (*catalogapp.ItemResponse, error)
}

// LocationService is the storage location use case surface
type LocationService interface {
	Create(ctx context.Context, req catalogapp.CreateLocationRequest, actor string) (*catalogapp.LocationResponse, error)
	GetByCode(ctx context.Context, code string) (*catalogapp.LocationResponse, error)
	List(ctx context.Context) ([]catalogapp.LocationResponse, error)
}

// TaxConfigService is the tax configuration use case surface
type TaxConfigService interface {
	Create(ctx context.Context, req catalogapp.CreateTaxConfigRequest, actor string) (*catalogapp.TaxConfigResponse, error)
	List(ctx context.Context) ([]catalogapp.TaxConfigResponse, error)
	Select(ctx context.Context, id uuid.UUID, actor string) (*catalogapp.TaxConfigResponse, error)
	Current() *catalog.TaxConfig
}

// CatalogHandler serves items, locations and tax configurations
type CatalogHandler struct {
	BaseHandler
	items     ItemService
	locations LocationService
	taxes     TaxConfigService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(items ItemService, locations LocationService, taxes TaxConfigService) *CatalogHandler {
	return &CatalogHandler{
		items:     items,
		locations: locations,
		taxes:     taxes,
	}
}

// CreateItem handles POST /items
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req catalogapp.CreateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.items.Create(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// GetItem handles GET /items/:id
func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	item, err := h.items.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// ListItems handles GET /items
func (h *CatalogHandler) ListItems(c *gin.Context) {
	var filter catalogapp.ItemListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.items.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize)
}

// SetPromotion handles PUT /items/:id/promotion. A null price clears the promotion.
func (h *CatalogHandler) SetPromotion(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.PromotionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.items.SetPromotion(c.Request.Context(), id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// CreateLocation handles POST /locations
func (h *CatalogHandler) CreateLocation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req catalogapp.CreateLocationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	loc, err := h.locations.Create(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, loc)
}

// GetLocation handles GET /locations/:code
func (h *CatalogHandler) GetLocation(c *gin.Context) {
	loc, err := h.locations.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loc)
}

// ListLocations handles GET /locations
func (h *CatalogHandler) ListLocations(c *gin.Context) {
	locs, err := h.locations.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, locs)
}

// CreateTaxConfig handles POST /tax-configs
func (h *CatalogHandler) CreateTaxConfig(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req catalogapp.CreateTaxConfigRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cfg, err := h.taxes.Create(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cfg)
}

// ListTaxConfigs handles GET /tax-configs
func (h *CatalogHandler) ListTaxConfigs(c *gin.Context) {
	cfgs, err := h.taxes.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cfgs)
}

// SelectTaxConfig handles POST /tax-configs/:id/select
func (h *CatalogHandler) SelectTaxConfig(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	cfg, err := h.taxes.Select(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cfg)
}

// CurrentTaxConfig handles GET /tax-configs/current
func (h *CatalogHandler) CurrentTaxConfig(c *gin.Context) {
	cfg := h.taxes.Current()
	if cfg == nil {
		h.HandleError(c, shared.NotFoundf("no tax configuration selected"))
		return
	}
	h.Success(c, catalogapp.ToTaxConfigResponse(cfg, true))
}
