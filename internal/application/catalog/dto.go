package catalog

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemRequest represents a request to create a catalog item
type CreateItemRequest struct {
	SKU            string           `json:"sku" binding:"required,min=1,max=50"`
	Name           string           `json:"name" binding:"required,min=1,max=200"`
	Price          decimal.Decimal  `json:"price" binding:"required"`
	UnitsPerBox    int              `json:"units_per_box" binding:"min=0"`
	WholesalePrice *decimal.Decimal `json:"wholesale_price"`
	RetailPrice    *decimal.Decimal `json:"retail_price"`
	PromotionPrice *decimal.Decimal `json:"promotion_price"`
}

// ItemResponse represents a catalog item in API responses
type ItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
	PromotionPrice decimal.Decimal `json:"promotion_price"`
	IsPromotion    bool            `json:"is_promotion"`
	TieredPricing  bool            `json:"tiered_pricing"`
	UnitsPerBox    int             `json:"units_per_box"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToItemResponse converts a domain Item to a response
func ToItemResponse(i *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:             i.ID,
		SKU:            i.SKU,
		Name:           i.Name,
		Price:          i.Price,
		WholesalePrice: i.WholesalePrice,
		RetailPrice:    i.RetailPrice,
		PromotionPrice: i.PromotionPrice,
		IsPromotion:    i.IsPromotion,
		TieredPricing:  i.TieredPricing,
		UnitsPerBox:    i.UnitsPerBox,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// ItemListFilter represents filter options for the item list
type ItemListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PromotionRequest starts or ends a promotion
type PromotionRequest struct {
	Price *decimal.Decimal `json:"price"`
}

// CreateLocationRequest represents a request to create a location
type CreateLocationRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
	Name string `json:"name" binding:"max=200"`
}

// LocationResponse represents a location in API responses
type LocationResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ToLocationResponse converts a domain Location to a response
func ToLocationResponse(l *catalog.Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Code:      l.Code,
		Name:      l.Name,
		CreatedBy: l.CreatedBy,
		CreatedAt: l.CreatedAt,
	}
}

// CreateTaxConfigRequest represents a request to create a tax configuration
type CreateTaxConfigRequest struct {
	Name             string          `json:"name" binding:"required,min=1,max=100"`
	RetailPercent    decimal.Decimal `json:"retail_percent"`
	WholesalePercent decimal.Decimal `json:"wholesale_percent"`
	MinWholesaleQty  int64           `json:"min_wholesale_qty" binding:"required,min=1"`
}

// TaxConfigResponse represents a tax configuration in API responses
type TaxConfigResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	RetailPercent    decimal.Decimal `json:"retail_percent"`
	WholesalePercent decimal.Decimal `json:"wholesale_percent"`
	MinWholesaleQty  int64           `json:"min_wholesale_qty"`
	Selected         bool            `json:"selected"`
	CreatedBy        string          `json:"created_by"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ToTaxConfigResponse converts a domain TaxConfig to a response
func ToTaxConfigResponse(c *catalog.TaxConfig, selected bool) TaxConfigResponse {
	return TaxConfigResponse{
		ID:               c.ID,
		Name:             c.Name,
		RetailPercent:    c.RetailPercent,
		WholesalePercent: c.WholesalePercent,
		MinWholesaleQty:  c.MinWholesaleQty,
		Selected:         selected,
		CreatedBy:        c.CreatedBy,
		CreatedAt:        c.CreatedAt,
	}
}
