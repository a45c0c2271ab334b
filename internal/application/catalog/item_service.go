package catalog

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// ItemService handles catalog item operations
type ItemService struct {
	itemRepo catalog.ItemRepository
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo catalog.ItemRepository) *ItemService {
	return &ItemService{itemRepo: itemRepo}
}

// Create creates a new catalog item
func (s *ItemService) Create(ctx context.Context, req CreateItemRequest, actor string) (*ItemResponse, error) {
	item, err := catalog.NewItem(req.SKU, req.Name, req.Price, req.UnitsPerBox, actor)
	if err != nil {
		return nil, err
	}
	if req.WholesalePrice != nil || req.RetailPrice != nil {
		wholesale, retail := item.Price, item.Price
		if req.WholesalePrice != nil {
			wholesale = *req.WholesalePrice
		}
		if req.RetailPrice != nil {
			retail = *req.RetailPrice
		}
		if err := item.SetTiers(wholesale, retail); err != nil {
			return nil, err
		}
	}
	if req.PromotionPrice != nil {
		if err := item.StartPromotion(*req.PromotionPrice); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// GetByID retrieves an active item
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// List retrieves active items with pagination
func (s *ItemService) List(ctx context.Context, filter ItemListFilter) (*shared.Paginated[ItemResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}

	items, total, err := s.itemRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	page := shared.NewPaginated(out, total, f.Page, f.PageSize)
	return &page, nil
}

// SetPromotion starts a promotion at req.Price, or ends it when no price is given
func (s *ItemService) SetPromotion(ctx context.Context, id uuid.UUID, req PromotionRequest, actor string) (*ItemResponse, error) {
	item, err := s.itemRepo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Price == nil {
		item.EndPromotion()
	} else if err := item.StartPromotion(*req.Price); err != nil {
		return nil, err
	}
	item.Touch(actor)

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}
