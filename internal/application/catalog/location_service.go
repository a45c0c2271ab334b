package catalog

import (
	"context"

	"github.com/erp/fulfillment/internal/domain/catalog"
)

// LocationService handles shelf locations
type LocationService struct {
	locationRepo catalog.LocationRepository
}

// NewLocationService creates a new LocationService
func NewLocationService(locationRepo catalog.LocationRepository) *LocationService {
	return &LocationService{locationRepo: locationRepo}
}

// Create creates a location. Codes are unique after normalization.
func (s *LocationService) Create(ctx context.Context, req CreateLocationRequest, actor string) (*LocationResponse, error) {
	loc, err := catalog.NewLocation(req.Code, req.Name, actor)
	if err != nil {
		return nil, err
	}
	if err := s.locationRepo.Save(ctx, loc); err != nil {
		return nil, err
	}
	resp := ToLocationResponse(loc)
	return &resp, nil
}

// GetByCode resolves a location code
func (s *LocationService) GetByCode(ctx context.Context, code string) (*LocationResponse, error) {
	loc, err := s.locationRepo.FindLocationByCode(ctx, catalog.NormalizeLocationCode(code))
	if err != nil {
		return nil, err
	}
	resp := ToLocationResponse(loc)
	return &resp, nil
}

// List returns every active location
func (s *LocationService) List(ctx context.Context) ([]LocationResponse, error) {
	locations, err := s.locationRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]LocationResponse, len(locations))
	for i := range locations {
		out[i] = ToLocationResponse(&locations[i])
	}
	return out, nil
}
