package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaxConfigService manages tax configurations and holds the selected one in
// memory. Readers never block; Select persists first and then swaps the
// pointer, so readers see either the old or the new configuration.
type TaxConfigService struct {
	repo     catalog.TaxConfigRepository
	current  atomic.Pointer[catalog.TaxConfig]
	selectMu sync.Mutex
	logger   *zap.Logger
}

// NewTaxConfigService creates a new TaxConfigService
func NewTaxConfigService(repo catalog.TaxConfigRepository, logger *zap.Logger) *TaxConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaxConfigService{repo: repo, logger: logger}
}

// Load reads the persisted selection, typically once at startup
func (s *TaxConfigService) Load(ctx context.Context) error {
	cfg, err := s.repo.FindSelected(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.current.Store(nil)
			s.logger.Info("no tax config selected, default rates apply")
			return nil
		}
		return err
	}
	s.current.Store(cfg)
	s.logger.Info("tax config loaded", zap.String("name", cfg.Name))
	return nil
}

// Current returns the selected configuration, nil when none is selected
func (s *TaxConfigService) Current() *catalog.TaxConfig {
	return s.current.Load()
}

// Create stores a new configuration without selecting it
func (s *TaxConfigService) Create(ctx context.Context, req CreateTaxConfigRequest, actor string) (*TaxConfigResponse, error) {
	cfg, err := catalog.NewTaxConfig(req.Name, req.RetailPercent, req.WholesalePercent, req.MinWholesaleQty, actor)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cfg); err != nil {
		return nil, err
	}
	resp := ToTaxConfigResponse(cfg, false)
	return &resp, nil
}

// List returns every active configuration, flagging the selected one
func (s *TaxConfigService) List(ctx context.Context) ([]TaxConfigResponse, error) {
	configs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var selectedID uuid.UUID
	if cur := s.Current(); cur != nil {
		selectedID = cur.ID
	}
	out := make([]TaxConfigResponse, len(configs))
	for i := range configs {
		out[i] = ToTaxConfigResponse(&configs[i], configs[i].ID == selectedID)
	}
	return out, nil
}

// Select makes id the only selected configuration
func (s *TaxConfigService) Select(ctx context.Context, id uuid.UUID, actor string) (*TaxConfigResponse, error) {
	s.selectMu.Lock()
	defer s.selectMu.Unlock()

	cfg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Select(ctx, id, actor); err != nil {
		return nil, err
	}
	previous := s.current.Swap(cfg)

	fields := []zap.Field{zap.String("name", cfg.Name), zap.String("actor", actor)}
	if previous != nil {
		fields = append(fields, zap.String("previous", previous.Name))
	}
	s.logger.Info("tax config selected", fields...)

	resp := ToTaxConfigResponse(cfg, true)
	return &resp, nil
}

// Ensure TaxConfigService implements catalog.TaxConfigReader
var _ catalog.TaxConfigReader = (*TaxConfigService)(nil)
