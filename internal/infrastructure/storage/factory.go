package storage

import (
	"context"
	"fmt"

	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	infraconfig "github.com/erp/fulfillment/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New builds the object storage named by cfg.Provider. The S3 bucket is
// created when missing.
func New(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (tradeapp.ObjectStorage, error) {
	switch cfg.Provider {
	case "", infraconfig.StorageProviderStub:
		logger.Warn("using in-memory object storage; uploaded files are lost on restart")
		return NewStubObjectStorage(), nil
	case infraconfig.StorageProviderS3:
		s, err := NewS3ObjectStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("using S3 object storage", zap.String("bucket", s.Bucket()))
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}
