package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/fulfillment/internal/domain/audit"
	"github.com/erp/fulfillment/internal/domain/shared"
	"go.uber.org/zap"
)

// Subscriber writes an audit log entry for every domain event it receives.
// It is registered on the event bus for all event types.
type Subscriber struct {
	repo   audit.Repository
	logger *zap.Logger
}

// NewSubscriber creates a new audit Subscriber
func NewSubscriber(repo audit.Repository, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{repo: repo, logger: logger}
}

// EventTypes returns nil so the subscriber receives every event
func (s *Subscriber) EventTypes() []string {
	return nil
}

// Handle persists the audit entry of an event. Redelivered events are
// recognised by their event id and skipped.
func (s *Subscriber) Handle(ctx context.Context, event shared.DomainEvent) error {
	entry, err := audit.FromEvent(event)
	if err != nil {
		return err
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			s.logger.Debug("audit entry already written",
				zap.String("event_id", entry.EventID.String()),
				zap.String("event_type", entry.Action),
			)
			return nil
		}
		return fmt.Errorf("write audit log for %s: %w", entry.Action, err)
	}
	return nil
}

var _ shared.EventHandler = (*Subscriber)(nil)
