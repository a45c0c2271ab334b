package audit

import (
	"context"
	"time"

	"github.com/erp/fulfillment/internal/domain/audit"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
)

// LogResponse represents an audit log entry in API responses
type LogResponse struct {
	ID         uuid.UUID          `json:"id"`
	EventID    uuid.UUID          `json:"event_id"`
	EntityType string             `json:"entity_type"`
	EntityID   uuid.UUID          `json:"entity_id"`
	Action     string             `json:"action"`
	Changes    []shared.FieldDiff `json:"changes"`
	Actor      string             `json:"actor"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// ToLogResponse converts an audit log to a response
func ToLogResponse(l *audit.Log) LogResponse {
	return LogResponse{
		ID:         l.ID,
		EventID:    l.EventID,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Action:     l.Action,
		Changes:    l.Changes,
		Actor:      l.Actor,
		OccurredAt: l.OccurredAt,
	}
}

// LogListFilter represents filter options for the audit log list
type LogListFilter struct {
	EntityType string     `form:"entity_type" binding:"max=50"`
	EntityID   *uuid.UUID `form:"-"`
	Actor      string     `form:"actor"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,max=100"`
}

// Service queries the audit trail
type Service struct {
	repo audit.Repository
}

// NewService creates a new audit Service
func NewService(repo audit.Repository) *Service {
	return &Service{repo: repo}
}

// List returns audit entries, newest first
func (s *Service) List(ctx context.Context, filter LogListFilter) (*shared.Paginated[LogResponse], error) {
	f := audit.Filter{
		Filter:     shared.DefaultFilter(),
		EntityType: filter.EntityType,
		EntityID:   filter.EntityID,
		Actor:      filter.Actor,
	}
	f.OrderBy = "occurred_at"
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	logs, total, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]LogResponse, len(logs))
	for i := range logs {
		out[i] = ToLogResponse(&logs[i])
	}
	page := shared.NewPaginated(out, total, f.Page, f.PageSize)
	return &page, nil
}
