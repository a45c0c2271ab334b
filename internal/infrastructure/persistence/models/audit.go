package models

import (
	"encoding/json"
	"time"

	"github.com/erp/fulfillment/internal/domain/audit"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var modelLogger = zap.L().Named("audit.models")

// AuditLogModel is the persistence model for an audit log entry.
// event_id is unique so a redelivered event is stored once.
type AuditLogModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	EntityType  string    `gorm:"type:varchar(50);not null;index:idx_audit_logs_entity,priority:1"`
	EntityID    uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_logs_entity,priority:2"`
	Action      string    `gorm:"type:varchar(100);not null"`
	ChangesJSON string    `gorm:"column:changes;type:jsonb;not null;default:'[]'"`
	Actor       string    `gorm:"type:varchar(100);not null;default:'';index"`
	OccurredAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain audit Log.
func (m *AuditLogModel) ToDomain() *audit.Log {
	changes := []shared.FieldDiff{}
	if m.ChangesJSON != "" && m.ChangesJSON != "[]" {
		if err := json.Unmarshal([]byte(m.ChangesJSON), &changes); err != nil {
			modelLogger.Warn("failed to parse audit changes JSON",
				zap.String("audit_log_id", m.ID.String()),
				zap.String("raw_json", m.ChangesJSON),
				zap.Error(err))
			changes = []shared.FieldDiff{}
		}
	}
	return &audit.Log{
		ID:         m.ID,
		EventID:    m.EventID,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Action:     m.Action,
		Changes:    changes,
		Actor:      m.Actor,
		OccurredAt: m.OccurredAt,
	}
}

// AuditLogModelFromDomain creates a new persistence model from a domain audit Log.
func AuditLogModelFromDomain(l *audit.Log) (*AuditLogModel, error) {
	changes := l.Changes
	if changes == nil {
		changes = []shared.FieldDiff{}
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		return nil, err
	}
	return &AuditLogModel{
		ID:          l.ID,
		EventID:     l.EventID,
		EntityType:  l.EntityType,
		EntityID:    l.EntityID,
		Action:      l.Action,
		ChangesJSON: string(raw),
		Actor:       l.Actor,
		OccurredAt:  l.OccurredAt,
	}, nil
}

// AllModels lists every persistence model in dependency order, for
// AutoMigrate in tests and local sqlite runs
func AllModels() []any {
	return []any{
		&ItemModel{},
		&LocationModel{},
		&LocationItemModel{},
		&TaxConfigModel{},
		&TaxSelectionModel{},
		&StockRecordModel{},
		&ReservationModel{},
		&OrderModel{},
		&OrderItemModel{},
		&PaymentReceiptModel{},
		&CartModel{},
		&CartItemModel{},
		&AuditLogModel{},
	}
}
