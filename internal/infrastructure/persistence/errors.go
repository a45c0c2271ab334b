package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/fulfillment/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver errors to domain errors. Unique violations
// become CONFLICT and missing rows NOT_FOUND.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if isUniqueViolation(err) {
		return shared.ErrConflict
	}
	return err
}

// isUniqueViolation recognizes duplicate-key failures from postgres and
// sqlite, translated or raw
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// casUpdate writes values to the row of an aggregate only if the stored
// version is still the one the aggregate was loaded with. Zero rows affected
// means another writer got there first. Callers mark the aggregate clean once
// the whole write succeeded.
func casUpdate(ctx context.Context, db *gorm.DB, model any, root *shared.BaseAggregateRoot, values map[string]any) error {
	values["version"] = root.Version
	values["updated_at"] = root.UpdatedAt
	values["updated_by"] = root.UpdatedBy

	result := db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", root.ID, root.ExpectedVersion()).
		Updates(values)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			"record "+root.ID.String()+" was modified by another process")
	}
	return nil
}
