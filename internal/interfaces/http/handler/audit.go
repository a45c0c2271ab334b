package handler

import (
	"context"

	auditapp "github.com/erp/fulfillment/internal/application/audit"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// AuditService queries the audit trail
type AuditService interface {
	List(ctx context.Context, filter auditapp.LogListFilter) (*shared.Paginated[auditapp.LogResponse], error)
}

// AuditHandler serves the audit log
type AuditHandler struct {
	BaseHandler
	audit AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(audit AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List handles GET /audit-logs?entity_type=&entity_id=&actor=
func (h *AuditHandler) List(c *gin.Context) {
	var filter auditapp.LogListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if c.Query("entity_id") != "" {
		id, ok := h.uuidQuery(c, "entity_id")
		if !ok {
			return
		}
		filter.EntityID = &id
	}

	page, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize)
}
