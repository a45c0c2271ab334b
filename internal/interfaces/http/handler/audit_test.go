package handler

import (
	"net/http"
	"testing"

	auditapp "github.com/erp/fulfillment/internal/application/audit"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAuditEngine(svc *mockAuditService) *gin.Engine {
	h := NewAuditHandler(svc)
	return newTestEngine(func(r *gin.Engine) {
		r.GET("/audit-logs", h.List)
	})
}

func TestAuditHandler_List(t *testing.T) {
	t.Run("filters by entity", func(t *testing.T) {
		svc := new(mockAuditService)
		entityID := uuid.New()
		svc.On("List", mock.Anything, mock.MatchedBy(func(f auditapp.LogListFilter) bool {
			return f.EntityType == "order" && f.EntityID != nil && *f.EntityID == entityID && f.Actor == "op-1"
		})).Return(&shared.Paginated[auditapp.LogResponse]{
			Items:    []auditapp.LogResponse{{EntityType: "order", EntityID: entityID, Action: "OrderPlaced"}},
			Total:    1,
			Page:     1,
			PageSize: 20,
		}, nil).Once()

		w := do(newAuditEngine(svc), http.MethodGet, "/audit-logs?entity_type=order&entity_id="+entityID.String()+"&actor=op-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, int64(1), resp.Meta.Total)
		svc.AssertExpectations(t)
	})

	t.Run("without entity id", func(t *testing.T) {
		svc := new(mockAuditService)
		svc.On("List", mock.Anything, mock.MatchedBy(func(f auditapp.LogListFilter) bool {
			return f.EntityID == nil
		})).Return(&shared.Paginated[auditapp.LogResponse]{Page: 1, PageSize: 20}, nil).Once()

		w := do(newAuditEngine(svc), http.MethodGet, "/audit-logs", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed entity id", func(t *testing.T) {
		svc := new(mockAuditService)

		w := do(newAuditEngine(svc), http.MethodGet, "/audit-logs?entity_id=42", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}
