package middleware

import (
	"net/http"
	"strings"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/erp/fulfillment/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Actor headers
const (
	ActorHeader          = "X-Actor-ID"
	ActorKey             = "actor"
	IdempotencyKeyHeader = "Idempotency-Key"

	// MaxActorLength matches the width of the created_by/updated_by columns
	MaxActorLength = 100
)

// Actor reads X-Actor-ID into the gin and request contexts. Mutating methods
// without an actor are rejected with PERMISSION_DENIED; reads pass through.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if len(actor) > MaxActorLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				shared.CodeValidationFailed,
				ActorHeader+" is too long",
				GetRequestID(c),
			))
			return
		}

		if actor == "" {
			if isMutating(c.Request.Method) {
				c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
					shared.CodePermissionDenied,
					ActorHeader+" header is required",
					GetRequestID(c),
				))
				return
			}
			c.Next()
			return
		}

		c.Set(ActorKey, actor)
		c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// GetActor returns the actor stored by Actor
func GetActor(c *gin.Context) string {
	return c.GetString(ActorKey)
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
