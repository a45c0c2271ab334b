package middleware

import (
	"net/http"
	"strings"
	"testing"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActorRouter(seen, seenCtx *string) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Actor())
	handler := func(c *gin.Context) {
		*seen = GetActor(c)
		*seenCtx = logger.GetActor(c.Request.Context())
		c.Status(http.StatusOK)
	}
	r.GET("/orders", handler)
	r.POST("/orders", handler)
	r.DELETE("/orders/1", handler)
	return r
}

func TestActor(t *testing.T) {
	var seen, seenCtx string
	r := newActorRouter(&seen, &seenCtx)

	t.Run("mutation without actor is denied", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodDelete} {
			path := "/orders"
			if method == http.MethodDelete {
				path = "/orders/1"
			}
			w := perform(r, method, path, "", nil)
			require.Equal(t, http.StatusForbidden, w.Code, method)

			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, shared.CodePermissionDenied, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		}
	})

	t.Run("reads pass without actor", func(t *testing.T) {
		seen = "unset"
		w := perform(r, http.MethodGet, "/orders", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, seen)
	})

	t.Run("actor is stored", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/orders", "", map[string]string{ActorHeader: "  maria  "})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "maria", seen)
		assert.Equal(t, "maria", seenCtx)
	})

	t.Run("oversized actor is rejected", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/orders", "", map[string]string{ActorHeader: strings.Repeat("x", MaxActorLength+1)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, shared.CodeValidationFailed, decodeResponse(t, w).Error.Code)
	})
}
