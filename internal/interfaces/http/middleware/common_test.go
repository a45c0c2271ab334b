package middleware

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	var seenCtx, seenGin string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		seenGin = GetRequestID(c)
		seenCtx = logger.GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("propagates client id", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/x", "", map[string]string{RequestIDHeader: "abc-123"})
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", seenGin)
		assert.Equal(t, "abc-123", seenCtx)
	})

	t.Run("generates when missing", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/x", "", nil)
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
		assert.Equal(t, seenGin, w.Header().Get(RequestIDHeader))
	})

	t.Run("truncates oversized ids", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/x", "", map[string]string{RequestIDHeader: strings.Repeat("a", 300)})
		assert.Len(t, w.Header().Get(RequestIDHeader), MaxRequestIDLength)
	})
}

func TestCORSWithConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://shop.example.com"}

	r := gin.New()
	r.Use(CORSWithConfig(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/x", "", map[string]string{"Origin": "https://shop.example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), ActorHeader)
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/x", "", map[string]string{"Origin": "https://evil.example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight is answered", func(t *testing.T) {
		w := perform(r, http.MethodOptions, "/anything", "", map[string]string{"Origin": "https://shop.example.com"})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("wildcard", func(t *testing.T) {
		wc := gin.New()
		wc.Use(CORSWithConfig(CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true}))
		wc.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := perform(wc, http.MethodGet, "/x", "", map[string]string{"Origin": "https://any.example.com"})
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestSecure(t *testing.T) {
	r := gin.New()
	r.Use(Secure())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/x", "", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(50 * time.Millisecond))
	r.GET("/x", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)

		<-c.Request.Context().Done()
		assert.ErrorIs(t, c.Request.Context().Err(), context.DeadlineExceeded)
		c.Status(http.StatusGatewayTimeout)
	})

	w := perform(r, http.MethodGet, "/x", "", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	t.Run("zero disables", func(t *testing.T) {
		r := gin.New()
		r.Use(Timeout(0))
		r.GET("/x", func(c *gin.Context) {
			_, ok := c.Request.Context().Deadline()
			assert.False(t, ok)
			c.Status(http.StatusOK)
		})
		assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/x", "", nil).Code)
	})
}
