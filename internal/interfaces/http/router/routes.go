package router

import (
	"net/http"
	"time"

	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/erp/fulfillment/internal/interfaces/http/dto"
	"github.com/erp/fulfillment/internal/interfaces/http/handler"
	"github.com/erp/fulfillment/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups every HTTP handler of the API
type Handlers struct {
	System    *handler.SystemHandler
	Catalog   *handler.CatalogHandler
	Inventory *handler.InventoryHandler
	Cart      *handler.CartHandler
	Order     *handler.OrderHandler
	Audit     *handler.AuditHandler
	Backfill  *handler.BackfillHandler
}

// EngineConfig configures the middleware chain
type EngineConfig struct {
	Mode           string
	ServiceName    string
	TracingEnabled bool
	MaxBodySize    int64
	RequestTimeout time.Duration
	CORS           middleware.CORSConfig
	TrustedProxies []string
	// Optional; nil disables the stage
	Metrics     gin.HandlerFunc
	RateLimiter *middleware.RateLimiter
}

// NewEngine builds the gin engine with the middleware chain, /health and
// the /api/v1 routes
func NewEngine(cfg EngineConfig, log *zap.Logger, h Handlers) (*gin.Engine, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		middleware.Actor(),
		middleware.SpanEnricher(),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics)
	}
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	engine.Use(middleware.Timeout(cfg.RequestTimeout))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	for _, g := range apiGroups(h) {
		r.Register(g)
	}
	r.Setup()
	log.Debug("api routes registered", zap.Strings("routes", r.Routes()))
	return engine, nil
}

func apiGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.System != nil {
		groups = append(groups, NewDomainGroup("system", "/system").
			GET("/info", h.System.GetSystemInfo))
	}

	if h.Catalog != nil {
		groups = append(groups,
			NewDomainGroup("items", "/items").
				POST("", h.Catalog.CreateItem).
				GET("", h.Catalog.ListItems).
				GET("/:id", h.Catalog.GetItem).
				PUT("/:id/promotion", h.Catalog.SetPromotion),
			NewDomainGroup("locations", "/locations").
				POST("", h.Catalog.CreateLocation).
				GET("", h.Catalog.ListLocations).
				GET("/:code", h.Catalog.GetLocation),
			NewDomainGroup("tax-configs", "/tax-configs").
				POST("", h.Catalog.CreateTaxConfig).
				GET("", h.Catalog.ListTaxConfigs).
				GET("/current", h.Catalog.CurrentTaxConfig).
				POST("/:id/select", h.Catalog.SelectTaxConfig),
		)
	}

	if h.Inventory != nil {
		groups = append(groups,
			NewDomainGroup("stock", "/stock").
				GET("/quantity", h.Inventory.PhysicalStock).
				GET("/records", h.Inventory.ListRecords).
				GET("/records/:id", h.Inventory.GetRecord).
				POST("/receive", h.Inventory.Receive).
				POST("/shelve", h.Inventory.Shelve).
				POST("/transfer", h.Inventory.Transfer).
				POST("/consolidate", h.Inventory.Consolidate).
				POST("/remove", h.Inventory.Remove).
				POST("/remove-batch", h.Inventory.RemoveBatch),
			NewDomainGroup("reservations", "/reservations").
				POST("", h.Inventory.Reserve).
				GET("/orders/:id", h.Inventory.ListReservations).
				DELETE("/orders/:id", h.Inventory.Release),
			NewDomainGroup("availability", "/availability").
				GET("", h.Inventory.Availability),
		)
	}

	if h.Cart != nil {
		groups = append(groups,
			NewDomainGroup("carts", "/carts").
				POST("", h.Cart.Open).
				GET("/:id", h.Cart.Get).
				POST("/:id/lines", h.Cart.AddLine).
				PUT("/:id/lines/:item_id", h.Cart.UpdateLine).
				DELETE("/:id/lines/:item_id", h.Cart.RemoveLine).
				POST("/:id/cancel", h.Cart.Cancel),
			NewDomainGroup("quotes", "/quotes").
				POST("", h.Cart.Quote),
		)
	}

	if h.Order != nil {
		groups = append(groups, NewDomainGroup("orders", "/orders").
			POST("", h.Order.Place).
			GET("", h.Order.List).
			GET("/number/:number", h.Order.GetByNumber).
			GET("/:id", h.Order.Get).
			POST("/:id/pick", h.Order.RecordPick).
			POST("/:id/verify", h.Order.Verify).
			POST("/:id/confirm-payment", h.Order.ConfirmPayment).
			POST("/:id/confirm-pending", h.Order.ConfirmPending).
			POST("/:id/dock", h.Order.AssignDock).
			POST("/:id/dispatch", h.Order.Dispatch).
			POST("/:id/deliver", h.Order.Deliver).
			PUT("/:id/lines", h.Order.AdjustPending).
			POST("/:id/cancel", h.Order.Cancel).
			POST("/:id/reactivate", h.Order.Reactivate).
			POST("/:id/proof", h.Order.UploadProof).
			GET("/:id/proof", h.Order.ProofLink))
	}

	if h.Audit != nil {
		groups = append(groups, NewDomainGroup("audit", "/audit-logs").
			GET("", h.Audit.List))
	}

	if h.Backfill != nil {
		groups = append(groups, NewDomainGroup("backfill", "/reservations/backfill").
			GET("", h.Backfill.Status).
			POST("", h.Backfill.Trigger))
	}

	return groups
}
