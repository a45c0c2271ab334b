package handler

import (
	"context"
	"io"
	"strconv"

	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/interfaces/http/dto"
	"github.com/erp/fulfillment/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FulfillmentService is the order placement and fulfillment use case surface
type FulfillmentService interface {
	PlaceOrder(ctx context.Context, req tradeapp.PlaceOrderRequest) (*tradeapp.OrderResponse, error)
	RecordPick(ctx context.Context, orderID uuid.UUID, req tradeapp.RecordPickRequest, actor string) (*tradeapp.PickResponse, error)
	Verify(ctx context.Context, orderID uuid.UUID, req tradeapp.VerifyRequest, actor string) (*tradeapp.VerifyResponse, error)
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, actor string) (*tradeapp.OrderResponse, error)
	ConfirmPending(ctx context.Context, orderID uuid.UUID, actor string) (*tradeapp.OrderResponse, error)
	AssignDock(ctx context.Context, orderID uuid.UUID, req tradeapp.AssignDockRequest, actor string) (*tradeapp.OrderResponse, error)
	Dispatch(ctx context.Context, orderID uuid.UUID, actor string) (*tradeapp.OrderResponse, error)
	Deliver(ctx context.Context, orderID uuid.UUID, actor string) (*tradeapp.OrderResponse, error)
	AdjustPending(ctx context.Context, orderID uuid.UUID, req tradeapp.AdjustPendingRequest, actor string) (*tradeapp.OrderResponse, error)
	Cancel(ctx context.Context, orderID uuid.UUID, req tradeapp.CancelOrderRequest, actor string) (*tradeapp.OrderResponse, error)
	Reactivate(ctx context.Context, orderID uuid.UUID, actor string) (*tradeapp.OrderResponse, error)
	AttachProofOfPayment(ctx context.Context, orderID uuid.UUID, filename, contentType string, body io.Reader, size int64, actor string) (*tradeapp.OrderResponse, error)
	ProofOfPaymentLink(ctx context.Context, orderID uuid.UUID) (*tradeapp.ProofLinkResponse, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*tradeapp.OrderResponse, error)
	GetOrderByNumber(ctx context.Context, number int64) (*tradeapp.OrderResponse, error)
	ListOrders(ctx context.Context, filter tradeapp.OrderListFilter) (*shared.Paginated[tradeapp.OrderResponse], error)
}

// OrderHandler serves order placement and the fulfillment workflow
type OrderHandler struct {
	BaseHandler
	orders        FulfillmentService
	maxUploadSize int64
}

// NewOrderHandler creates a new OrderHandler. maxUploadSize bounds proof of
// payment uploads in bytes.
func NewOrderHandler(orders FulfillmentService, maxUploadSize int64) *OrderHandler {
	return &OrderHandler{
		orders:        orders,
		maxUploadSize: maxUploadSize,
	}
}

// MaxIdempotencyKeyLength bounds the Idempotency-Key header
const MaxIdempotencyKeyLength = 200

// Place handles POST /orders. A repeated Idempotency-Key is answered with
// 409 while the first placement stands.
func (h *OrderHandler) Place(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	key := c.GetHeader(middleware.IdempotencyKeyHeader)
	if len(key) > MaxIdempotencyKeyLength {
		h.BadRequest(c, middleware.IdempotencyKeyHeader+" is too long")
		return
	}
	var req tradeapp.PlaceOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Actor = actor
	req.IdempotencyKey = key

	order, err := h.orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetByNumber handles GET /orders/number/:number
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil || number <= 0 {
		h.BadRequest(c, "Invalid order number")
		return
	}

	order, err := h.orders.GetOrderByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter tradeapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize)
}

// RecordPick handles POST /orders/:id/pick
func (h *OrderHandler) RecordPick(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req tradeapp.RecordPickRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.orders.RecordPick(c.Request.Context(), id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Verify handles POST /orders/:id/verify
func (h *OrderHandler) Verify(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req tradeapp.VerifyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.orders.Verify(c.Request.Context(), id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AssignDock handles POST /orders/:id/dock
func (h *OrderHandler) AssignDock(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req tradeapp.AssignDockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.AssignDock(c.Request.Context(), id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// AdjustPending handles PUT /orders/:id/lines
func (h *OrderHandler) AdjustPending(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req tradeapp.AdjustPendingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.AdjustPending(c.Request.Context(), id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel handles POST /orders/:id/cancel. The body is optional.
func (h *OrderHandler) Cancel(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req tradeapp.CancelOrderRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ConfirmPayment handles POST /orders/:id/confirm-payment
func (h *OrderHandler) ConfirmPayment(c *gin.Context) {
	h.transition(c, h.orders.ConfirmPayment)
}

// ConfirmPending handles POST /orders/:id/confirm-pending
func (h *OrderHandler) ConfirmPending(c *gin.Context) {
	h.transition(c, h.orders.ConfirmPending)
}

// Dispatch handles POST /orders/:id/dispatch
func (h *OrderHandler) Dispatch(c *gin.Context) {
	h.transition(c, h.orders.Dispatch)
}

// Deliver handles POST /orders/:id/deliver
func (h *OrderHandler) Deliver(c *gin.Context) {
	h.transition(c, h.orders.Deliver)
}

// Reactivate handles POST /orders/:id/reactivate
func (h *OrderHandler) Reactivate(c *gin.Context) {
	h.transition(c, h.orders.Reactivate)
}

// UploadProof handles POST /orders/:id/proof as multipart form field "file"
func (h *OrderHandler) UploadProof(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "multipart field \"file\" is required")
		return
	}
	if h.maxUploadSize > 0 && fh.Size > h.maxUploadSize {
		h.Error(c, dto.ErrCodeRequestTooLarge, "Proof of payment exceeds maximum allowed size")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	order, err := h.orders.AttachProofOfPayment(c.Request.Context(), id, fh.Filename, contentType, f, fh.Size, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ProofLink handles GET /orders/:id/proof
func (h *OrderHandler) ProofLink(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	link, err := h.orders.ProofOfPaymentLink(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}

// transition runs a body-less state change on the order named by :id
func (h *OrderHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID, string) (*tradeapp.OrderResponse, error)) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	order, err := fn(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

func (h *OrderHandler) actorAndID(c *gin.Context) (string, uuid.UUID, bool) {
	actor, ok := h.actor(c)
	if !ok {
		return "", uuid.Nil, false
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return "", uuid.Nil, false
	}
	return actor, id, true
}
