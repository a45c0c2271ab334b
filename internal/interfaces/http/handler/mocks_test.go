package handler

import (
	"context"
	"io"

	auditapp "github.com/erp/fulfillment/internal/application/audit"
	catalogapp "github.com/erp/fulfillment/internal/application/catalog"
	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	"github.com/erp/fulfillment/internal/domain/catalog"
	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// result returns the first mock return value as T, tolerating nil
func result[T any](args mock.Arguments) (T, error) {
	var zero T
	if v := args.Get(0); v != nil {
		zero = v.(T)
	}
	return zero, args.Error(1)
}

type mockItemService struct{ mock.Mock }

func (m *mockItemService) Create(ctx context.Context, req catalogapp.CreateItemRequest, actor string) (*catalogapp.ItemResponse, error) {
	return result[*catalogapp.ItemResponse](m.Called(ctx, req, actor))
}

func (m *mockItemService) GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ItemResponse, error) {
	return result[*catalogapp.ItemResponse](m.Called(ctx, id))
}

func (m *mockItemService) List(ctx context.Context, filter catalogapp.ItemListFilter) (*shared.Paginated[catalogapp.ItemResponse], error) {
	return result[*shared.Paginated[catalogapp.ItemResponse]](m.Called(ctx, filter))
}

func (m *mockItemService) SetPromotion(ctx context.Context, id uuid.UUID, req catalogapp.PromotionRequest, actor string) (*catalogapp.ItemResponse, error) {
	return result[*catalogapp.ItemResponse](m.Called(ctx, id, req, actor))
}

type mockLocationService struct{ mock.Mock }

func (m *mockLocationService) Create(ctx context.Context, req catalogapp.CreateLocationRequest, actor string) (*catalogapp.LocationResponse, error) {
	return result[*catalogapp.LocationResponse](m.Called(ctx, req, actor))
}

func (m *mockLocationService) GetByCode(ctx context.Context, code string) (*catalogapp.LocationResponse, error) {
	return result[*catalogapp.LocationResponse](m.Called(ctx, code))
}

func (m *mockLocationService) List(ctx context.Context) ([]catalogapp.LocationResponse, error) {
	return result[[]catalogapp.LocationResponse](m.Called(ctx))
}

type mockTaxConfigService struct{ mock.Mock }

func (m *mockTaxConfigService) Create(ctx context.Context, req catalogapp.CreateTaxConfigRequest, actor string) (*catalogapp.TaxConfigResponse, error) {
	return result[*catalogapp.TaxConfigResponse](m.Called(ctx, req, actor))
}

func (m *mockTaxConfigService) List(ctx context.Context) ([]catalogapp.TaxConfigResponse, error) {
	return result[[]catalogapp.TaxConfigResponse](m.Called(ctx))
}

func (m *mockTaxConfigService) Select(ctx context.Context, id uuid.UUID, actor string) (*catalogapp.TaxConfigResponse, error) {
	return result[*catalogapp.TaxConfigResponse](m.Called(ctx, id, actor))
}

func (m *mockTaxConfigService) Current() *catalog.TaxConfig {
	if v := m.Called().Get(0); v != nil {
		return v.(*catalog.TaxConfig)
	}
	return nil
}

type mockStockService struct{ mock.Mock }

func (m *mockStockService) QueryAvailable(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType) (int64, error) {
	args := m.Called(ctx, itemID, unitType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStockService) GetRecord(ctx context.Context, id uuid.UUID) (*inventoryapp.StockRecordResponse, error) {
	return result[*inventoryapp.StockRecordResponse](m.Called(ctx, id))
}

func (m *mockStockService) ListByItem(ctx context.Context, itemID uuid.UUID) ([]inventoryapp.StockRecordResponse, error) {
	return result[[]inventoryapp.StockRecordResponse](m.Called(ctx, itemID))
}

func (m *mockStockService) ListByLocation(ctx context.Context, locationID uuid.UUID) ([]inventoryapp.StockRecordResponse, error) {
	return result[[]inventoryapp.StockRecordResponse](m.Called(ctx, locationID))
}

func (m *mockStockService) ReceivePurchase(ctx context.Context, in inventoryapp.ReceiveInput) (*inventoryapp.StockRecordResponse, error) {
	return result[*inventoryapp.StockRecordResponse](m.Called(ctx, in))
}

func (m *mockStockService) Shelve(ctx context.Context, in inventoryapp.ShelveInput) (*inventoryapp.StockRecordResponse, error) {
	return result[*inventoryapp.StockRecordResponse](m.Called(ctx, in))
}

func (m *mockStockService) Transfer(ctx context.Context, in inventoryapp.TransferInput) (*inventoryapp.TransferResult, error) {
	return result[*inventoryapp.TransferResult](m.Called(ctx, in))
}

func (m *mockStockService) ConsolidateDuplicates(ctx context.Context, locationID uuid.UUID, actor string) ([]inventoryapp.StockRecordResponse, error) {
	return result[[]inventoryapp.StockRecordResponse](m.Called(ctx, locationID, actor))
}

func (m *mockStockService) RemoveFifo(ctx context.Context, in inventoryapp.RemoveFifoInput) (*inventoryapp.RemovalOutcome, error) {
	return result[*inventoryapp.RemovalOutcome](m.Called(ctx, in))
}

func (m *mockStockService) RemoveFifoMany(ctx context.Context, inputs []inventoryapp.RemoveFifoInput) ([]inventoryapp.RemovalOutcome, error) {
	return result[[]inventoryapp.RemovalOutcome](m.Called(ctx, inputs))
}

type mockReservationService struct{ mock.Mock }

func (m *mockReservationService) Reserve(ctx context.Context, in inventoryapp.ReserveInput) (*inventoryapp.ReservationResponse, error) {
	return result[*inventoryapp.ReservationResponse](m.Called(ctx, in))
}

func (m *mockReservationService) Release(ctx context.Context, orderID uuid.UUID, actor string) (int, error) {
	args := m.Called(ctx, orderID, actor)
	return args.Int(0), args.Error(1)
}

func (m *mockReservationService) AvailabilityDetail(ctx context.Context, itemID uuid.UUID, unitType inventory.UnitType) (*inventoryapp.AvailabilityResponse, error) {
	return result[*inventoryapp.AvailabilityResponse](m.Called(ctx, itemID, unitType))
}

func (m *mockReservationService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]inventoryapp.ReservationResponse, error) {
	return result[[]inventoryapp.ReservationResponse](m.Called(ctx, orderID))
}

type mockCartService struct{ mock.Mock }

func (m *mockCartService) Open(ctx context.Context, req tradeapp.OpenCartRequest, actor string) (*tradeapp.CartResponse, error) {
	return result[*tradeapp.CartResponse](m.Called(ctx, req, actor))
}

func (m *mockCartService) Get(ctx context.Context, id uuid.UUID) (*tradeapp.CartResponse, error) {
	return result[*tradeapp.CartResponse](m.Called(ctx, id))
}

func (m *mockCartService) AddLine(ctx context.Context, cartID uuid.UUID, req tradeapp.LineRequest, actor string) (*tradeapp.CartResponse, error) {
	return result[*tradeapp.CartResponse](m.Called(ctx, cartID, req, actor))
}

func (m *mockCartService) UpdateLine(ctx context.Context, cartID, itemID uuid.UUID, req tradeapp.UpdateLineRequest, actor string) (*tradeapp.CartResponse, error) {
	return result[*tradeapp.CartResponse](m.Called(ctx, cartID, itemID, req, actor))
}

func (m *mockCartService) RemoveLine(ctx context.Context, cartID, itemID uuid.UUID, unitType inventory.UnitType, actor string) (*tradeapp.CartResponse, error) {
	return result[*tradeapp.CartResponse](m.Called(ctx, cartID, itemID, unitType, actor))
}

func (m *mockCartService) Cancel(ctx context.Context, cartID uuid.UUID, actor string) (*tradeapp.CartResponse, error) {
	return result[*tradeapp.CartResponse](m.Called(ctx, cartID, actor))
}

func (m *mockCartService) Quote(ctx context.Context, req tradeapp.QuoteRequest) (*tradeapp.QuoteResponse, error) {
	return result[*tradeapp.QuoteResponse](m.Called(ctx, req))
}

type mockFulfillmentService struct{ mock.Mock }

func (m *mockFulfillmentService) PlaceOrder(ctx context.Context, req tradeapp.PlaceOrderRequest) (*tradeapp.OrderResponse, error) {
	return result[*tradeapp.OrderResponse](m.Called(ctx, req))
}

func (m *mockFulfillmentService) RecordPick(ctx context.Context, orderID uuid.UUID, req tradeapp.RecordPickRequest, actor string) (*tradeapp.PickResponse, error) {
	return result[*tradeapp.PickResponse](m.Called(ctx, orderID, req, actor))
}

func (m *mockFulfillmentService) Verify(ctx context.Context, orderID uuid.UUID, req tradeapp.VerifyRequest, actor string) (*tradeapp.VerifyResponse, error) {
	return result[*tradeapp.VerifyResponse](m.Called(ctx, orderID, req, actor))
}

func (m *mockFulfillmentService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, actor string) (*tradeapp.OrderResponse, error) {
	return result[*tradeapp.OrderResponse](m.Called(ctx, orderID, actor))
}

func (m *mockFulfillmentService) ConfirmPending(ctx context.Context, orderID uuid.UUID, actor string) (*tradeapp.OrderResponse, error) {
	return result[*tradeapp.OrderResponse](m.Called(ctx, orderID, actor))
}

func (m *mockFulfillmentService) AssignDock(ctx context.Context, orderID uuid.UUID, req tradeapp.AssignDockRequest, actor string) (*tradeapp.OrderResponse, error) {
	return result[*tradeapp.OrderResponse](m.Called(ctx, orderID, req, actor))
}

func (m *mockFulfillmentService) Dispatch(ctx context.Context, orderID uuid.UUID, actor string) (*tradeapp.OrderResponse, error) {
	return result[*tradeapp.OrderResponse](m.Called(ctx, orderID, actor))
}

func (m *mockFulfillmentService) Deliver(ctx context.Context, orderID uuid.UUID, actor string) (*tradeapp.OrderResponse, error) {
	return result[*tradeapp.OrderResponse](m.Called(ctx, orderID, actor))
}

func (m *mockFulfillmentService) AdjustPending(ctx context.Context, orderID uuid.UUID, req tradeapp.AdjustPendingRequest, actor string) (*tradeapp.OrderResponse, error) {
	return result[*tradeapp.OrderResponse](m.Called(ctx, orderID, req, actor))
}

func (m *mockFulfillmentService) Cancel(ctx context.Context, orderID uuid.UUID, req tradeapp.CancelOrderRequest, actor string) (*tradeapp.OrderResponse, error) {
	return result[*tradeapp.OrderResponse](m.Called(ctx, orderID, req, actor))
}

func (m *mockFulfillmentService) Reactivate(ctx context.Context, orderID uuid.UUID, actor string) (*tradeapp.OrderResponse, error) {
	return result[*tradeapp.OrderResponse](m.Called(ctx, orderID, actor))
}

func (m *mockFulfillmentService) AttachProofOfPayment(ctx context.Context, orderID uuid.UUID, filename, contentType string, body io.Reader, size int64, actor string) (*tradeapp.OrderResponse, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	return result[*tradeapp.OrderResponse](m.Called(ctx, orderID, filename, contentType, string(data), size, actor))
}

func (m *mockFulfillmentService) ProofOfPaymentLink(ctx context.Context, orderID uuid.UUID) (*tradeapp.ProofLinkResponse, error) {
	return result[*tradeapp.ProofLinkResponse](m.Called(ctx, orderID))
}

func (m *mockFulfillmentService) GetOrder(ctx context.Context, orderID uuid.UUID) (*tradeapp.OrderResponse, error) {
	return result[*tradeapp.OrderResponse](m.Called(ctx, orderID))
}

func (m *mockFulfillmentService) GetOrderByNumber(ctx context.Context, number int64) (*tradeapp.OrderResponse, error) {
	return result[*tradeapp.OrderResponse](m.Called(ctx, number))
}

func (m *mockFulfillmentService) ListOrders(ctx context.Context, filter tradeapp.OrderListFilter) (*shared.Paginated[tradeapp.OrderResponse], error) {
	return result[*shared.Paginated[tradeapp.OrderResponse]](m.Called(ctx, filter))
}

type mockAuditService struct{ mock.Mock }

func (m *mockAuditService) List(ctx context.Context, filter auditapp.LogListFilter) (*shared.Paginated[auditapp.LogResponse], error) {
	return result[*shared.Paginated[auditapp.LogResponse]](m.Called(ctx, filter))
}
