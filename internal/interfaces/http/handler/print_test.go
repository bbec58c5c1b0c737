package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appordering "github.com/orderdesk/backend/internal/application/ordering"
	"github.com/orderdesk/backend/internal/domain/ordering"
	"github.com/orderdesk/backend/internal/domain/shared"
	infra "github.com/orderdesk/backend/internal/infrastructure/printing"
	"github.com/orderdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockBillRepository implements ordering.BillRepository for testing
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*ordering.Bill, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Bill), args.Error(1)
}

func (m *MockBillRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ordering.Bill, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.Bill), args.Error(1)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *ordering.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

// stubTransport always succeeds or fails with a fixed error
type stubTransport struct {
	err error
}

func (t *stubTransport) Print(ctx context.Context, content, printerName string) error {
	return t.err
}

func newPrintTestRouter(orderRepo *MockOrderRepository, billRepo *MockBillRepository, transport *stubTransport) *gin.Engine {
	gin.SetMode(gin.TestMode)
	bus := new(MockEventPublisher)
	bus.On("Publish", mock.Anything, mock.Anything).Return(nil)

	service := appordering.NewPrintService(
		orderRepo,
		billRepo,
		infra.NewReceiptRenderer(),
		transport,
		bus,
		zap.NewNop(),
		appordering.WithPrintTimeout(time.Second),
	)
	h := NewPrintHandler(service, zap.NewNop())

	engine := gin.New()
	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)
	return engine
}

func pendingOrder(t *testing.T) *ordering.Order {
	t.Helper()
	order, err := ordering.NewOrder("Alice Chen", "A7", []ordering.OrderItem{
		{Name: "Pad Thai", Price: decimal.NewFromFloat(11.50), Quantity: 2},
	})
	require.NoError(t, err)
	return order
}

func TestPrintHandler_PrintBill(t *testing.T) {
	t.Run("prints pending order", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		engine := newPrintTestRouter(orderRepo, billRepo, &stubTransport{})

		order := pendingOrder(t)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		orderRepo.On("UpdateStatus", mock.Anything, order.ID,
			ordering.OrderStatusPending, ordering.OrderStatusPrinting).Return(nil)
		orderRepo.On("UpdateStatus", mock.Anything, order.ID,
			ordering.OrderStatusPrinting, ordering.OrderStatusPrinted).Return(nil)
		billRepo.On("FindByOrderID", mock.Anything, order.ID).Return(nil, shared.ErrNotFound)
		billRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		body, _ := json.Marshal(appordering.PrintBillRequest{OrderID: order.ID.String()})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/print/bill", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "Bill printed successfully", data["message"])
	})

	t.Run("returns 409 when print already in flight", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		engine := newPrintTestRouter(orderRepo, billRepo, &stubTransport{})

		order := pendingOrder(t)
		order.Status = ordering.OrderStatusPrinting
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		body, _ := json.Marshal(appordering.PrintBillRequest{OrderID: order.ID.String()})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/print/bill", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "PRINT_IN_PROGRESS", resp.Error.Code)
	})

	t.Run("returns 500 when transport fails", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		engine := newPrintTestRouter(orderRepo, billRepo, &stubTransport{err: assert.AnError})

		order := pendingOrder(t)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		orderRepo.On("UpdateStatus", mock.Anything, order.ID,
			ordering.OrderStatusPending, ordering.OrderStatusPrinting).Return(nil)
		orderRepo.On("UpdateStatus", mock.Anything, order.ID,
			ordering.OrderStatusPrinting, ordering.OrderStatusError).Return(nil)
		billRepo.On("FindByOrderID", mock.Anything, order.ID).Return(nil, shared.ErrNotFound)
		billRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		body, _ := json.Marshal(appordering.PrintBillRequest{OrderID: order.ID.String()})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/print/bill", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "PRINT_FAILED", resp.Error.Code)
	})

	t.Run("rejects body without order id", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		engine := newPrintTestRouter(orderRepo, billRepo, &stubTransport{})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/print/bill",
			bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPrintHandler_RetryPrint(t *testing.T) {
	t.Run("returns 422 for non-failed order", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		engine := newPrintTestRouter(orderRepo, billRepo, &stubTransport{})

		order := pendingOrder(t)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost,
			"/api/v1/print/bill/"+order.ID.String()+"/retry", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestPrintHandler_ListBills(t *testing.T) {
	t.Run("lists bills", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		engine := newPrintTestRouter(orderRepo, billRepo, &stubTransport{})

		bill, err := ordering.NewBill(uuid.New(), "Kitchen Printer")
		require.NoError(t, err)
		billRepo.On("FindAll", mock.Anything, mock.Anything).
			Return([]ordering.Bill{*bill}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/print/bills", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.([]interface{})
		assert.Len(t, data, 1)
	})
}
