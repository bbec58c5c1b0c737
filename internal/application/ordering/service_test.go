package ordering_test

import (
	"context"
	"testing"
	"time"

	appordering "github.com/orderdesk/backend/internal/application/ordering"
	domain "github.com/orderdesk/backend/internal/domain/ordering"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	infra "github.com/orderdesk/backend/internal/infrastructure/printing"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindBySheetRowID(ctx context.Context, sheetRowID string) (*domain.Order, error) {
	args := m.Called(ctx, sheetRowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ExistingSheetRowIDs(ctx context.Context, sheetRowIDs []string) (map[string]bool, error) {
	args := m.Called(ctx, sheetRowIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, target domain.OrderStatus) error {
	args := m.Called(ctx, id, expected, target)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteIfNotPrinting(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Bill, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillRepository) FindAll(ctx context.Context, filter shared.Filter) ([]domain.Bill, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bill), args.Error(1)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *domain.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Print(ctx context.Context, content, printerName string) error {
	args := m.Called(ctx, content, printerName)
	return args.Error(0)
}

// =============================================================================
// Test Helpers
// =============================================================================

func newTestOrder(t *testing.T, status domain.OrderStatus) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder("Alice Chen", "A7", []domain.OrderItem{
		{Name: "Pad Thai", Price: decimal.NewFromFloat(11.50), Quantity: 2},
		{Name: "Iced Tea", Price: decimal.NewFromFloat(3.00), Quantity: 1},
	})
	require.NoError(t, err)
	order.Status = status
	return order
}

func newOrderService(orderRepo *MockOrderRepository, bus *MockEventPublisher) *appordering.OrderService {
	return appordering.NewOrderService(orderRepo, bus, zap.NewNop())
}

func newPrintService(orderRepo *MockOrderRepository, billRepo *MockBillRepository, transport *MockTransport, bus *MockEventPublisher) *appordering.PrintService {
	return appordering.NewPrintService(
		orderRepo,
		billRepo,
		infra.NewReceiptRenderer(),
		transport,
		bus,
		zap.NewNop(),
		appordering.WithPrintTimeout(time.Second),
		appordering.WithDefaultPrinter("Kitchen Printer"),
	)
}

// =============================================================================
// OrderService Tests
// =============================================================================

func TestOrderService_CreateManual(t *testing.T) {
	t.Run("creates order with recomputed total", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		bus := new(MockEventPublisher)
		service := newOrderService(orderRepo, bus)

		orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*ordering.Order")).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := service.CreateManual(context.Background(), appordering.CreateOrderRequest{
			CustomerName: "Alice Chen",
			TableNumber:  "A7",
			Items: []appordering.OrderItemRequest{
				{Name: "Pad Thai", Price: decimal.NewFromFloat(11.50), Quantity: 2},
				{Name: "Iced Tea", Price: decimal.NewFromFloat(3.00), Quantity: 1},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "Alice Chen", resp.CustomerName)
		assert.Equal(t, "26.00", resp.TotalAmount)
		assert.Equal(t, "PENDING", resp.Status)
		assert.False(t, resp.Imported)
		orderRepo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("rejects order without items", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		bus := new(MockEventPublisher)
		service := newOrderService(orderRepo, bus)

		_, err := service.CreateManual(context.Background(), appordering.CreateOrderRequest{
			CustomerName: "Alice Chen",
		})

		assert.Error(t, err)
		orderRepo.AssertNotCalled(t, "Create")
	})

	t.Run("succeeds even when event publish fails", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		bus := new(MockEventPublisher)
		service := newOrderService(orderRepo, bus)

		orderRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)

		resp, err := service.CreateManual(context.Background(), appordering.CreateOrderRequest{
			CustomerName: "Bob",
			Items: []appordering.OrderItemRequest{
				{Name: "Green Curry", Price: decimal.NewFromFloat(12.00), Quantity: 1},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "12.00", resp.TotalAmount)
	})
}

func TestOrderService_CheckNew(t *testing.T) {
	t.Run("counts only pending orders in window", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		bus := new(MockEventPublisher)
		service := newOrderService(orderRepo, bus)

		pending := newTestOrder(t, domain.OrderStatusPending)
		printed := newTestOrder(t, domain.OrderStatusPrinted)
		orderRepo.On("FindSince", mock.Anything, mock.AnythingOfType("time.Time")).
			Return([]domain.Order{*pending, *printed}, nil)

		resp, err := service.CheckNew(context.Background(), appordering.CheckNewRequest{})

		require.NoError(t, err)
		assert.True(t, resp.HasNew)
		assert.Equal(t, 1, resp.Count)
		require.Len(t, resp.Orders, 1)
		assert.Equal(t, "PENDING", resp.Orders[0].Status)
	})

	t.Run("reports no new orders", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		bus := new(MockEventPublisher)
		service := newOrderService(orderRepo, bus)

		orderRepo.On("FindSince", mock.Anything, mock.Anything).Return([]domain.Order{}, nil)

		resp, err := service.CheckNew(context.Background(), appordering.CheckNewRequest{})

		require.NoError(t, err)
		assert.False(t, resp.HasNew)
		assert.Equal(t, 0, resp.Count)
	})
}

func TestOrderService_Delete(t *testing.T) {
	t.Run("propagates conflict while printing", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		bus := new(MockEventPublisher)
		service := newOrderService(orderRepo, bus)

		id := uuid.New()
		orderRepo.On("DeleteIfNotPrinting", mock.Anything, id).Return(shared.ErrConflict)

		err := service.Delete(context.Background(), id)

		assert.ErrorIs(t, err, shared.ErrConflict)
	})
}

// =============================================================================
// PrintService Tests
// =============================================================================

func TestPrintService_RequestPrint(t *testing.T) {
	t.Run("prints pending order and creates bill", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		transport := new(MockTransport)
		bus := new(MockEventPublisher)
		service := newPrintService(orderRepo, billRepo, transport, bus)

		order := newTestOrder(t, domain.OrderStatusPending)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		orderRepo.On("UpdateStatus", mock.Anything, order.ID,
			domain.OrderStatusPending, domain.OrderStatusPrinting).Return(nil)
		orderRepo.On("UpdateStatus", mock.Anything, order.ID,
			domain.OrderStatusPrinting, domain.OrderStatusPrinted).Return(nil)
		billRepo.On("FindByOrderID", mock.Anything, order.ID).Return(nil, shared.ErrNotFound)
		billRepo.On("Save", mock.Anything, mock.AnythingOfType("*ordering.Bill")).Return(nil)
		transport.On("Print", mock.Anything, mock.MatchedBy(func(content string) bool {
			return len(content) > 0
		}), "Kitchen Printer").Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := service.RequestPrint(context.Background(), appordering.PrintBillRequest{
			OrderID: order.ID.String(),
		})

		require.NoError(t, err)
		assert.Equal(t, "Bill printed successfully", resp.Message)
		assert.Equal(t, "PRINTED", resp.Order.Status)
		assert.Equal(t, "PRINTED", resp.Bill.PrintStatus)
		assert.Equal(t, 1, resp.Bill.PrintAttempts)
		assert.NotNil(t, resp.Bill.PrintedAt)
		// bill saved once on attempt start and once on completion,
		// transition announced twice
		billRepo.AssertNumberOfCalls(t, "Save", 2)
		bus.AssertNumberOfCalls(t, "Publish", 2)
		orderRepo.AssertExpectations(t)
	})

	t.Run("second caller loses the claim race", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		transport := new(MockTransport)
		bus := new(MockEventPublisher)
		service := newPrintService(orderRepo, billRepo, transport, bus)

		order := newTestOrder(t, domain.OrderStatusPending)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		orderRepo.On("UpdateStatus", mock.Anything, order.ID,
			domain.OrderStatusPending, domain.OrderStatusPrinting).Return(shared.ErrConflict)

		_, err := service.RequestPrint(context.Background(), appordering.PrintBillRequest{
			OrderID: order.ID.String(),
		})

		assert.ErrorIs(t, err, shared.ErrPrintInProgress)
		transport.AssertNotCalled(t, "Print")
		billRepo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects order already printing", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		transport := new(MockTransport)
		bus := new(MockEventPublisher)
		service := newPrintService(orderRepo, billRepo, transport, bus)

		order := newTestOrder(t, domain.OrderStatusPrinting)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := service.RequestPrint(context.Background(), appordering.PrintBillRequest{
			OrderID: order.ID.String(),
		})

		assert.ErrorIs(t, err, shared.ErrPrintInProgress)
		orderRepo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("rejects order already printed", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		transport := new(MockTransport)
		bus := new(MockEventPublisher)
		service := newPrintService(orderRepo, billRepo, transport, bus)

		order := newTestOrder(t, domain.OrderStatusPrinted)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := service.RequestPrint(context.Background(), appordering.PrintBillRequest{
			OrderID: order.ID.String(),
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("transport failure moves order to error", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		transport := new(MockTransport)
		bus := new(MockEventPublisher)
		service := newPrintService(orderRepo, billRepo, transport, bus)

		order := newTestOrder(t, domain.OrderStatusPending)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		orderRepo.On("UpdateStatus", mock.Anything, order.ID,
			domain.OrderStatusPending, domain.OrderStatusPrinting).Return(nil)
		orderRepo.On("UpdateStatus", mock.Anything, order.ID,
			domain.OrderStatusPrinting, domain.OrderStatusError).Return(nil)
		billRepo.On("FindByOrderID", mock.Anything, order.ID).Return(nil, shared.ErrNotFound)

		var savedBill *domain.Bill
		billRepo.On("Save", mock.Anything, mock.AnythingOfType("*ordering.Bill")).
			Run(func(args mock.Arguments) {
				savedBill = args.Get(1).(*domain.Bill)
			}).Return(nil)
		transport.On("Print", mock.Anything, mock.Anything, mock.Anything).
			Return(assert.AnError)
		bus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		_, err := service.RequestPrint(context.Background(), appordering.PrintBillRequest{
			OrderID: order.ID.String(),
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRINT_FAILED", domainErr.Code)
		require.NotNil(t, savedBill)
		assert.Equal(t, domain.PrintStatusFailed, savedBill.PrintStatus)
		assert.Nil(t, savedBill.PrintedAt)
		orderRepo.AssertExpectations(t)
	})

	t.Run("rejects invalid order id", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		transport := new(MockTransport)
		bus := new(MockEventPublisher)
		service := newPrintService(orderRepo, billRepo, transport, bus)

		_, err := service.RequestPrint(context.Background(), appordering.PrintBillRequest{
			OrderID: "not-a-uuid",
		})

		assert.Error(t, err)
		orderRepo.AssertNotCalled(t, "FindByID")
	})
}

func TestPrintService_RetryPrint(t *testing.T) {
	t.Run("retry increments attempt counter", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		transport := new(MockTransport)
		bus := new(MockEventPublisher)
		service := newPrintService(orderRepo, billRepo, transport, bus)

		order := newTestOrder(t, domain.OrderStatusError)
		existingBill, err := domain.NewBill(order.ID, "Kitchen Printer")
		require.NoError(t, err)
		require.NoError(t, existingBill.MarkFailed())

		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		orderRepo.On("UpdateStatus", mock.Anything, order.ID,
			domain.OrderStatusError, domain.OrderStatusPrinting).Return(nil)
		orderRepo.On("UpdateStatus", mock.Anything, order.ID,
			domain.OrderStatusPrinting, domain.OrderStatusPrinted).Return(nil)
		billRepo.On("FindByOrderID", mock.Anything, order.ID).Return(existingBill, nil)
		billRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		transport.On("Print", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := service.RetryPrint(context.Background(), order.ID, "")

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Bill.PrintAttempts)
		assert.Equal(t, "PRINTED", resp.Bill.PrintStatus)
	})

	t.Run("rejects retry of pending order", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		transport := new(MockTransport)
		bus := new(MockEventPublisher)
		service := newPrintService(orderRepo, billRepo, transport, bus)

		order := newTestOrder(t, domain.OrderStatusPending)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := service.RetryPrint(context.Background(), order.ID, "")

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		transport.AssertNotCalled(t, "Print")
	})
}

func TestPrintService_ListBills(t *testing.T) {
	t.Run("maps bills to responses", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		billRepo := new(MockBillRepository)
		transport := new(MockTransport)
		bus := new(MockEventPublisher)
		service := newPrintService(orderRepo, billRepo, transport, bus)

		bill, err := domain.NewBill(uuid.New(), "Kitchen Printer")
		require.NoError(t, err)
		require.NoError(t, bill.MarkPrinted())

		billRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
			return f.OrderBy == "created_at" && f.OrderDir == "desc"
		})).Return([]domain.Bill{*bill}, nil)

		resp, err := service.ListBills(context.Background(), appordering.ListBillsRequest{})

		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, "PRINTED", resp[0].PrintStatus)
		assert.Equal(t, 1, resp[0].PrintAttempts)
	})
}
