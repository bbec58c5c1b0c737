package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/ordering"
	"github.com/orderdesk/backend/internal/domain/shared"
	infra "github.com/orderdesk/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// PrintService drives the order print lifecycle. All per-order
// serialization happens through conditional status writes in the store;
// the service never holds a lock across the transport wait.
type PrintService struct {
	orderRepo      ordering.OrderRepository
	billRepo       ordering.BillRepository
	renderer       *infra.ReceiptRenderer
	transport      infra.Transport
	eventBus       shared.EventPublisher
	printTimeout   time.Duration
	defaultPrinter string
	logger         *zap.Logger
}

// PrintServiceOption is a functional option for configuring the service
type PrintServiceOption func(*PrintService)

// WithPrintTimeout bounds each transport call
func WithPrintTimeout(timeout time.Duration) PrintServiceOption {
	return func(s *PrintService) {
		if timeout > 0 {
			s.printTimeout = timeout
		}
	}
}

// WithDefaultPrinter sets the printer used when the request names none
func WithDefaultPrinter(name string) PrintServiceOption {
	return func(s *PrintService) {
		if name != "" {
			s.defaultPrinter = name
		}
	}
}

// NewPrintService creates a new PrintService
func NewPrintService(
	orderRepo ordering.OrderRepository,
	billRepo ordering.BillRepository,
	renderer *infra.ReceiptRenderer,
	transport infra.Transport,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
	opts ...PrintServiceOption,
) *PrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PrintService{
		orderRepo:      orderRepo,
		billRepo:       billRepo,
		renderer:       renderer,
		transport:      transport,
		eventBus:       eventBus,
		printTimeout:   30 * time.Second,
		defaultPrinter: "Default Printer",
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestPrint starts a print attempt for an order in Pending or Error
// status. A second caller racing on the same order gets PRINT_IN_PROGRESS.
func (s *PrintService) RequestPrint(ctx context.Context, req PrintBillRequest) (*PrintResultResponse, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid order ID")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case ordering.OrderStatusPending, ordering.OrderStatusError:
		// printable
	case ordering.OrderStatusPrinting:
		return nil, shared.ErrPrintInProgress
	default:
		return nil, shared.NewDomainError("INVALID_STATE",
			"Order is already printed")
	}

	return s.print(ctx, order, req.PrinterName)
}

// RetryPrint re-runs a failed print. Only orders in Error status qualify.
func (s *PrintService) RetryPrint(ctx context.Context, orderID uuid.UUID, printerName string) (*PrintResultResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case ordering.OrderStatusError:
		// retryable
	case ordering.OrderStatusPrinting:
		return nil, shared.ErrPrintInProgress
	default:
		return nil, shared.NewDomainError("INVALID_STATE",
			"Only failed prints can be retried")
	}

	return s.print(ctx, order, printerName)
}

// ListBills returns bills, newest first
func (s *PrintService) ListBills(ctx context.Context, req ListBillsRequest) ([]BillResponse, error) {
	filter := shared.Filter{
		Limit:    50,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
	if req.Limit > 0 {
		filter.Limit = req.Limit
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}

	bills, err := s.billRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	responses := make([]BillResponse, len(bills))
	for i := range bills {
		responses[i] = toBillResponse(&bills[i])
	}
	return responses, nil
}

// print runs one attempt: claim the order, bump the bill, announce,
// invoke the transport, record the outcome.
func (s *PrintService) print(ctx context.Context, order *ordering.Order, printerName string) (*PrintResultResponse, error) {
	if printerName == "" {
		printerName = s.defaultPrinter
	}
	expected := order.Status

	// Claim the order. The conditional write picks exactly one winner
	// among concurrent callers.
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, expected, ordering.OrderStatusPrinting); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.ErrPrintInProgress
		}
		return nil, err
	}
	order.Status = ordering.OrderStatusPrinting

	bill, err := s.startBill(ctx, order.ID, printerName)
	if err != nil {
		// Hand the claim back so the order does not stay stuck in
		// Printing with no attempt in flight
		if rbErr := s.orderRepo.UpdateStatus(ctx, order.ID, ordering.OrderStatusPrinting, expected); rbErr != nil {
			s.logger.Error("failed to release print claim",
				zap.String("order_id", order.ID.String()),
				zap.Error(rbErr))
		}
		return nil, err
	}

	s.publishStatus(ctx, order.ID, expected, ordering.OrderStatusPrinting, bill.PrintAttempts)

	content := s.renderer.Render(order)
	printCtx, cancel := context.WithTimeout(ctx, s.printTimeout)
	defer cancel()

	if printErr := s.transport.Print(printCtx, content, printerName); printErr != nil {
		s.logger.Warn("print attempt failed",
			zap.String("order_id", order.ID.String()),
			zap.Int("attempts", bill.PrintAttempts),
			zap.Error(printErr))
		s.settle(ctx, order, bill, ordering.OrderStatusError)
		return nil, shared.NewDomainError("PRINT_FAILED",
			fmt.Sprintf("Print attempt failed: %v", printErr))
	}

	s.settle(ctx, order, bill, ordering.OrderStatusPrinted)

	s.logger.Info("bill printed",
		zap.String("order_id", order.ID.String()),
		zap.String("printer_name", printerName),
		zap.Int("attempts", bill.PrintAttempts))

	return &PrintResultResponse{
		Message: "Bill printed successfully",
		Order:   NewOrderResponse(order),
		Bill:    toBillResponse(bill),
	}, nil
}

// startBill creates the order's bill on the first attempt or bumps the
// attempt counter on a retry. The counter never resets.
func (s *PrintService) startBill(ctx context.Context, orderID uuid.UUID, printerName string) (*ordering.Bill, error) {
	bill, err := s.billRepo.FindByOrderID(ctx, orderID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		bill, err = ordering.NewBill(orderID, printerName)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load bill: %w", err)
	default:
		bill.StartAttempt(printerName)
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	return bill, nil
}

// settle records the attempt outcome on the bill and the order and
// publishes the transition
func (s *PrintService) settle(ctx context.Context, order *ordering.Order, bill *ordering.Bill, target ordering.OrderStatus) {
	var billErr error
	if target == ordering.OrderStatusPrinted {
		billErr = bill.MarkPrinted()
	} else {
		billErr = bill.MarkFailed()
	}
	if billErr == nil {
		billErr = s.billRepo.Save(ctx, bill)
	}
	if billErr != nil {
		s.logger.Error("failed to record bill outcome",
			zap.String("order_id", order.ID.String()),
			zap.Error(billErr))
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, ordering.OrderStatusPrinting, target); err != nil {
		s.logger.Error("failed to record order print outcome",
			zap.String("order_id", order.ID.String()),
			zap.String("target", target.String()),
			zap.Error(err))
		return
	}
	old := order.Status
	order.Status = target
	order.Touch()

	s.publishStatus(ctx, order.ID, old, target, bill.PrintAttempts)
}

// publishStatus publishes a PrintStatusChanged event, logging instead of
// failing the print on publish errors
func (s *PrintService) publishStatus(ctx context.Context, orderID uuid.UUID, old, new ordering.OrderStatus, attempts int) {
	event := ordering.NewPrintStatusChangedEvent(orderID, old, new, attempts)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish print status event",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
	}
}
