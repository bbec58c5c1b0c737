package ordering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/ordering"
	"github.com/orderdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// defaultCheckNewWindow bounds the poll path lookback
const defaultCheckNewWindow = 5 * time.Minute

// OrderService handles order entry and browsing
type OrderService struct {
	orderRepo ordering.OrderRepository
	eventBus  shared.EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo ordering.OrderRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo: orderRepo,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// CreateManual creates a manually entered order. The total is recomputed
// from the items; any caller-supplied total is ignored.
func (s *OrderService) CreateManual(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	items := make([]ordering.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = ordering.OrderItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
	}

	order, err := ordering.NewOrder(req.CustomerName, req.TableNumber, items)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	if err := s.eventBus.Publish(ctx, ordering.NewOrderCreatedEvent(order)); err != nil {
		s.logger.Warn("failed to publish order created event",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_name", order.CustomerName),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)))

	resp := NewOrderResponse(order)
	return &resp, nil
}

// List returns recent orders, newest first
func (s *OrderService) List(ctx context.Context, req ListOrdersRequest) ([]OrderResponse, error) {
	filter := shared.DefaultFilter()
	if req.Limit > 0 {
		filter.Limit = req.Limit
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = NewOrderResponse(&orders[i])
	}
	return responses, nil
}

// Get returns one order by ID
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := NewOrderResponse(order)
	return &resp, nil
}

// CheckNew returns pending orders placed inside the lookback window.
// This is the poll path for clients that cannot hold an event stream
// open.
func (s *OrderService) CheckNew(ctx context.Context, req CheckNewRequest) (*CheckNewResponse, error) {
	since := req.Since
	if since.IsZero() {
		since = time.Now().Add(-defaultCheckNewWindow)
	}

	orders, err := s.orderRepo.FindSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to check for new orders: %w", err)
	}

	pending := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		if orders[i].Status == ordering.OrderStatusPending {
			pending = append(pending, NewOrderResponse(&orders[i]))
		}
	}

	return &CheckNewResponse{
		HasNew: len(pending) > 0,
		Count:  len(pending),
		Orders: pending,
	}, nil
}

// Delete removes an order unless a print attempt is in flight
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.DeleteIfNotPrinting(ctx, id); err != nil {
		return err
	}
	s.logger.Info("order deleted", zap.String("order_id", id.String()))
	return nil
}
