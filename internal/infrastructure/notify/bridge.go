package notify

import (
	"context"

	"github.com/orderdesk/backend/internal/domain/ordering"
	"github.com/orderdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderEventBridge turns ordering domain events into notifications and
// hands them to the broadcaster. It subscribes to the event bus like any
// other handler, so order processing never talks to the notification
// layer directly.
type OrderEventBridge struct {
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewOrderEventBridge creates a bridge that publishes to the given broadcaster
func NewOrderEventBridge(broadcaster Broadcaster, logger *zap.Logger) *OrderEventBridge {
	return &OrderEventBridge{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// EventTypes returns the event types this bridge is interested in
func (b *OrderEventBridge) EventTypes() []string {
	return []string{
		ordering.EventTypeOrderCreated,
		ordering.EventTypePrintStatusChanged,
	}
}

// Handle converts a domain event into a notification and broadcasts it
func (b *OrderEventBridge) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		n   Notification
		err error
	)

	switch e := event.(type) {
	case *ordering.OrderCreatedEvent:
		n, err = NewNotification(KindNewOrder, e.OrderID.String(), NewOrderPayload{
			OrderID:      e.OrderID.String(),
			CustomerName: e.CustomerName,
			TableNumber:  e.TableNumber,
			Items:        e.Items,
			TotalAmount:  e.TotalAmount.StringFixed(2),
			Status:       e.Status.String(),
			Imported:     e.Imported,
			PlacedAt:     e.OccurredAt(),
		})
	case *ordering.PrintStatusChangedEvent:
		n, err = NewNotification(KindPrintStatus, e.OrderID.String(), PrintStatusPayload{
			OrderID:   e.OrderID.String(),
			OldStatus: e.OldStatus.String(),
			NewStatus: e.NewStatus.String(),
			Attempts:  e.Attempts,
		})
	default:
		b.logger.Debug("ignoring unexpected event type",
			zap.String("event_type", event.EventType()))
		return nil
	}

	if err != nil {
		return err
	}
	return b.broadcaster.Publish(ctx, n)
}

// Ensure OrderEventBridge implements EventHandler
var _ shared.EventHandler = (*OrderEventBridge)(nil)
