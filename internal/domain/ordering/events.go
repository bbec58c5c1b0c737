package ordering

import (
	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeOrder = "Order"
)

// Event type constants
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypePrintStatusChanged = "PrintStatusChanged"
)

// OrderCreatedEvent is published when a new order is created, whether by
// manual entry or feed ingestion
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	CustomerName string          `json:"customer_name"`
	TableNumber  string          `json:"table_number,omitempty"`
	Items        []string        `json:"items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       OrderStatus     `json:"status"`
	Imported     bool            `json:"imported"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeOrderCreated,
			AggregateTypeOrder,
			order.ID,
		),
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		TableNumber:  order.TableNumber,
		Items:        order.ItemNames(),
		TotalAmount:  order.TotalAmount,
		Status:       order.Status,
		Imported:     order.IsImported(),
	}
}

// PrintStatusChangedEvent is published on every order print lifecycle
// transition (printing, printed, error)
type PrintStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID   `json:"order_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	Attempts  int         `json:"attempts,omitempty"`
}

// NewPrintStatusChangedEvent creates a new PrintStatusChangedEvent
func NewPrintStatusChangedEvent(orderID uuid.UUID, oldStatus, newStatus OrderStatus, attempts int) *PrintStatusChangedEvent {
	return &PrintStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypePrintStatusChanged,
			AggregateTypeOrder,
			orderID,
		),
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Attempts:  attempts,
	}
}
