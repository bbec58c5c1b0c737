package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies the notification category
type Kind string

const (
	// KindNewOrder announces a freshly created order
	KindNewOrder Kind = "new_order"
	// KindPrintStatus announces an order print lifecycle transition
	KindPrintStatus Kind = "print_status"
)

// Notification is one message on the fan-out bus. The ID is synthetic
// (kind, subject and a millisecond timestamp) so clients can dedup
// replays without any server-side bookkeeping.
type Notification struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewOrderPayload carries the order snapshot for new_order notifications
type NewOrderPayload struct {
	OrderID      string    `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	TableNumber  string    `json:"table_number,omitempty"`
	Items        []string  `json:"items"`
	TotalAmount  string    `json:"total_amount"`
	Status       string    `json:"status"`
	Imported     bool      `json:"imported"`
	PlacedAt     time.Time `json:"placed_at"`
}

// PrintStatusPayload carries the transition for print_status notifications
type PrintStatusPayload struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Attempts  int    `json:"attempts,omitempty"`
}

// NewNotification builds a notification with a synthetic ID from the
// given payload
func NewNotification(kind Kind, subjectID string, payload any) (Notification, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Notification{}, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	now := time.Now()
	return Notification{
		ID:         fmt.Sprintf("%s-%s-%d", kind, subjectID, now.UnixMilli()),
		Kind:       kind,
		OccurredAt: now,
		Payload:    data,
	}, nil
}

// Broadcaster delivers notifications to every connected subscriber
type Broadcaster interface {
	Publish(ctx context.Context, n Notification) error
}
