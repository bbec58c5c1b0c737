package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Hub is the in-process notification fan-out. Each subscriber gets a
// buffered channel; a slow subscriber loses messages rather than
// blocking the publisher or its peers.
type Hub struct {
	logger     *zap.Logger
	bufferSize int
	maxSubs    int
	subs       sync.Map // map[string]*Subscription
}

// HubOption is a functional option for configuring the hub
type HubOption func(*Hub)

// WithHubLogger sets the logger for the hub
func WithHubLogger(logger *zap.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithHubBufferSize sets the per-subscriber channel buffer size
func WithHubBufferSize(size int) HubOption {
	return func(h *Hub) {
		if size > 0 {
			h.bufferSize = size
		}
	}
}

// WithHubMaxSubscribers caps the number of concurrent subscribers
func WithHubMaxSubscribers(max int) HubOption {
	return func(h *Hub) {
		h.maxSubs = max
	}
}

// NewHub creates a notification hub
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		logger:     zap.NewNop(),
		bufferSize: 100,
		maxSubs:    1000,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscription is one subscriber's feed. Close detaches it from the hub;
// closing twice is safe. The notification channel itself is never closed,
// so a publisher racing a disconnect at worst delivers into a buffer
// nobody reads anymore.
type Subscription struct {
	ID   string
	C    <-chan Notification
	ch   chan Notification
	done chan struct{}
	hub  *Hub
	off  sync.Once
}

// Close detaches the subscription from the hub
func (s *Subscription) Close() {
	s.off.Do(func() {
		s.hub.subs.Delete(s.ID)
		close(s.done)
	})
}

// Done returns a channel that is closed when the subscription detaches
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Subscribe attaches a new subscriber. Returns an error when the
// subscriber cap is reached.
func (h *Hub) Subscribe() (*Subscription, error) {
	if h.maxSubs > 0 && h.SubscriberCount() >= h.maxSubs {
		return nil, shared.NewDomainError("MAX_SUBSCRIBERS_REACHED",
			"Maximum number of notification subscribers reached")
	}

	ch := make(chan Notification, h.bufferSize)
	sub := &Subscription{
		ID:   uuid.New().String(),
		C:    ch,
		ch:   ch,
		done: make(chan struct{}),
		hub:  h,
	}
	h.subs.Store(sub.ID, sub)
	h.logger.Debug("notification subscriber attached", zap.String("subscriber_id", sub.ID))
	return sub, nil
}

// Publish fans a notification out to every subscriber. Delivery is
// best-effort: a full subscriber buffer drops the message.
func (h *Hub) Publish(ctx context.Context, n Notification) error {
	h.subs.Range(func(key, value any) bool {
		sub, ok := value.(*Subscription)
		if !ok {
			return true
		}
		select {
		case <-sub.done:
			// Detached between the map load and the send
		case sub.ch <- n:
		default:
			h.logger.Warn("subscriber buffer full, dropping notification",
				zap.String("subscriber_id", sub.ID),
				zap.String("notification_id", n.ID),
			)
		}
		return true
	})
	return nil
}

// SubscriberCount returns the number of attached subscribers
func (h *Hub) SubscriberCount() int {
	count := 0
	h.subs.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// Close detaches every subscriber
func (h *Hub) Close() {
	h.subs.Range(func(_, value any) bool {
		if sub, ok := value.(*Subscription); ok {
			sub.Close()
		}
		return true
	})
}

// Ensure Hub implements Broadcaster
var _ Broadcaster = (*Hub)(nil)
