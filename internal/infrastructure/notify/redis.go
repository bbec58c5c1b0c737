package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCloseTimeout = 5 * time.Second

// RedisBroadcaster bridges notifications across server instances with
// Redis Pub/Sub. Publish goes to the Redis channel only; the Run loop
// receives every message (the instance's own included) and fans it into
// the local hub, so each notification reaches local subscribers exactly
// once regardless of which instance produced it.
type RedisBroadcaster struct {
	client     *redis.Client
	ownsClient bool
	channel    string
	local      *Hub
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisBroadcasterOption is a functional option for configuring the broadcaster
type RedisBroadcasterOption func(*RedisBroadcaster)

// WithRedisLogger sets the logger for the broadcaster
func WithRedisLogger(logger *zap.Logger) RedisBroadcasterOption {
	return func(b *RedisBroadcaster) {
		b.logger = logger
	}
}

// WithRedisChannel sets the Pub/Sub channel name
func WithRedisChannel(channel string) RedisBroadcasterOption {
	return func(b *RedisBroadcaster) {
		b.channel = channel
	}
}

// NewRedisBroadcaster creates a broadcaster with its own Redis client
func NewRedisBroadcaster(addr, password string, db int, local *Hub, opts ...RedisBroadcasterOption) (*RedisBroadcaster, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	b := newRedisBroadcaster(client, local, opts...)
	b.ownsClient = true
	return b, nil
}

// NewRedisBroadcasterWithClient creates a broadcaster with an existing
// Redis client. The caller retains ownership of the client.
func NewRedisBroadcasterWithClient(client *redis.Client, local *Hub, opts ...RedisBroadcasterOption) *RedisBroadcaster {
	return newRedisBroadcaster(client, local, opts...)
}

func newRedisBroadcaster(client *redis.Client, local *Hub, opts ...RedisBroadcasterOption) *RedisBroadcaster {
	b := &RedisBroadcaster{
		client:  client,
		channel: "orderdesk:notifications",
		local:   local,
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish sends a notification to the Redis channel
func (b *RedisBroadcaster) Publish(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Error("failed to publish notification",
			zap.String("channel", b.channel),
			zap.String("notification_id", n.ID),
			zap.Error(err))
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	b.logger.Debug("published notification",
		zap.String("channel", b.channel),
		zap.String("notification_id", n.ID))
	return nil
}

// Run subscribes to the Redis channel and feeds received notifications
// into the local hub. It blocks until ctx is cancelled and should be
// called in a goroutine.
func (b *RedisBroadcaster) Run(ctx context.Context) error {
	b.mu.Lock()
	if b.isRunning {
		b.mu.Unlock()
		return fmt.Errorf("broadcaster already running")
	}
	b.isRunning = true
	b.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancelFn = cancel
	b.mu.Unlock()

	pubsub := b.client.Subscribe(subCtx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		b.mu.Lock()
		b.isRunning = false
		b.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Info("subscribed to notification channel", zap.String("channel", b.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			b.logger.Info("notification subscription stopped")
			b.mu.Lock()
			b.isRunning = false
			b.mu.Unlock()
			b.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn("notification channel closed")
				b.mu.Lock()
				b.isRunning = false
				b.mu.Unlock()
				b.markDone()
				return nil
			}

			var n Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				b.logger.Error("failed to unmarshal notification",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			_ = b.local.Publish(subCtx, n)
		}
	}
}

// markDone safely marks the broadcaster as done
func (b *RedisBroadcaster) markDone() {
	b.doneOnce.Do(func() {
		close(b.doneCh)
	})
}

// Close stops the subscription and releases the client if owned
func (b *RedisBroadcaster) Close() error {
	b.mu.Lock()
	cancelFn := b.cancelFn
	b.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-b.doneCh:
		case <-time.After(defaultCloseTimeout):
			b.logger.Warn("timeout waiting for subscription to stop")
		}
	}

	if b.ownsClient {
		return b.client.Close()
	}
	return nil
}

// Ensure RedisBroadcaster implements Broadcaster
var _ Broadcaster = (*RedisBroadcaster)(nil)
