package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/orderdesk/backend/internal/infrastructure/notify"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// sseMessage is one event on the wire
type sseMessage struct {
	Event string
	Data  string
	ID    string
}

// StreamHandler serves the live notification stream over Server-Sent
// Events. Each connection gets its own hub subscription; delivery is
// in-order per subscriber and there is no replay of missed events.
type StreamHandler struct {
	BaseHandler
	hub       *notify.Hub
	heartbeat time.Duration
	logger    *zap.Logger
}

// StreamOption is a functional option for configuring the handler
type StreamOption func(*StreamHandler)

// WithStreamHeartbeat sets the heartbeat interval
func WithStreamHeartbeat(interval time.Duration) StreamOption {
	return func(h *StreamHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithStreamLogger sets the logger for the handler
func WithStreamLogger(logger *zap.Logger) StreamOption {
	return func(h *StreamHandler) {
		h.logger = logger
	}
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(hub *notify.Hub, opts ...StreamOption) *StreamHandler {
	h := &StreamHandler{
		hub:       hub,
		heartbeat: 30 * time.Second,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers the stream route on the given group
func (h *StreamHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stream", h.Stream)
}

// Stream handles one SSE connection
func (h *StreamHandler) Stream(c *gin.Context) {
	sub, err := h.hub.Subscribe()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	h.logger.Info("stream client connected",
		zap.String("subscriber_id", sub.ID),
		zap.Int("subscribers", h.hub.SubscriberCount()))

	h.sendEvent(c.Writer, sseMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"subscriber_id":%q,"timestamp":%d}`, sub.ID, time.Now().Unix()),
	})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("stream client disconnected",
				zap.String("subscriber_id", sub.ID))
			return
		case <-sub.Done():
			// Hub shutdown detached the subscription
			return
		case <-ticker.C:
			h.sendEvent(c.Writer, sseMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
			c.Writer.Flush()
		case n := <-sub.C:
			data, err := json.Marshal(n)
			if err != nil {
				h.logger.Error("failed to marshal notification",
					zap.String("notification_id", n.ID),
					zap.Error(err))
				continue
			}
			h.sendEvent(c.Writer, sseMessage{
				Event: string(n.Kind),
				Data:  string(data),
				ID:    n.ID,
			})
			c.Writer.Flush()
		}
	}
}

func (h *StreamHandler) sendEvent(w io.Writer, msg sseMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
