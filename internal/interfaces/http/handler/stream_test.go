package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orderdesk/backend/internal/infrastructure/notify"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewStreamHandler(t *testing.T) {
	hub := notify.NewHub()
	defer hub.Close()

	h := NewStreamHandler(hub,
		WithStreamHeartbeat(5*time.Second),
		WithStreamLogger(zap.NewNop()))

	assert.NotNil(t, h)
	assert.Equal(t, 5*time.Second, h.heartbeat)
}

func TestStreamHandler_SendEvent(t *testing.T) {
	hub := notify.NewHub()
	defer hub.Close()
	h := NewStreamHandler(hub)

	var buf bytes.Buffer
	h.sendEvent(&buf, sseMessage{
		Event: "new_order",
		Data:  `{"order_id":"abc"}`,
		ID:    "new_order-abc-1",
	})

	out := buf.String()
	assert.Contains(t, out, "event: new_order\n")
	assert.Contains(t, out, "id: new_order-abc-1\n")
	assert.Contains(t, out, "data: {\"order_id\":\"abc\"}\n\n")
}

func TestStreamHandler_SendEvent_NoID(t *testing.T) {
	hub := notify.NewHub()
	defer hub.Close()
	h := NewStreamHandler(hub)

	var buf bytes.Buffer
	h.sendEvent(&buf, sseMessage{Event: "heartbeat", Data: `{"timestamp":1}`})

	out := buf.String()
	assert.Contains(t, out, "event: heartbeat\n")
	assert.NotContains(t, out, "id:")
}

func TestStreamHandler_RejectsAtCapacity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := notify.NewHub(notify.WithHubMaxSubscribers(1))
	defer hub.Close()

	// occupy the only slot
	sub, err := hub.Subscribe()
	require.NoError(t, err)
	defer sub.Close()

	h := NewStreamHandler(hub)
	engine := gin.New()
	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/stream", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
