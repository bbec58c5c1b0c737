package handler

import (
	"net/http"
	"time"

	"github.com/orderdesk/backend/internal/infrastructure/notify"
	"github.com/orderdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing service responds
type Pinger interface {
	Ping() error
}

// SystemHandler handles health and liveness endpoints
type SystemHandler struct {
	BaseHandler
	db        Pinger
	hub       *notify.Hub
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, hub *notify.Hub) *SystemHandler {
	return &SystemHandler{
		db:        db,
		hub:       hub,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Subscribers int    `json:"subscribers"`
	Uptime      string `json:"uptime"`
	Timestamp   string `json:"timestamp"`
}

// Health reports process health, database reachability and the number of
// live stream subscribers
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:      "ok",
		Database:    "ok",
		Subscribers: h.hub.SubscriberCount(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	status := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, dto.NewSuccessResponse(resp))
}
