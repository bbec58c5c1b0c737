package handler

import (
	appsheetfeed "github.com/orderdesk/backend/internal/application/sheetfeed"
	"github.com/orderdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SyncHandler handles feed sync endpoints
type SyncHandler struct {
	BaseHandler
	syncService   *appsheetfeed.SyncService
	configService *appsheetfeed.ConfigService
	logger        *zap.Logger
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *appsheetfeed.SyncService, configService *appsheetfeed.ConfigService, logger *zap.Logger) *SyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{
		syncService:   syncService,
		configService: configService,
		logger:        logger,
	}
}

// RegisterRoutes registers sync routes on the given group
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("", h.RunSync)
		sync.GET("/config", h.GetConfig)
		sync.POST("/config", h.SaveConfig)
		sync.GET("/test", h.TestConnection)
	}
}

// RunSync triggers a sync pass immediately
func (h *SyncHandler) RunSync(c *gin.Context) {
	result, err := h.syncService.RunSync(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetConfig returns the active feed configuration
func (h *SyncHandler) GetConfig(c *gin.Context) {
	config, err := h.configService.GetActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, config)
}

// SaveConfig registers a new feed configuration as active
func (h *SyncHandler) SaveConfig(c *gin.Context) {
	var req appsheetfeed.SheetConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	config, err := h.configService.Save(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, config)
}

// TestConnection checks whether the configured feed responds
func (h *SyncHandler) TestConnection(c *gin.Context) {
	result, err := h.configService.TestConnection(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
