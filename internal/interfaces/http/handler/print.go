package handler

import (
	appordering "github.com/orderdesk/backend/internal/application/ordering"
	"github.com/orderdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PrintHandler handles bill printing endpoints
type PrintHandler struct {
	BaseHandler
	printService *appordering.PrintService
	logger       *zap.Logger
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(printService *appordering.PrintService, logger *zap.Logger) *PrintHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrintHandler{
		printService: printService,
		logger:       logger,
	}
}

// RegisterRoutes registers print routes on the given group
func (h *PrintHandler) RegisterRoutes(rg *gin.RouterGroup) {
	print := rg.Group("/print")
	{
		print.POST("/bill", h.PrintBill)
		print.POST("/bill/:id/retry", h.RetryPrint)
		print.GET("/bills", h.ListBills)
	}
}

// PrintBill starts a print attempt for an order
func (h *PrintHandler) PrintBill(c *gin.Context) {
	var req appordering.PrintBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.printService.RequestPrint(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RetryPrint re-runs a failed print attempt
func (h *PrintHandler) RetryPrint(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req struct {
		PrinterName string `json:"printer_name" binding:"max=200"`
	}
	// body is optional on retry
	_ = c.ShouldBindJSON(&req)

	result, err := h.printService.RetryPrint(c.Request.Context(), id, req.PrinterName)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListBills returns bills, newest first
func (h *PrintHandler) ListBills(c *gin.Context) {
	var req appordering.ListBillsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	bills, err := h.printService.ListBills(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bills)
}
