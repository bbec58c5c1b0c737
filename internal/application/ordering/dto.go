package ordering

import (
	"time"

	"github.com/orderdesk/backend/internal/domain/ordering"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Order DTOs
// =============================================================================

// CreateOrderRequest represents a manual order entry
type CreateOrderRequest struct {
	CustomerName string             `json:"customer_name" binding:"required,min=1,max=200"`
	TableNumber  string             `json:"table_number" binding:"max=50"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderItemRequest represents one line of a manual order
type OrderItemRequest struct {
	Name     string          `json:"name" binding:"required,min=1,max=200"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" binding:"required,min=1"`
}

// ListOrdersRequest represents a request to list orders
type ListOrdersRequest struct {
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CheckNewRequest represents the poll path for clients without a live stream
type CheckNewRequest struct {
	// Since bounds the lookback; zero means the default window
	Since time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
}

// OrderItemResponse represents one order line in responses
type OrderItemResponse struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

// OrderResponse represents an order in responses
type OrderResponse struct {
	ID           string              `json:"id"`
	CustomerName string              `json:"customer_name"`
	TableNumber  string              `json:"table_number,omitempty"`
	Items        []OrderItemResponse `json:"items"`
	TotalAmount  string              `json:"total_amount"`
	Status       string              `json:"status"`
	SheetRowID   *string             `json:"sheet_row_id,omitempty"`
	Imported     bool                `json:"imported"`
	PlacedAt     time.Time           `json:"placed_at"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// CheckNewResponse represents the poll answer
type CheckNewResponse struct {
	HasNew bool            `json:"has_new"`
	Count  int             `json:"count"`
	Orders []OrderResponse `json:"orders"`
}

// =============================================================================
// Print DTOs
// =============================================================================

// PrintBillRequest represents a request to print an order's bill
type PrintBillRequest struct {
	OrderID     string `json:"order_id" binding:"required,uuid"`
	PrinterName string `json:"printer_name" binding:"max=200"`
}

// ListBillsRequest represents a request to list bills
type ListBillsRequest struct {
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BillResponse represents a bill in responses
type BillResponse struct {
	ID            string     `json:"id"`
	OrderID       string     `json:"order_id"`
	PrintStatus   string     `json:"print_status"`
	PrinterName   string     `json:"printer_name,omitempty"`
	PrintAttempts int        `json:"print_attempts"`
	PrintedAt     *time.Time `json:"printed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PrintResultResponse represents the outcome of a print request
type PrintResultResponse struct {
	Message string        `json:"message"`
	Order   OrderResponse `json:"order"`
	Bill    BillResponse  `json:"bill"`
}

// =============================================================================
// Mapping helpers
// =============================================================================

// NewOrderResponse maps a domain order to its response form
func NewOrderResponse(o *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			Name:     item.Name,
			Price:    item.Price.StringFixed(2),
			Quantity: item.Quantity,
			Subtotal: item.Subtotal().StringFixed(2),
		}
	}
	return OrderResponse{
		ID:           o.ID.String(),
		CustomerName: o.CustomerName,
		TableNumber:  o.TableNumber,
		Items:        items,
		TotalAmount:  o.TotalAmount.StringFixed(2),
		Status:       o.Status.String(),
		SheetRowID:   o.SheetRowID,
		Imported:     o.IsImported(),
		PlacedAt:     o.PlacedAt,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// toBillResponse maps a domain bill to its response form
func toBillResponse(b *ordering.Bill) BillResponse {
	return BillResponse{
		ID:            b.ID.String(),
		OrderID:       b.OrderID.String(),
		PrintStatus:   b.PrintStatus.String(),
		PrinterName:   b.PrinterName,
		PrintAttempts: b.PrintAttempts,
		PrintedAt:     b.PrintedAt,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
