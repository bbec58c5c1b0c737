package sheetfeed

import (
	"time"

	appordering "github.com/orderdesk/backend/internal/application/ordering"
	"github.com/orderdesk/backend/internal/domain/sheetfeed"
)

// =============================================================================
// Sync DTOs
// =============================================================================

// SyncResultResponse summarizes one sync run. Orders holds the newly
// created orders in feed order.
type SyncResultResponse struct {
	Message     string                      `json:"message"`
	Created     int                         `json:"created"`
	Skipped     int                         `json:"skipped"`
	Rejected    int                         `json:"rejected"`
	LastSyncRow int                         `json:"last_sync_row"`
	Orders      []appordering.OrderResponse `json:"orders"`
	SoftErrors  []string                    `json:"soft_errors,omitempty"`
}

// =============================================================================
// Config DTOs
// =============================================================================

// SheetConfigRequest registers a new feed configuration
type SheetConfigRequest struct {
	SpreadsheetID string `json:"spreadsheet_id" binding:"required,min=1,max=200"`
	SheetName     string `json:"sheet_name" binding:"required,min=1,max=200"`
}

// SheetConfigResponse represents a feed configuration
type SheetConfigResponse struct {
	ID            string    `json:"id"`
	SpreadsheetID string    `json:"spreadsheet_id"`
	SheetName     string    `json:"sheet_name"`
	LastSyncRow   int       `json:"last_sync_row"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TestConnectionResponse reports feed reachability for the active config
type TestConnectionResponse struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Reachable     bool   `json:"reachable"`
}

func toConfigResponse(c *sheetfeed.SheetConfig) SheetConfigResponse {
	return SheetConfigResponse{
		ID:            c.ID.String(),
		SpreadsheetID: c.SpreadsheetID,
		SheetName:     c.SheetName,
		LastSyncRow:   c.LastSyncRow,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
