package sheetfeed

import (
	"strings"

	"github.com/orderdesk/backend/internal/domain/shared"
)

// SheetConfig is the feed configuration record. At most one config is
// active at a time; activating a new one deactivates all others. The
// cursor (LastSyncRow) marks the last row already ingested and only
// moves forward.
type SheetConfig struct {
	shared.BaseEntity
	SpreadsheetID string
	SheetName     string
	LastSyncRow   int
	IsActive      bool
}

// NewSheetConfig creates an active config with the cursor at the first row
func NewSheetConfig(spreadsheetID, sheetName string) (*SheetConfig, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Spreadsheet ID cannot be empty")
	}
	if strings.TrimSpace(sheetName) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sheet name cannot be empty")
	}
	return &SheetConfig{
		BaseEntity:    shared.NewBaseEntity(),
		SpreadsheetID: strings.TrimSpace(spreadsheetID),
		SheetName:     strings.TrimSpace(sheetName),
		LastSyncRow:   1,
		IsActive:      true,
	}, nil
}

// AdvanceCursor moves the cursor forward. Moving it backwards is a
// programming error and is rejected so a racing sync can never rewind
// past already-ingested rows.
func (c *SheetConfig) AdvanceCursor(lastSyncRow int) error {
	if lastSyncRow < c.LastSyncRow {
		return shared.NewDomainError("CONFLICT", "Sync cursor cannot move backwards")
	}
	c.LastSyncRow = lastSyncRow
	return nil
}
