package sheetfeed

import (
	"context"

	"github.com/google/uuid"
)

// FeedReader abstracts the external spreadsheet feed
type FeedReader interface {
	// FetchRows returns feed rows at or after fromRow, in row order
	FetchRows(ctx context.Context, spreadsheetID, sheetName string, fromRow int) ([]FeedRow, error)
	// CheckReachable reports whether the feed can be fetched at all
	CheckReachable(ctx context.Context, spreadsheetID string) bool
}

// ConfigRepository defines persistence operations for sheet configs
type ConfigRepository interface {
	FindActive(ctx context.Context) (*SheetConfig, error)
	// Activate deactivates every existing config and persists the given
	// one as active, in a single transaction.
	Activate(ctx context.Context, config *SheetConfig) error
	UpdateCursor(ctx context.Context, id uuid.UUID, lastSyncRow int) error
}
