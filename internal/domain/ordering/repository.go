package ordering

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
)

// OrderRepository defines persistence operations for orders
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	// FindSince returns orders placed at or after the given time, newest
	// first. Poll-based clients use this in place of a live subscription.
	FindSince(ctx context.Context, since time.Time) ([]Order, error)
	FindBySheetRowID(ctx context.Context, sheetRowID string) (*Order, error)
	// ExistingSheetRowIDs returns the subset of the given row identifiers
	// that already have an order, for batch dedup during ingestion.
	ExistingSheetRowIDs(ctx context.Context, sheetRowIDs []string) (map[string]bool, error)
	// UpdateStatus conditionally moves an order from expected to target
	// status. Returns shared.ErrConflict if the current status no longer
	// matches expected; concurrent transitions race on this write.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, target OrderStatus) error
	// DeleteIfNotPrinting removes an order unless a print attempt is in
	// flight. Returns shared.ErrConflict when the order is Printing.
	DeleteIfNotPrinting(ctx context.Context, id uuid.UUID) error
}

// BillRepository defines persistence operations for bills
type BillRepository interface {
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Bill, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Bill, error)
	Save(ctx context.Context, bill *Bill) error
}
