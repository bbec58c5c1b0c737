package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
)

// Bill tracks print attempts for an order. At most one bill exists per
// order; it is created lazily on the first print attempt and reused for
// retries, so PrintAttempts never resets.
type Bill struct {
	shared.BaseEntity
	OrderID       uuid.UUID
	PrintStatus   PrintStatus
	PrinterName   string
	PrintAttempts int
	PrintedAt     *time.Time
}

// NewBill creates a bill for the first print attempt of an order
func NewBill(orderID uuid.UUID, printerName string) (*Bill, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order ID cannot be empty")
	}
	return &Bill{
		BaseEntity:    shared.NewBaseEntity(),
		OrderID:       orderID,
		PrintStatus:   PrintStatusPrinting,
		PrinterName:   printerName,
		PrintAttempts: 1,
	}, nil
}

// StartAttempt records a new print attempt. The attempt counter only
// ever increases.
func (b *Bill) StartAttempt(printerName string) {
	b.PrintStatus = PrintStatusPrinting
	b.PrinterName = printerName
	b.PrintAttempts++
	b.Touch()
}

// MarkPrinted records a successful print
func (b *Bill) MarkPrinted() error {
	if b.PrintStatus != PrintStatusPrinting {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot mark printed from status: "+b.PrintStatus.String())
	}
	now := time.Now()
	b.PrintStatus = PrintStatusPrinted
	b.PrintedAt = &now
	b.UpdatedAt = now
	return nil
}

// MarkFailed records a failed print attempt. PrintedAt stays unset.
func (b *Bill) MarkFailed() error {
	if b.PrintStatus != PrintStatusPrinting {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot mark failed from status: "+b.PrintStatus.String())
	}
	b.PrintStatus = PrintStatusFailed
	b.Touch()
	return nil
}
