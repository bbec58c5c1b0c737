package ordering

import (
	"strings"
	"time"

	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderItem represents a single line on an order
type OrderItem struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// Subtotal returns price * quantity for the line
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a customer order moving through the print lifecycle.
// The total amount is always derived from the line items, never taken
// from caller input.
type Order struct {
	shared.BaseEntity
	CustomerName string
	TableNumber  string
	Items        []OrderItem
	TotalAmount  decimal.Decimal
	Status       OrderStatus
	SheetRowID   *string
	PlacedAt     time.Time
}

// NewOrder creates a manually entered order in Pending status.
// The total is recomputed from the supplied items.
func NewOrder(customerName, tableNumber string, items []OrderItem) (*Order, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer name cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order must contain at least one item")
	}
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, shared.NewDomainError("INVALID_INPUT", "Item name cannot be empty")
		}
		if item.Price.IsNegative() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Item price cannot be negative")
		}
		if item.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_INPUT", "Item quantity must be at least 1")
		}
	}

	order := &Order{
		BaseEntity:   shared.NewBaseEntity(),
		CustomerName: strings.TrimSpace(customerName),
		TableNumber:  strings.TrimSpace(tableNumber),
		Items:        items,
		Status:       OrderStatusPending,
		PlacedAt:     time.Now(),
	}
	order.TotalAmount = order.computeTotal()

	return order, nil
}

// NewImportedOrder creates an order from an external feed row. The feed
// supplies only item names and a row total; each item gets an even share
// of the total, with the rounding remainder assigned to the last item so
// the line subtotals always add up to the row total.
func NewImportedOrder(customerName, tableNumber string, itemNames []string, rowTotal decimal.Decimal, sheetRowID string, placedAt time.Time) (*Order, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer name cannot be empty")
	}
	if len(itemNames) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order must contain at least one item")
	}
	if !rowTotal.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Row total must be positive")
	}
	if sheetRowID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sheet row identifier cannot be empty")
	}

	items := splitTotal(itemNames, rowTotal)
	if placedAt.IsZero() {
		placedAt = time.Now()
	}

	order := &Order{
		BaseEntity:   shared.NewBaseEntity(),
		CustomerName: strings.TrimSpace(customerName),
		TableNumber:  strings.TrimSpace(tableNumber),
		Items:        items,
		Status:       OrderStatusPending,
		SheetRowID:   &sheetRowID,
		PlacedAt:     placedAt,
	}
	order.TotalAmount = order.computeTotal()

	return order, nil
}

// splitTotal distributes a row total evenly across items, quantity 1 each.
// The last item absorbs the rounding remainder.
func splitTotal(itemNames []string, total decimal.Decimal) []OrderItem {
	count := decimal.NewFromInt(int64(len(itemNames)))
	share := total.Div(count).Truncate(2)

	items := make([]OrderItem, len(itemNames))
	for i, name := range itemNames {
		items[i] = OrderItem{
			Name:     strings.TrimSpace(name),
			Price:    share,
			Quantity: 1,
		}
	}
	last := len(items) - 1
	items[last].Price = total.Sub(share.Mul(count.Sub(decimal.NewFromInt(1))))

	return items
}

// computeTotal sums price * quantity across all items
func (o *Order) computeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsImported returns true if the order came from the external feed
func (o *Order) IsImported() bool {
	return o.SheetRowID != nil && *o.SheetRowID != ""
}

// ItemNames returns the item names in order, for display payloads
func (o *Order) ItemNames() []string {
	names := make([]string, len(o.Items))
	for i, item := range o.Items {
		names[i] = item.Name
	}
	return names
}
