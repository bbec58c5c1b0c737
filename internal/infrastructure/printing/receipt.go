package printing

import (
	"fmt"
	"strings"

	"github.com/orderdesk/backend/internal/domain/ordering"
)

const receiptRule = "================================"
const receiptSeparator = "--------------------------------"

// ReceiptRenderer formats an order into the plain-text bill layout the
// kitchen printers expect.
type ReceiptRenderer struct{}

// NewReceiptRenderer creates a receipt renderer
func NewReceiptRenderer() *ReceiptRenderer {
	return &ReceiptRenderer{}
}

// Render produces the printable bill content for an order
func (r *ReceiptRenderer) Render(order *ordering.Order) string {
	var b strings.Builder

	b.WriteString(receiptRule + "\n")
	b.WriteString("         RESTAURANT BILL\n")
	b.WriteString(receiptRule + "\n\n")

	fmt.Fprintf(&b, "Customer: %s\n", order.CustomerName)
	if order.TableNumber != "" {
		fmt.Fprintf(&b, "Table: %s\n", order.TableNumber)
	}
	fmt.Fprintf(&b, "Date: %s\n", order.PlacedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Time: %s\n\n", order.PlacedAt.Format("15:04:05"))

	b.WriteString(receiptSeparator + "\n")
	b.WriteString("ITEMS:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%s x%d - $%s\n", item.Name, item.Quantity, item.Subtotal().StringFixed(2))
	}
	b.WriteString("\n" + receiptSeparator + "\n")
	fmt.Fprintf(&b, "TOTAL: $%s\n\n", order.TotalAmount.StringFixed(2))

	b.WriteString(receiptRule + "\n")
	b.WriteString("Thank you for dining with us!\n")
	b.WriteString(receiptRule + "\n")

	return b.String()
}
