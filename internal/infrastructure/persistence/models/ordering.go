package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/ordering"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	ID           uuid.UUID            `gorm:"type:uuid;primary_key"`
	CustomerName string               `gorm:"column:customer_name;type:varchar(200);not null"`
	TableNumber  string               `gorm:"column:table_number;type:varchar(50)"`
	Items        []OrderItemModel     `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount  decimal.Decimal      `gorm:"column:total_amount;type:decimal(18,2);not null;default:0"`
	Status       ordering.OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	SheetRowID   *string              `gorm:"column:sheet_row_id;type:varchar(100);uniqueIndex"`
	PlacedAt     time.Time            `gorm:"column:placed_at;not null;index"`
	CreatedAt    time.Time            `gorm:"not null"`
	UpdatedAt    time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *ordering.Order {
	order := &ordering.Order{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		CustomerName: m.CustomerName,
		TableNumber:  m.TableNumber,
		TotalAmount:  m.TotalAmount,
		Status:       m.Status,
		SheetRowID:   m.SheetRowID,
		PlacedAt:     m.PlacedAt,
		Items:        make([]ordering.OrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		order.Items[i] = item.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *ordering.Order) {
	m.ID = o.ID
	m.CustomerName = o.CustomerName
	m.TableNumber = o.TableNumber
	m.TotalAmount = o.TotalAmount
	m.Status = o.Status
	m.SheetRowID = o.SheetRowID
	m.PlacedAt = o.PlacedAt
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:       uuid.New(),
			OrderID:  o.ID,
			Position: i,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *ordering.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for a single order line.
// Position preserves the line order the caller supplied.
type OrderItemModel struct {
	ID       uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID  uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	Position int             `gorm:"not null;default:0"`
	Name     string          `gorm:"type:varchar(200);not null"`
	Price    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity int             `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem value.
func (m *OrderItemModel) ToDomain() ordering.OrderItem {
	return ordering.OrderItem{
		Name:     m.Name,
		Price:    m.Price,
		Quantity: m.Quantity,
	}
}

// BillModel is the persistence model for the Bill entity. One bill per
// order, enforced by the unique index on order_id.
type BillModel struct {
	ID            uuid.UUID            `gorm:"type:uuid;primary_key"`
	OrderID       uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	PrintStatus   ordering.PrintStatus `gorm:"column:print_status;type:varchar(20);not null;default:'PRINTING'"`
	PrinterName   string               `gorm:"column:printer_name;type:varchar(200)"`
	PrintAttempts int                  `gorm:"column:print_attempts;not null;default:1"`
	PrintedAt     *time.Time           `gorm:"column:printed_at"`
	CreatedAt     time.Time            `gorm:"not null"`
	UpdatedAt     time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill entity.
func (m *BillModel) ToDomain() *ordering.Bill {
	return &ordering.Bill{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		OrderID:       m.OrderID,
		PrintStatus:   m.PrintStatus,
		PrinterName:   m.PrinterName,
		PrintAttempts: m.PrintAttempts,
		PrintedAt:     m.PrintedAt,
	}
}

// FromDomain populates the persistence model from a domain Bill entity.
func (m *BillModel) FromDomain(b *ordering.Bill) {
	m.ID = b.ID
	m.OrderID = b.OrderID
	m.PrintStatus = b.PrintStatus
	m.PrinterName = b.PrinterName
	m.PrintAttempts = b.PrintAttempts
	m.PrintedAt = b.PrintedAt
	m.CreatedAt = b.CreatedAt
	m.UpdatedAt = b.UpdatedAt
}

// BillModelFromDomain creates a new persistence model from a domain Bill entity.
func BillModelFromDomain(b *ordering.Bill) *BillModel {
	m := &BillModel{}
	m.FromDomain(b)
	return m
}
