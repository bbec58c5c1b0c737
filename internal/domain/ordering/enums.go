package ordering

// OrderStatus represents the print lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusPrinting OrderStatus = "PRINTING"
	OrderStatusPrinted  OrderStatus = "PRINTED"
	OrderStatusError    OrderStatus = "ERROR"
)

// IsValid checks if the OrderStatus is a valid value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPrinting, OrderStatusPrinted, OrderStatusError:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusPrinting
	case OrderStatusPrinting:
		return target == OrderStatusPrinted || target == OrderStatusError
	case OrderStatusError:
		return target == OrderStatusPrinting
	case OrderStatusPrinted:
		return false
	}
	return false
}

// IsDeletable returns true if an order in this status may be removed.
// Orders with a print attempt in flight must not disappear mid-print.
func (s OrderStatus) IsDeletable() bool {
	return s != OrderStatusPrinting
}

// AllOrderStatuses returns all valid OrderStatus values
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusPrinting, OrderStatusPrinted, OrderStatusError}
}

// PrintStatus represents the status of a bill print attempt
type PrintStatus string

const (
	PrintStatusPrinting PrintStatus = "PRINTING"
	PrintStatusPrinted  PrintStatus = "PRINTED"
	PrintStatusFailed   PrintStatus = "FAILED"
)

// IsValid checks if the PrintStatus is a valid value
func (s PrintStatus) IsValid() bool {
	switch s {
	case PrintStatusPrinting, PrintStatusPrinted, PrintStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of PrintStatus
func (s PrintStatus) String() string {
	return string(s)
}
