package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending            OrderStatus = "pending"
	OrderStatusScheduled          OrderStatus = "scheduled"
	OrderStatusPartiallyScheduled OrderStatus = "partially-scheduled"
	OrderStatusNeedsReallocation  OrderStatus = "needs-reallocation"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

// Schedulable reports whether the allocation engine may attempt to place
// the order on resources. Scheduled and cancelled orders are left alone.
func (s OrderStatus) Schedulable() bool {
	return s == OrderStatusPending || s == OrderStatusNeedsReallocation
}

// Order is a customer shipment request: a destination plus a set of lines.
// Capacity consumed by the order is derived from its lines, never stored.
type Order struct {
	ID                 string
	DestinationCity    string
	DestinationAddress string
	Status             OrderStatus
	OrderedAt          time.Time
}

// OrderLine references a product with a positive quantity.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int64
}
