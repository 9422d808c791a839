package entity

import (
	"time"
)

const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
)

// Order status is server-authoritative. PendingSync marks a locally applied
// status that the backend has not confirmed yet; the next refresh replaces it.
type Order struct {
	ID          string       `json:"id"`
	CustomerID  string       `json:"customer_id"`
	StoreID     string       `json:"store_id"`
	TotalAmount float64      `json:"total_amount"`
	Status      string       `json:"status"`
	PendingSync bool         `json:"pending_sync"`
	Items       []*OrderItem `json:"items,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending
}

// ItemsTotal sums the captured line totals.
func (o *Order) ItemsTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.LineTotal()
	}
	return total
}

// OrderItem prices are captured when the order is placed and never
// recomputed from the live product.
type OrderItem struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"order_id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

func (i *OrderItem) LineTotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}
