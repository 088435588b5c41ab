package entity

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from s to next.
// Pending -> Shipped -> Delivered; Pending and Shipped may be
// Cancelled; Delivered and Cancelled are terminal. Backward moves
// are rejected.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderShipped || next == OrderCancelled
	case OrderShipped:
		return next == OrderDelivered || next == OrderCancelled
	}
	return false
}

// OrderItem is a frozen copy of a product plus the price and quantity
// captured at purchase time. Later product edits never alter it.
type OrderItem struct {
	Product  Product `json:"product"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order is created exactly once at checkout and never deleted.
// Total is snapshotted at creation, not recomputed.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Date            time.Time   `json:"date"`
	Total           float64     `json:"total"`
	ShippingAddress string      `json:"shipping_address"`
	PaymentMethod   string      `json:"payment_method"`
	Status          OrderStatus `json:"status"`
	Items           []OrderItem `json:"items"`
}

// ContainsSeller reports whether any order line belongs to the seller.
func (o *Order) ContainsSeller(sellerID string) bool {
	for _, it := range o.Items {
		if it.Product.SellerID == sellerID {
			return true
		}
	}
	return false
}
