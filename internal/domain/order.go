package domain

import "time"

// Order statuses.
const (
	OrderPending   = "pending"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderItem is a purchased line, snapshotted from the cart at checkout.
type OrderItem struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

// Order is a placed order. The same row backs both the customer's order
// history and the admin console; there is no second copy to drift.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"-"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	Shipping        float64     `json:"shipping"`
	Total           float64     `json:"total"`
	Status          string      `json:"status"`
	Date            time.Time   `json:"date"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	CustomerPhone   string      `json:"customerPhone"`
	CustomerAddress string      `json:"customerAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
}

// CheckoutRequest turns a cart into an order.
type CheckoutRequest struct {
	CartID          string `json:"cartId"`
	CustomerName    string `json:"customerName"`
	CustomerPhone   string `json:"customerPhone"`
	CustomerAddress string `json:"customerAddress"`
	PaymentMethod   string `json:"paymentMethod"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}
