package domain

import "time"

// CartItem is one line of a cart. The item ID is the product ID; the name,
// price and image are snapshotted at add time.
type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// Cart is identified by a client-held token. It is not tied to an account:
// one cart per token, shared by whoever holds it.
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Total is the sum of price × quantity over all lines.
func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// ItemCount is the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	var n int
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

type AddCartItemRequest struct {
	ProductID string `json:"productId"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse is the cart plus its derived totals, recomputed on every read.
type CartResponse struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"itemCount"`
}
