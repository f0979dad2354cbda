package domain

import "time"

// Notification types.
const (
	NotifOrder     = "order"
	NotifPromotion = "promotion"
	NotifSystem    = "system"
)

// Notification is an append-only per-user message.
type Notification struct {
	ID      string    `json:"id"`
	UserID  string    `json:"-"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Read    bool      `json:"read"`
	Type    string    `json:"type"`
}

// Payment method types.
const (
	PaymentCard = "card"
	PaymentBank = "bank"
)

// PaymentMethod is a saved card or bank reference. At most one per user is
// the default; setting a new default unsets the others in the same write.
type PaymentMethod struct {
	ID        string `json:"id"`
	UserID    string `json:"-"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Details   string `json:"details"`
	IsDefault bool   `json:"isDefault"`
}

type AddPaymentMethodRequest struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Details   string `json:"details"`
	IsDefault bool   `json:"isDefault"`
}

// UserData is the profile bundle the storefront renders: wishlist,
// favorites, notifications, orders, payment methods and lifetime spend.
type UserData struct {
	Wishlist       []string        `json:"wishlist"`
	Favorites      []string        `json:"favorites"`
	Notifications  []Notification  `json:"notifications"`
	Orders         []Order         `json:"orders"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
	TotalSpent     float64         `json:"totalSpent"`
}

type WishlistRequest struct {
	ProductID string `json:"productId"`
}
