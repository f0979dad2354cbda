// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations (the SQLite adapter, the HTTP prober).
package port

import (
	"context"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// ImageProber checks that product image URLs answer an HTTP probe.
type ImageProber interface {
	Check(ctx context.Context, products []domain.Product) ([]domain.ImageCheckResult, error)
}

// UserStore defines all data operations for accounts and credentials.
type UserStore interface {
	// Lookup
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByEmailAndPhone(ctx context.Context, email, phone string) (*domain.User, error)

	// Registration. The welcome notification is inserted in the same
	// transaction as the account row.
	CreateUser(ctx context.Context, user *domain.User, passwordHash string, welcome *domain.Notification) error

	// Profile
	UpdateUser(ctx context.Context, user *domain.User) error

	// Deletion removes the account and its credentials only. Per-user
	// profile rows are deliberately left behind.
	DeleteUser(ctx context.Context, userID string) error

	// Credentials
	GetCredentials(ctx context.Context, userID string) (*domain.Credential, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// Refresh tokens
	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error

	// Password reset codes
	StoreResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error
	GetValidResetCode(ctx context.Context, userID, code string) (*domain.PasswordResetCode, error)
	MarkResetCodeUsed(ctx context.Context, codeID string) error
}

// CatalogStore defines data operations over products and categories.
type CatalogStore interface {
	ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, productID string) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// CartStore defines data operations over carts and their line items.
type CartStore interface {
	CreateCart(ctx context.Context, cartID string) error
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
	GetCartItem(ctx context.Context, cartID, productID string) (*domain.CartItem, error)
	InsertCartItem(ctx context.Context, cartID string, item *domain.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, cartID, productID string, quantity int) error
	DeleteCartItem(ctx context.Context, cartID, productID string) error
	ClearCart(ctx context.Context, cartID string) error
}

// OrderStore defines data operations over orders.
type OrderStore interface {
	// CreateOrder persists the order, its items, the "order created"
	// notification, the total-spent increment and the cart wipe in a
	// single transaction.
	CreateOrder(ctx context.Context, order *domain.Order, notif *domain.Notification, cartID string) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

// ProfileStore defines data operations over per-user profile data:
// wishlist, favorites, notifications, payment methods and lifetime spend.
type ProfileStore interface {
	// Wishlist / favorites. Adds are idempotent.
	ListWishlist(ctx context.Context, userID string) ([]string, error)
	AddToWishlist(ctx context.Context, userID, productID string) error
	RemoveFromWishlist(ctx context.Context, userID, productID string) error
	ListFavorites(ctx context.Context, userID string) ([]string, error)
	AddToFavorites(ctx context.Context, userID, productID string) error
	RemoveFromFavorites(ctx context.Context, userID, productID string) error

	// Notifications
	ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	InsertNotification(ctx context.Context, n *domain.Notification) error
	MarkNotificationRead(ctx context.Context, userID, notifID string) error
	DeleteNotification(ctx context.Context, userID, notifID string) error

	// Payment methods
	ListPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error)
	InsertPaymentMethod(ctx context.Context, m *domain.PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, userID, methodID string) error
	// SetDefaultPaymentMethod unsets every other default in one transaction.
	SetDefaultPaymentMethod(ctx context.Context, userID, methodID string) error

	// Lifetime spend. Incremented only inside the checkout transaction;
	// no subtraction path exists.
	GetTotalSpent(ctx context.Context, userID string) (float64, error)
}
