// Package domain holds the core entities of the ferretería storefront:
// users, products, carts, orders and the per-user profile data.
package domain

import "time"

// Roles gate access to the admin and superadmin consoles.
const (
	RoleCustomer   = "customer"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// User is a registered storefront account. The password never lives here;
// credentials are stored separately as a bcrypt hash.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	PostalCode string    `json:"postalCode,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Credential holds the hashed password for a user.
type Credential struct {
	UserID            string
	PasswordHash      string
	PasswordChangedAt *time.Time
}

// RefreshToken is a stored (hashed) refresh token.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
}

// PasswordResetCode is a short-lived verification code issued by the
// account-recovery flow. The stored password is never revealed; recovery
// always goes through one of these codes.
type PasswordResetCode struct {
	ID        string
	UserID    string
	Code      string
	ExpiresAt time.Time
	Used      bool
}
