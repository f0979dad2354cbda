package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"
)

// CreateCart inserts an empty cart row for a new cart token.
func (s *Store) CreateCart(ctx context.Context, cartID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO carts (id, created_at) VALUES (?, ?)`, cartID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}
	return nil
}

// GetCart fetches a cart and its line items.
func (s *Store) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart := &domain.Cart{ID: cartID, Items: []domain.CartItem{}}

	row := s.db.QueryRowContext(ctx, `SELECT created_at FROM carts WHERE id = ?`, cartID)
	if err := row.Scan(&cart.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.ErrNotFound{Resource: "cart", ID: cartID}
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, name, price, image, quantity
		 FROM cart_items WHERE cart_id = ? ORDER BY rowid`, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Price, &it.Image, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter cart items: %w", err)
	}
	return cart, nil
}

// GetCartItem fetches one line of a cart, or nil if absent.
func (s *Store) GetCartItem(ctx context.Context, cartID, productID string) (*domain.CartItem, error) {
	var it domain.CartItem
	row := s.db.QueryRowContext(ctx,
		`SELECT product_id, name, price, image, quantity
		 FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID)
	if err := row.Scan(&it.ProductID, &it.Name, &it.Price, &it.Image, &it.Quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return &it, nil
}

// InsertCartItem adds a line, or bumps the quantity when the product is
// already in the cart.
func (s *Store) InsertCartItem(ctx context.Context, cartID string, item *domain.CartItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, product_id, name, price, image, quantity)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cart_id, product_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
		cartID, item.ProductID, item.Name, item.Price, item.Image, item.Quantity,
	)
	if err != nil {
		return fmt.Errorf("insert cart item: %w", err)
	}
	return nil
}

// UpdateCartItemQuantity sets the quantity of one line.
func (s *Store) UpdateCartItemQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ? WHERE cart_id = ? AND product_id = ?`,
		quantity, cartID, productID,
	)
	if err != nil {
		return fmt.Errorf("update cart item quantity: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &domain.ErrNotFound{Resource: "cart item", ID: productID}
	}
	return nil
}

// DeleteCartItem removes one line from a cart.
func (s *Store) DeleteCartItem(ctx context.Context, cartID, productID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &domain.ErrNotFound{Resource: "cart item", ID: productID}
	}
	return nil
}

// ClearCart removes every line of a cart; the cart row stays.
func (s *Store) ClearCart(ctx context.Context, cartID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
