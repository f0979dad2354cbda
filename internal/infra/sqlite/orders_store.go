package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dieguin/ferreteria-api/internal/domain"
)

const orderColumns = `id, user_id, subtotal, shipping, total, status, date,
	customer_name, customer_email, customer_phone, customer_address, payment_method`

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Subtotal, &o.Shipping, &o.Total, &o.Status, &o.Date,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.CustomerAddress, &o.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder persists the order, its items, the "order created"
// notification, the total-spent increment and the cart wipe in a single
// transaction. Either everything lands or nothing does, so the customer's
// order history and the admin console can never disagree.
func (s *Store) CreateOrder(ctx context.Context, order *domain.Order, notif *domain.Notification, cartID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO orders (id, user_id, subtotal, shipping, total, status, date,
				customer_name, customer_email, customer_phone, customer_address, payment_method)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			order.ID, order.UserID, order.Subtotal, order.Shipping, order.Total, order.Status, order.Date,
			order.CustomerName, order.CustomerEmail, order.CustomerPhone, order.CustomerAddress, order.PaymentMethod,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, it := range order.Items {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, product_id, name, price, quantity, image)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				order.ID, it.ProductID, it.Name, it.Price, it.Quantity, it.Image,
			); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		if notif != nil {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO notifications (id, user_id, title, message, date, is_read, type)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				notif.ID, order.UserID, notif.Title, notif.Message, notif.Date, notif.Read, notif.Type,
			); err != nil {
				return fmt.Errorf("insert order notification: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_totals (user_id, total_spent) VALUES (?, ?)
			 ON CONFLICT(user_id) DO UPDATE SET total_spent = total_spent + excluded.total_spent`,
			order.UserID, order.Total,
		); err != nil {
			return fmt.Errorf("add to total spent: %w", err)
		}

		if cartID != "" {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM cart_items WHERE cart_id = ?`, cartID,
			); err != nil {
				return fmt.Errorf("clear cart: %w", err)
			}
		}
		return nil
	})
}

// GetOrder fetches one order with its items.
func (s *Store) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "order", ID: orderID}
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := s.loadOrderItems(ctx, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrdersByUser returns a customer's order history, newest first.
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY date DESC`, userID)
}

// ListAllOrders returns every order for the admin console, newest first.
func (s *Store) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY date DESC`)
}

func (s *Store) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter orders: %w", err)
	}

	if err := s.loadOrderItems(ctx, orders); err != nil {
		return nil, err
	}

	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, *o)
	}
	return out, nil
}

// loadOrderItems attaches line items to the given orders, reading only the
// rows that belong to them.
func (s *Store) loadOrderItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Order, len(orders))
	placeholders := make([]string, len(orders))
	args := make([]any, len(orders))
	for i, o := range orders {
		o.Items = []domain.OrderItem{}
		byID[o.ID] = o
		placeholders[i] = "?"
		args[i] = o.ID
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT order_id, product_id, name, price, quantity, image FROM order_items
		 WHERE order_id IN (`+strings.Join(placeholders, ", ")+`) ORDER BY rowid`,
		args...)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var it domain.OrderItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity, &it.Image); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

// UpdateOrderStatus moves an order through its lifecycle. Lifetime spend is
// untouched: cancellations do not subtract.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &domain.ErrNotFound{Resource: "order", ID: orderID}
	}
	return nil
}
