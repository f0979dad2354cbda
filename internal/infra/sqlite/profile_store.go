package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"
)

// ============================================================
// Wishlist / favorites
// ============================================================

func (s *Store) ListWishlist(ctx context.Context, userID string) ([]string, error) {
	return s.listProductIDs(ctx, "wishlist_items", userID)
}

func (s *Store) AddToWishlist(ctx context.Context, userID, productID string) error {
	return s.addProductID(ctx, "wishlist_items", userID, productID)
}

func (s *Store) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	return s.removeProductID(ctx, "wishlist_items", userID, productID)
}

func (s *Store) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	return s.listProductIDs(ctx, "favorite_items", userID)
}

func (s *Store) AddToFavorites(ctx context.Context, userID, productID string) error {
	return s.addProductID(ctx, "favorite_items", userID, productID)
}

func (s *Store) RemoveFromFavorites(ctx context.Context, userID, productID string) error {
	return s.removeProductID(ctx, "favorite_items", userID, productID)
}

func (s *Store) listProductIDs(ctx context.Context, table, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id FROM `+table+` WHERE user_id = ? ORDER BY added_at, product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter %s: %w", table, err)
	}
	return ids, nil
}

// addProductID is idempotent: adding a product already present is a no-op.
func (s *Store) addProductID(ctx context.Context, table, userID, productID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (user_id, product_id, added_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, product_id) DO NOTHING`,
		userID, productID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add to %s: %w", table, err)
	}
	return nil
}

func (s *Store) removeProductID(ctx context.Context, table, userID, productID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove from %s: %w", table, err)
	}
	return nil
}

// ============================================================
// Notifications
// ============================================================

// ListNotifications returns a user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, message, date, is_read, type
		 FROM notifications WHERE user_id = ? ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifs := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Date, &n.Read, &n.Type); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifs = append(notifs, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter notifications: %w", err)
	}
	return notifs, nil
}

func (s *Store) InsertNotification(ctx context.Context, n *domain.Notification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, title, message, date, is_read, type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Title, n.Message, n.Date, n.Read, n.Type)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, notifID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, notifID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &domain.ErrNotFound{Resource: "notification", ID: notifID}
	}
	return nil
}

func (s *Store) DeleteNotification(ctx context.Context, userID, notifID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND user_id = ?`, notifID, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &domain.ErrNotFound{Resource: "notification", ID: notifID}
	}
	return nil
}

// ============================================================
// Payment methods
// ============================================================

func (s *Store) ListPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, type, name, details, is_default
		 FROM payment_methods WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	methods := []domain.PaymentMethod{}
	for rows.Next() {
		var m domain.PaymentMethod
		if err := rows.Scan(&m.ID, &m.UserID, &m.Type, &m.Name, &m.Details, &m.IsDefault); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter payment methods: %w", err)
	}
	return methods, nil
}

// InsertPaymentMethod adds a method. When it arrives flagged as default,
// the previous default is unset in the same transaction.
func (s *Store) InsertPaymentMethod(ctx context.Context, m *domain.PaymentMethod) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if m.IsDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE payment_methods SET is_default = 0 WHERE user_id = ?`, m.UserID,
			); err != nil {
				return fmt.Errorf("unset default payment methods: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payment_methods (id, user_id, type, name, details, is_default)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, m.UserID, m.Type, m.Name, m.Details, m.IsDefault,
		); err != nil {
			return fmt.Errorf("insert payment method: %w", err)
		}
		return nil
	})
}

func (s *Store) DeletePaymentMethod(ctx context.Context, userID, methodID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM payment_methods WHERE id = ? AND user_id = ?`, methodID, userID)
	if err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &domain.ErrNotFound{Resource: "payment method", ID: methodID}
	}
	return nil
}

// SetDefaultPaymentMethod flips the default flag to the given method and
// off every other one in a single transaction, so at most one default can
// ever be observed.
func (s *Store) SetDefaultPaymentMethod(ctx context.Context, userID, methodID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE payment_methods SET is_default = 1 WHERE id = ? AND user_id = ?`, methodID, userID)
		if err != nil {
			return fmt.Errorf("set default payment method: %w", err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return &domain.ErrNotFound{Resource: "payment method", ID: methodID}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE payment_methods SET is_default = 0 WHERE user_id = ? AND id != ?`, userID, methodID,
		); err != nil {
			return fmt.Errorf("unset other defaults: %w", err)
		}
		return nil
	})
}

// ============================================================
// Lifetime spend
// ============================================================

func (s *Store) GetTotalSpent(ctx context.Context, userID string) (float64, error) {
	var total float64
	row := s.db.QueryRowContext(ctx,
		`SELECT total_spent FROM user_totals WHERE user_id = ?`, userID)
	if err := row.Scan(&total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get total spent: %w", err)
	}
	return total, nil
}
