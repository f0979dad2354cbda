package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"

	"github.com/google/uuid"
)

const userColumns = `id, email, name, role, phone, address, postal_code, created_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Phone, &u.Address, &u.PostalCode, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID fetches one account by id.
func (s *Store) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches one account by email. Email comparison is exact
// and case-sensitive, matching the login contract.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "user", ID: email}
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetUserByEmailAndPhone is the account-recovery lookup: email is matched
// case-insensitively (the recovery form does the same), phone exactly.
func (s *Store) GetUserByEmailAndPhone(ctx context.Context, email, phone string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = ? AND phone = ?`,
		strings.ToLower(email), phone)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "user", ID: email}
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email+phone: %w", err)
	}
	return u, nil
}

// CreateUser inserts the account, its credentials and the welcome
// notification in one transaction. A duplicate email surfaces as ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *domain.User, passwordHash string, welcome *domain.Notification) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, email, name, role, phone, address, postal_code, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID, user.Email, user.Name, user.Role, user.Phone, user.Address, user.PostalCode, user.CreatedAt,
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return &domain.ErrConflict{Message: "El correo ya está registrado"}
			}
			return fmt.Errorf("insert user: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO auth_credentials (user_id, password_hash) VALUES (?, ?)`,
			user.ID, passwordHash,
		); err != nil {
			return fmt.Errorf("insert credentials: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_totals (user_id, total_spent) VALUES (?, 0)`,
			user.ID,
		); err != nil {
			return fmt.Errorf("insert user totals: %w", err)
		}

		if welcome != nil {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO notifications (id, user_id, title, message, date, is_read, type)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				welcome.ID, user.ID, welcome.Title, welcome.Message, welcome.Date, welcome.Read, welcome.Type,
			); err != nil {
				return fmt.Errorf("insert welcome notification: %w", err)
			}
		}
		return nil
	})
}

// UpdateUser rewrites the mutable profile fields of an account.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, phone = ?, address = ?, postal_code = ? WHERE id = ?`,
		user.Name, user.Phone, user.Address, user.PostalCode, user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &domain.ErrNotFound{Resource: "user", ID: user.ID}
	}
	return nil
}

// DeleteUser removes the account and its credentials. Refresh tokens are
// revoked by the service; profile rows (wishlist, orders, notifications,
// payment methods, totals) stay behind.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	return nil
}

// GetCredentials fetches the password hash for a user.
func (s *Store) GetCredentials(ctx context.Context, userID string) (*domain.Credential, error) {
	var cred domain.Credential
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, password_hash, password_changed_at FROM auth_credentials WHERE user_id = ?`, userID)
	if err := row.Scan(&cred.UserID, &cred.PasswordHash, &cred.PasswordChangedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.ErrNotFound{Resource: "credentials", ID: userID}
		}
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return &cred, nil
}

// UpdatePassword overwrites the stored hash and stamps the change time.
func (s *Store) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE auth_credentials SET password_hash = ?, password_changed_at = ? WHERE user_id = ?`,
		passwordHash, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &domain.ErrNotFound{Resource: "credentials", ID: userID}
	}
	return nil
}

// StoreRefreshToken persists a hashed refresh token.
func (s *Store) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_refresh_tokens (id, user_id, token_hash, expires_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), userID, tokenHash, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken looks a token up by its hash. Revoked tokens are not
// returned.
func (s *Store) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked
		 FROM auth_refresh_tokens WHERE token_hash = ? AND revoked = 0`, tokenHash)
	if err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &t, nil
}

// RevokeRefreshToken marks one token as revoked.
func (s *Store) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_refresh_tokens SET revoked = 1 WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllRefreshTokens revokes every token of a user (logout, password
// change, account deletion).
func (s *Store) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_refresh_tokens SET revoked = 1 WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}

// StoreResetCode persists a password-reset verification code.
func (s *Store) StoreResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_reset_codes (id, user_id, code, expires_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), userID, code, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}
	return nil
}

// GetValidResetCode returns the matching unused, unexpired code, or nil.
func (s *Store) GetValidResetCode(ctx context.Context, userID, code string) (*domain.PasswordResetCode, error) {
	var rc domain.PasswordResetCode
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, code, expires_at, used
		 FROM auth_reset_codes
		 WHERE user_id = ? AND code = ? AND used = 0 AND expires_at > ?`,
		userID, code, time.Now().UTC())
	if err := row.Scan(&rc.ID, &rc.UserID, &rc.Code, &rc.ExpiresAt, &rc.Used); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reset code: %w", err)
	}
	return &rc, nil
}

// MarkResetCodeUsed burns a verification code after a successful reset.
func (s *Store) MarkResetCodeUsed(ctx context.Context, codeID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_reset_codes SET used = 1 WHERE id = ?`, codeID)
	if err != nil {
		return fmt.Errorf("mark reset code used: %w", err)
	}
	return nil
}
