package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/service"

	"go.uber.org/zap"
)

func newAuthService(t *testing.T) (*service.AuthService, *sql.DB) {
	t.Helper()

	store, db := newTestStore(t)
	svc := service.NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, 10*time.Minute, zap.NewNop())
	return svc, db
}

func register(t *testing.T, svc *service.AuthService, email string) *domain.LoginResponse {
	t.Helper()

	resp, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:    email,
		Password: "secreto123",
		Name:     "Juan Pérez",
		Phone:    "+504 9999-9999",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return resp
}

func TestRegister_LogsInImmediately(t *testing.T) {
	svc, _ := newAuthService(t)

	resp := register(t, svc, "juan@email.com")
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens on register")
	}
	if resp.User.Role != domain.RoleCustomer {
		t.Errorf("expected customer role, got %s", resp.User.Role)
	}

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.Sub != resp.User.ID {
		t.Errorf("token subject %s does not match user %s", claims.Sub, resp.User.ID)
	}
}

func TestRegister_CreatesWelcomeNotification(t *testing.T) {
	svc, db := newAuthService(t)

	resp := register(t, svc, "juan@email.com")

	var title string
	err := db.QueryRow(`SELECT title FROM notifications WHERE user_id = ?`, resp.User.ID).Scan(&title)
	if err != nil {
		t.Fatalf("query notification: %v", err)
	}
	if title != "¡Bienvenido!" {
		t.Errorf("unexpected welcome title: %s", title)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)

	register(t, svc, "juan@email.com")
	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "juan@email.com", Password: "otracontra", Name: "Otro",
	})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "juan@email.com", Password: "corta", Name: "Juan",
	})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	register(t, svc, "juan@email.com")

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "juan@email.com", Password: "secreto123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.Email != "juan@email.com" {
		t.Errorf("unexpected user: %s", resp.User.Email)
	}

	_, err = svc.Login(context.Background(), &domain.LoginRequest{
		Email: "juan@email.com", Password: "equivocada",
	})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized for bad password, got %v", err)
	}

	// Email match is exact and case-sensitive.
	_, err = svc.Login(context.Background(), &domain.LoginRequest{
		Email: "JUAN@email.com", Password: "secreto123",
	})
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized for case-mismatched email, got %v", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, _ := newAuthService(t)
	first := register(t, svc, "juan@email.com")

	second, err := svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: first.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("expected a new refresh token")
	}

	// The old token was burned by the rotation.
	_, err = svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: first.RefreshToken})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized reusing rotated token, got %v", err)
	}
}

func TestLogout_RevokesRefreshTokens(t *testing.T) {
	svc, _ := newAuthService(t)
	resp := register(t, svc, "juan@email.com")

	if err := svc.Logout(context.Background(), resp.User.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err := svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: resp.RefreshToken})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthService(t)
	resp := register(t, svc, "juan@email.com")
	ctx := context.Background()

	err := svc.ChangePassword(ctx, resp.User.ID, &domain.ChangePasswordRequest{
		CurrentPassword: "equivocada", NewPassword: "nuevaclave1",
	})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized for wrong current password, got %v", err)
	}

	if err := svc.ChangePassword(ctx, resp.User.ID, &domain.ChangePasswordRequest{
		CurrentPassword: "secreto123", NewPassword: "nuevaclave1",
	}); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, err := svc.Login(ctx, &domain.LoginRequest{Email: "juan@email.com", Password: "nuevaclave1"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Login(ctx, &domain.LoginRequest{Email: "juan@email.com", Password: "secreto123"}); err == nil {
		t.Fatal("old password still accepted")
	}
}

func TestUpdateProfile_MergesFields(t *testing.T) {
	svc, _ := newAuthService(t)
	resp := register(t, svc, "juan@email.com")

	user, err := svc.UpdateProfile(context.Background(), resp.User.ID, &domain.UpdateProfileRequest{
		Address: "Comayagua, Honduras",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if user.Address != "Comayagua, Honduras" {
		t.Errorf("address not updated: %s", user.Address)
	}
	if user.Name != "Juan Pérez" {
		t.Errorf("untouched field changed: %s", user.Name)
	}
	if user.Phone != "+504 9999-9999" {
		t.Errorf("untouched field changed: %s", user.Phone)
	}
}

func TestDeleteAccount_RequiresMatchingEmail(t *testing.T) {
	svc, db := newAuthService(t)
	resp := register(t, svc, "juan@email.com")
	ctx := context.Background()

	err := svc.DeleteAccount(ctx, resp.User.ID, &domain.DeleteAccountRequest{Email: "otro@email.com"})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error on email mismatch, got %v", err)
	}

	if err := svc.DeleteAccount(ctx, resp.User.ID, &domain.DeleteAccountRequest{Email: "juan@email.com"}); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	if _, err := svc.GetUser(ctx, resp.User.ID); err == nil {
		t.Fatal("account still resolvable after deletion")
	}

	// Profile rows are deliberately left behind.
	var notifs int
	if err := db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE user_id = ?`, resp.User.ID).Scan(&notifs); err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if notifs == 0 {
		t.Error("expected orphaned notifications to remain")
	}
}

func TestPasswordReset_FullFlow(t *testing.T) {
	svc, db := newAuthService(t)
	register(t, svc, "juan@email.com")
	ctx := context.Background()

	resp, err := svc.PasswordResetRequest(ctx, &domain.PasswordResetRequestBody{
		Email: "JUAN@EMAIL.COM", // recovery lookup is case-insensitive
		Phone: "+504 9999-9999",
	})
	if err != nil {
		t.Fatalf("reset request: %v", err)
	}
	if resp.ExpiresIn <= 0 {
		t.Error("expected a positive code TTL")
	}

	var code string
	if err := db.QueryRow(`SELECT code FROM auth_reset_codes ORDER BY expires_at DESC LIMIT 1`).Scan(&code); err != nil {
		t.Fatalf("read issued code: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	if err := svc.PasswordResetConfirm(ctx, &domain.PasswordResetConfirmRequest{
		Email: "juan@email.com", VerificationCode: code, NewPassword: "recuperada1",
	}); err != nil {
		t.Fatalf("reset confirm: %v", err)
	}

	if _, err := svc.Login(ctx, &domain.LoginRequest{Email: "juan@email.com", Password: "recuperada1"}); err != nil {
		t.Fatalf("login with reset password: %v", err)
	}

	// Codes are single-use.
	err = svc.PasswordResetConfirm(ctx, &domain.PasswordResetConfirmRequest{
		Email: "juan@email.com", VerificationCode: code, NewPassword: "otra12345",
	})
	var invalidCode *domain.ErrInvalidCode
	if !errors.As(err, &invalidCode) {
		t.Fatalf("expected invalid-code error on reuse, got %v", err)
	}
}

func TestPasswordResetRequest_UnknownAccountIsOpaque(t *testing.T) {
	svc, db := newAuthService(t)
	register(t, svc, "juan@email.com")

	// Wrong phone: same generic response, but no code issued.
	resp, err := svc.PasswordResetRequest(context.Background(), &domain.PasswordResetRequestBody{
		Email: "juan@email.com", Phone: "+504 0000-0000",
	})
	if err != nil {
		t.Fatalf("reset request: %v", err)
	}
	if resp.Message == "" {
		t.Error("expected the generic message")
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM auth_reset_codes`).Scan(&n); err != nil {
		t.Fatalf("count codes: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no code for unmatched account, got %d", n)
	}
}

func TestPasswordResetConfirm_WrongCode(t *testing.T) {
	svc, _ := newAuthService(t)
	register(t, svc, "juan@email.com")

	err := svc.PasswordResetConfirm(context.Background(), &domain.PasswordResetConfirmRequest{
		Email: "juan@email.com", VerificationCode: "000000", NewPassword: "loquesea12",
	})
	var invalidCode *domain.ErrInvalidCode
	if !errors.As(err, &invalidCode) {
		t.Fatalf("expected invalid-code error, got %v", err)
	}
}
