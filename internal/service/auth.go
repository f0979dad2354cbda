// Package service provides the business logic layer (use cases).
// AuthService handles registration, login, JWT token management,
// password recovery and profile updates.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

const (
	minPasswordLen = 6
	bcryptCost     = 12
)

// AuthService orchestrates authentication flows.
type AuthService struct {
	store      port.UserStore
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store port.UserStore, jwtSecret string, accessTTL, refreshTTL, resetTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:      store,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		resetTTL:   resetTTL,
		logger:     logger,
	}
}

// ============================================================
// Register — POST /v1/auth/register
// ============================================================

// Register creates an account and logs it in immediately. New accounts are
// always customers; admin roles only exist via seed or direct store edits.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if req.Email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "El correo es obligatorio"}
	}
	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "El nombre es obligatorio"}
	}
	if len(req.Password) < minPasswordLen {
		return nil, &domain.ErrValidation{Field: "password", Message: fmt.Sprintf("La contraseña debe tener al menos %d caracteres", minPasswordLen)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:         uuid.NewString(),
		Email:      req.Email,
		Name:       req.Name,
		Role:       domain.RoleCustomer,
		Phone:      req.Phone,
		Address:    req.Address,
		PostalCode: req.PostalCode,
		CreatedAt:  time.Now().UTC(),
	}
	welcome := &domain.Notification{
		ID:      uuid.NewString(),
		UserID:  user.ID,
		Title:   "¡Bienvenido!",
		Message: "Gracias por registrarte en Ferretería El Dieguín",
		Date:    time.Now().UTC(),
		Type:    domain.NotifSystem,
	}

	// The UNIQUE constraint on email makes the duplicate check atomic;
	// the store maps it to ErrConflict.
	if err := s.store.CreateUser(ctx, user, string(hash), welcome); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)

	return s.issueTokens(ctx, user)
}

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

// Login matches email exactly (case-sensitive) and verifies the password
// against the stored bcrypt hash.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()
	span.SetAttributes(attribute.String("email", req.Email))

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, &domain.ErrUnauthorized{Message: "Credenciales inválidas"}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	cred, err := s.store.GetCredentials(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login: failed password attempt", zap.String("user_id", user.ID))
		return nil, &domain.ErrUnauthorized{Message: "Credenciales inválidas"}
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return s.issueTokens(ctx, user)
}

// ============================================================
// Refresh — POST /v1/auth/refresh
// ============================================================

func (s *AuthService) Refresh(ctx context.Context, req *domain.RefreshRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	tokenHash := hashToken(req.RefreshToken)

	stored, err := s.store.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	if stored == nil {
		return nil, &domain.ErrUnauthorized{Message: "Token de actualización inválido"}
	}

	if stored.ExpiresAt.Before(time.Now()) {
		s.logger.Warn("refresh: expired token used", zap.String("user_id", stored.UserID))
		_ = s.store.RevokeRefreshToken(ctx, tokenHash)
		return nil, &domain.ErrUnauthorized{Message: "Token de actualización expirado"}
	}

	// Rotation: the old token is burned before a new one is issued.
	_ = s.store.RevokeRefreshToken(ctx, tokenHash)

	user, err := s.store.GetUserByID(ctx, stored.UserID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			// Account deleted since the token was issued.
			return nil, &domain.ErrUnauthorized{Message: "Token de actualización inválido"}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// ============================================================
// Logout — POST /v1/auth/logout
// ============================================================

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	ctx, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if err := s.store.RevokeAllRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	s.logger.Info("user logged out", zap.String("user_id", userID))
	return nil
}

// GetUser returns the authenticated account.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.GetUser")
	defer span.End()

	return s.store.GetUserByID(ctx, userID)
}

// ============================================================
// UpdateProfile — PUT /v1/me
// ============================================================

// UpdateProfile merges the non-empty fields of req into the account.
// Email and role cannot be changed here.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.UpdateProfile")
	defer span.End()

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed := false
	if req.Name != "" {
		user.Name = req.Name
		changed = true
	}
	if req.Phone != "" {
		user.Phone = req.Phone
		changed = true
	}
	if req.Address != "" {
		user.Address = req.Address
		changed = true
	}
	if req.PostalCode != "" {
		user.PostalCode = req.PostalCode
		changed = true
	}
	if !changed {
		return nil, &domain.ErrValidation{Field: "body", Message: "Ningún campo para actualizar"}
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// ============================================================
// ChangePassword — PUT /v1/auth/password
// ============================================================

func (s *AuthService) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	cred, err := s.store.GetCredentials(ctx, userID)
	if err != nil {
		return fmt.Errorf("get credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		s.logger.Warn("password change: wrong current password", zap.String("user_id", userID))
		return &domain.ErrUnauthorized{Message: "Contraseña actual incorrecta"}
	}

	if len(req.NewPassword) < minPasswordLen {
		return &domain.ErrValidation{Field: "newPassword", Message: fmt.Sprintf("La contraseña debe tener al menos %d caracteres", minPasswordLen)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	// Force re-login on other devices.
	_ = s.store.RevokeAllRefreshTokens(ctx, userID)

	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

// ============================================================
// DeleteAccount — DELETE /v1/me
// ============================================================

// DeleteAccount removes the authenticated account after the caller re-types
// their own email as confirmation. Profile data (orders, notifications,
// wishlist) is intentionally left behind.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string, req *domain.DeleteAccountRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.DeleteAccount")
	defer span.End()

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if req.Email != user.Email {
		return &domain.ErrValidation{Field: "email", Message: "El correo no coincide con tu cuenta"}
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.store.RevokeAllRefreshTokens(ctx, userID)

	s.logger.Info("account deleted", zap.String("user_id", userID))
	return nil
}

// ============================================================
// Password recovery — POST /v1/auth/password/reset-request
// ============================================================

// PasswordResetRequest looks an account up by email + phone and issues a
// short-lived verification code. The stored password is never revealed;
// the response is identical whether or not the account exists.
func (s *AuthService) PasswordResetRequest(ctx context.Context, req *domain.PasswordResetRequestBody) (*domain.PasswordResetRequestResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.PasswordResetRequest")
	defer span.End()

	generic := &domain.PasswordResetRequestResponse{
		Message:   "Si los datos son correctos, enviaremos un código de verificación",
		ExpiresIn: int(s.resetTTL.Seconds()),
	}

	user, err := s.store.GetUserByEmailAndPhone(ctx, req.Email, req.Phone)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return generic, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	code := generateVerificationCode()
	if err := s.store.StoreResetCode(ctx, user.ID, code, time.Now().Add(s.resetTTL)); err != nil {
		return nil, fmt.Errorf("store reset code: %w", err)
	}

	// In production this goes out by SMS/email.
	s.logger.Info("password reset code generated",
		zap.String("user_id", user.ID),
		zap.String("code", code), // dev only — remove in production
	)

	return generic, nil
}

// ============================================================
// Password recovery — POST /v1/auth/password/reset-confirm
// ============================================================

func (s *AuthService) PasswordResetConfirm(ctx context.Context, req *domain.PasswordResetConfirmRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.PasswordResetConfirm")
	defer span.End()

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return &domain.ErrInvalidCode{}
		}
		return fmt.Errorf("get user: %w", err)
	}

	code, err := s.store.GetValidResetCode(ctx, user.ID, req.VerificationCode)
	if err != nil {
		return fmt.Errorf("get reset code: %w", err)
	}
	if code == nil {
		return &domain.ErrInvalidCode{}
	}

	if len(req.NewPassword) < minPasswordLen {
		return &domain.ErrValidation{Field: "newPassword", Message: fmt.Sprintf("La contraseña debe tener al menos %d caracteres", minPasswordLen)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	_ = s.store.MarkResetCodeUsed(ctx, code.ID)
	_ = s.store.RevokeAllRefreshTokens(ctx, user.ID)

	s.logger.Info("password reset completed", zap.String("user_id", user.ID))
	return nil
}

// ============================================================
// Tokens
// ============================================================

// JWTClaims represents the custom claims in access tokens.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// ValidateAccessToken parses and validates a bearer token; used by the
// auth middleware.
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido o expirado"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}
	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "Tipo de token inválido"}
	}
	return claims, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*domain.LoginResponse, error) {
	accessToken, err := s.signAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.store.StoreRefreshToken(ctx, user.ID, refreshHash, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.accessTTL.Seconds()),
		User:         user,
	}, nil
}

func (s *AuthService) signAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Sub:   user.ID,
		Email: user.Email,
		Role:  user.Role,
		Type:  "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "ferreteria-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func generateRefreshToken() (raw string, hashed string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	hashed = hashToken(raw)
	return raw, hashed, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func generateVerificationCode() string {
	code := ""
	for i := 0; i < 6; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(10))
		code += fmt.Sprintf("%d", n.Int64())
	}
	return code
}
