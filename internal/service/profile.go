package service

import (
	"context"
	"strings"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var profileTracer = otel.Tracer("service/profile")

// ProfileService manages the per-user profile bundle: wishlist, favorites,
// notifications, payment methods and lifetime spend.
type ProfileService struct {
	store   port.ProfileStore
	orders  port.OrderStore
	catalog port.CatalogStore
	logger  *zap.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store port.ProfileStore, orders port.OrderStore, catalog port.CatalogStore, logger *zap.Logger) *ProfileService {
	return &ProfileService{store: store, orders: orders, catalog: catalog, logger: logger}
}

// GetUserData assembles the full profile bundle the storefront renders on
// the account page.
func (s *ProfileService) GetUserData(ctx context.Context, userID string) (*domain.UserData, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.GetUserData")
	defer span.End()

	wishlist, err := s.store.ListWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	favorites, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	notifications, err := s.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	methods, err := s.store.ListPaymentMethods(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalSpent, err := s.store.GetTotalSpent(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.UserData{
		Wishlist:       wishlist,
		Favorites:      favorites,
		Notifications:  notifications,
		Orders:         orders,
		PaymentMethods: methods,
		TotalSpent:     totalSpent,
	}, nil
}

// ============================================================
// Wishlist / favorites
// ============================================================

// AddToWishlist saves a product id; adding it twice is a no-op.
func (s *ProfileService) AddToWishlist(ctx context.Context, userID, productID string) ([]string, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.AddToWishlist")
	defer span.End()
	span.SetAttributes(attribute.String("product_id", productID))

	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.store.AddToWishlist(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.store.ListWishlist(ctx, userID)
}

func (s *ProfileService) RemoveFromWishlist(ctx context.Context, userID, productID string) ([]string, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.RemoveFromWishlist")
	defer span.End()

	if err := s.store.RemoveFromWishlist(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.store.ListWishlist(ctx, userID)
}

func (s *ProfileService) AddToFavorites(ctx context.Context, userID, productID string) ([]string, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.AddToFavorites")
	defer span.End()
	span.SetAttributes(attribute.String("product_id", productID))

	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.store.AddToFavorites(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.store.ListFavorites(ctx, userID)
}

func (s *ProfileService) RemoveFromFavorites(ctx context.Context, userID, productID string) ([]string, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.RemoveFromFavorites")
	defer span.End()

	if err := s.store.RemoveFromFavorites(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.store.ListFavorites(ctx, userID)
}

// ============================================================
// Notifications
// ============================================================

// ListNotifications returns the user's notifications, newest first.
func (s *ProfileService) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.ListNotifications")
	defer span.End()

	return s.store.ListNotifications(ctx, userID)
}

func (s *ProfileService) MarkNotificationRead(ctx context.Context, userID, notifID string) error {
	ctx, span := profileTracer.Start(ctx, "ProfileService.MarkNotificationRead")
	defer span.End()

	return s.store.MarkNotificationRead(ctx, userID, notifID)
}

func (s *ProfileService) DeleteNotification(ctx context.Context, userID, notifID string) error {
	ctx, span := profileTracer.Start(ctx, "ProfileService.DeleteNotification")
	defer span.End()

	return s.store.DeleteNotification(ctx, userID, notifID)
}

// ============================================================
// Payment methods
// ============================================================

func (s *ProfileService) ListPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.ListPaymentMethods")
	defer span.End()

	return s.store.ListPaymentMethods(ctx, userID)
}

// AddPaymentMethod saves a card or bank reference. If it is flagged as
// default, the insert unsets every other default in the same transaction.
func (s *ProfileService) AddPaymentMethod(ctx context.Context, userID string, req *domain.AddPaymentMethodRequest) (*domain.PaymentMethod, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.AddPaymentMethod")
	defer span.End()

	if req.Type != domain.PaymentCard && req.Type != domain.PaymentBank {
		return nil, &domain.ErrValidation{Field: "type", Message: "Tipo de método de pago inválido"}
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "El nombre es obligatorio"}
	}

	method := &domain.PaymentMethod{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      req.Type,
		Name:      req.Name,
		Details:   req.Details,
		IsDefault: req.IsDefault,
	}
	if err := s.store.InsertPaymentMethod(ctx, method); err != nil {
		return nil, err
	}

	s.logger.Info("payment method added",
		zap.String("user_id", userID),
		zap.String("type", method.Type),
	)
	return method, nil
}

func (s *ProfileService) DeletePaymentMethod(ctx context.Context, userID, methodID string) error {
	ctx, span := profileTracer.Start(ctx, "ProfileService.DeletePaymentMethod")
	defer span.End()

	return s.store.DeletePaymentMethod(ctx, userID, methodID)
}

// SetDefaultPaymentMethod atomically makes methodID the only default.
func (s *ProfileService) SetDefaultPaymentMethod(ctx context.Context, userID, methodID string) ([]domain.PaymentMethod, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.SetDefaultPaymentMethod")
	defer span.End()

	if err := s.store.SetDefaultPaymentMethod(ctx, userID, methodID); err != nil {
		return nil, err
	}
	return s.store.ListPaymentMethods(ctx, userID)
}
