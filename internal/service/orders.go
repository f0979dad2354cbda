package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/infra/observability"
	"github.com/dieguin/ferreteria-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var orderTracer = otel.Tracer("service/orders")

// OrderService handles checkout and order management. Checkout writes the
// order, its confirmation notification, the customer's running total and
// the cart wipe in one transaction, so the customer history and the admin
// console always read the same rows.
type OrderService struct {
	orders  port.OrderStore
	carts   port.CartStore
	users   port.UserStore
	metrics *observability.Metrics
	logger  *zap.Logger

	freeShippingMin float64
	shippingCost    float64
}

// NewOrderService creates a new order service.
func NewOrderService(orders port.OrderStore, carts port.CartStore, users port.UserStore, metrics *observability.Metrics, freeShippingMin, shippingCost float64, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:          orders,
		carts:           carts,
		users:           users,
		metrics:         metrics,
		logger:          logger,
		freeShippingMin: freeShippingMin,
		shippingCost:    shippingCost,
	}
}

// ============================================================
// Checkout — POST /v1/checkout
// ============================================================

// Checkout converts the cart into an order for the authenticated user.
func (s *OrderService) Checkout(ctx context.Context, userID string, req *domain.CheckoutRequest) (*domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "OrderService.Checkout")
	defer span.End()
	span.SetAttributes(attribute.String("cart_id", req.CartID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("checkout", time.Since(start)) }()

	if req.CustomerName == "" || req.CustomerPhone == "" || req.CustomerAddress == "" {
		return nil, &domain.ErrValidation{Field: "body", Message: "Nombre, teléfono y dirección son obligatorios"}
	}
	if req.PaymentMethod == "" {
		return nil, &domain.ErrValidation{Field: "paymentMethod", Message: "Selecciona un método de pago"}
	}

	cart, err := s.carts.GetCart(ctx, req.CartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, &domain.ErrValidation{Field: "cartId", Message: "El carrito está vacío"}
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	subtotal := round2(cart.Total())
	shipping := s.ShippingFor(subtotal)
	now := time.Now().UTC()

	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		Items:           make([]domain.OrderItem, 0, len(cart.Items)),
		Subtotal:        subtotal,
		Shipping:        shipping,
		Total:           round2(subtotal + shipping),
		Status:          domain.OrderPending,
		Date:            now,
		CustomerName:    req.CustomerName,
		CustomerEmail:   user.Email,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		PaymentMethod:   req.PaymentMethod,
	}
	for _, it := range cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}

	notif := &domain.Notification{
		ID:      uuid.NewString(),
		UserID:  user.ID,
		Title:   "Pedido Creado",
		Message: fmt.Sprintf("Tu pedido #%s ha sido creado exitosamente", order.ID),
		Date:    now,
		Type:    domain.NotifOrder,
	}

	if err := s.orders.CreateOrder(ctx, order, notif, req.CartID); err != nil {
		s.metrics.IncrStoreError("orders")
		return nil, err
	}

	s.metrics.RecordOrder(order.Total)
	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", user.ID),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// ShippingFor applies the flat-rate rule: free at or above the threshold.
func (s *OrderService) ShippingFor(subtotal float64) float64 {
	if subtotal >= s.freeShippingMin {
		return 0
	}
	return s.shippingCost
}

// ============================================================
// Order queries
// ============================================================

// ListMine returns the caller's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, userID string) ([]domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "OrderService.ListMine")
	defer span.End()

	return s.orders.ListOrdersByUser(ctx, userID)
}

// Get returns one order, enforcing ownership for non-admin callers.
func (s *OrderService) Get(ctx context.Context, orderID, userID, role string) (*domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "OrderService.Get")
	defer span.End()

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID && role != domain.RoleAdmin && role != domain.RoleSuperadmin {
		// Hide the order's existence from other customers.
		return nil, &domain.ErrNotFound{Resource: "order", ID: orderID}
	}
	return order, nil
}

// ListAll returns every order for the admin console, newest first.
func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "OrderService.ListAll")
	defer span.End()

	return s.orders.ListAllOrders(ctx)
}

// UpdateStatus advances an order through its lifecycle.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, req *domain.UpdateOrderStatusRequest) (*domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "OrderService.UpdateStatus")
	defer span.End()
	span.SetAttributes(attribute.String("status", req.Status))

	if !domain.ValidOrderStatus(req.Status) {
		return nil, &domain.ErrValidation{Field: "status", Message: "Estado de pedido inválido"}
	}

	if err := s.orders.UpdateOrderStatus(ctx, orderID, req.Status); err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("status", req.Status),
	)
	return s.orders.GetOrder(ctx, orderID)
}
