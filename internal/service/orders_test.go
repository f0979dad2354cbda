package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/infra/observability"
	"github.com/dieguin/ferreteria-api/internal/infra/sqlite"
	"github.com/dieguin/ferreteria-api/internal/service"

	"go.uber.org/zap"
)

type orderFixture struct {
	orders  *service.OrderService
	carts   *service.CartService
	auth    *service.AuthService
	profile *service.ProfileService
	store   *sqlite.Store
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	store, _ := newTestStore(t)
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	return &orderFixture{
		orders:  service.NewOrderService(store, store, store, metrics, 1000, 100, logger),
		carts:   service.NewCartService(store, store, logger),
		auth:    service.NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, 10*time.Minute, logger),
		profile: service.NewProfileService(store, store, store, logger),
		store:   store,
	}
}

func (fx *orderFixture) registerUser(t *testing.T) *domain.User {
	t.Helper()

	resp, err := fx.auth.Register(context.Background(), &domain.RegisterRequest{
		Email: "cliente@email.com", Password: "cliente123", Name: "Juan Pérez",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return resp.User
}

func (fx *orderFixture) cartWith(t *testing.T, productID string, quantity int) string {
	t.Helper()
	ctx := context.Background()

	cart, err := fx.carts.CreateCart(ctx)
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	for i := 0; i < quantity; i++ {
		if _, err := fx.carts.AddItem(ctx, cart.ID, &domain.AddCartItemRequest{ProductID: productID}); err != nil {
			t.Fatalf("add item: %v", err)
		}
	}
	return cart.ID
}

func checkoutReq(cartID string) *domain.CheckoutRequest {
	return &domain.CheckoutRequest{
		CartID:          cartID,
		CustomerName:    "Juan Pérez",
		CustomerPhone:   "+504 9999-9999",
		CustomerAddress: "Comayagua, Honduras",
		PaymentMethod:   "cash",
	}
}

func TestShippingFor(t *testing.T) {
	fx := newOrderFixture(t)

	if got := fx.orders.ShippingFor(999.99); got != 100 {
		t.Errorf("below threshold: expected 100, got %.2f", got)
	}
	if got := fx.orders.ShippingFor(1000); got != 0 {
		t.Errorf("at threshold: expected 0, got %.2f", got)
	}
	if got := fx.orders.ShippingFor(2500); got != 0 {
		t.Errorf("above threshold: expected 0, got %.2f", got)
	}
}

func TestCheckout_FullFlow(t *testing.T) {
	fx := newOrderFixture(t)
	ctx := context.Background()

	mustCreateProduct(t, fx.store, domain.Product{ID: "p1", Name: "Martillo", Price: 100, Active: true})
	user := fx.registerUser(t)
	cartID := fx.cartWith(t, "p1", 2)

	order, err := fx.orders.Checkout(ctx, user.ID, checkoutReq(cartID))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if order.Subtotal != 200 {
		t.Errorf("expected subtotal 200, got %.2f", order.Subtotal)
	}
	if order.Shipping != 100 {
		t.Errorf("expected shipping 100, got %.2f", order.Shipping)
	}
	if order.Total != 300 {
		t.Errorf("expected total 300, got %.2f", order.Total)
	}
	if order.Status != domain.OrderPending {
		t.Errorf("expected pending status, got %s", order.Status)
	}
	if order.CustomerEmail != user.Email {
		t.Errorf("expected customer email from account, got %s", order.CustomerEmail)
	}

	// The cart was emptied in the same transaction.
	cart, err := fx.carts.GetCart(ctx, cartID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("expected cart wiped after checkout, got %d items", len(cart.Items))
	}

	// Customer history and admin console read the same order.
	mine, err := fx.orders.ListMine(ctx, user.ID)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	all, err := fx.orders.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(mine) != 1 || len(all) != 1 || mine[0].ID != all[0].ID {
		t.Fatalf("history/console mismatch: mine=%d all=%d", len(mine), len(all))
	}

	// Lifetime spend was incremented atomically.
	data, err := fx.profile.GetUserData(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user data: %v", err)
	}
	if data.TotalSpent != 300 {
		t.Errorf("expected total spent 300, got %.2f", data.TotalSpent)
	}

	// And the confirmation notification was written.
	found := false
	for _, n := range data.Notifications {
		if n.Type == domain.NotifOrder && n.Title == "Pedido Creado" {
			found = true
		}
	}
	if !found {
		t.Error("expected an order-created notification")
	}
}

func TestCheckout_FreeShippingAtThreshold(t *testing.T) {
	fx := newOrderFixture(t)
	ctx := context.Background()

	mustCreateProduct(t, fx.store, domain.Product{ID: "p1", Name: "Taladro", Price: 500, Active: true})
	user := fx.registerUser(t)
	cartID := fx.cartWith(t, "p1", 2)

	order, err := fx.orders.Checkout(ctx, user.ID, checkoutReq(cartID))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.Shipping != 0 {
		t.Errorf("expected free shipping at 1000, got %.2f", order.Shipping)
	}
	if order.Total != 1000 {
		t.Errorf("expected total 1000, got %.2f", order.Total)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	fx := newOrderFixture(t)
	ctx := context.Background()

	user := fx.registerUser(t)
	cart, _ := fx.carts.CreateCart(ctx)

	_, err := fx.orders.Checkout(ctx, user.ID, checkoutReq(cart.ID))
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestCheckout_MissingContactFields(t *testing.T) {
	fx := newOrderFixture(t)
	ctx := context.Background()

	mustCreateProduct(t, fx.store, domain.Product{ID: "p1", Name: "Martillo", Price: 100, Active: true})
	user := fx.registerUser(t)
	cartID := fx.cartWith(t, "p1", 1)

	req := checkoutReq(cartID)
	req.CustomerAddress = ""
	_, err := fx.orders.Checkout(ctx, user.ID, req)
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetOrder_Ownership(t *testing.T) {
	fx := newOrderFixture(t)
	ctx := context.Background()

	mustCreateProduct(t, fx.store, domain.Product{ID: "p1", Name: "Martillo", Price: 100, Active: true})
	user := fx.registerUser(t)
	cartID := fx.cartWith(t, "p1", 1)
	order, err := fx.orders.Checkout(ctx, user.ID, checkoutReq(cartID))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if _, err := fx.orders.Get(ctx, order.ID, user.ID, domain.RoleCustomer); err != nil {
		t.Fatalf("owner read: %v", err)
	}

	// Another customer cannot even learn the order exists.
	_, err = fx.orders.Get(ctx, order.ID, "someone-else", domain.RoleCustomer)
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found for stranger, got %v", err)
	}

	if _, err := fx.orders.Get(ctx, order.ID, "someone-else", domain.RoleAdmin); err != nil {
		t.Fatalf("admin read: %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	fx := newOrderFixture(t)
	ctx := context.Background()

	mustCreateProduct(t, fx.store, domain.Product{ID: "p1", Name: "Martillo", Price: 100, Active: true})
	user := fx.registerUser(t)
	cartID := fx.cartWith(t, "p1", 1)
	order, _ := fx.orders.Checkout(ctx, user.ID, checkoutReq(cartID))

	updated, err := fx.orders.UpdateStatus(ctx, order.ID, &domain.UpdateOrderStatusRequest{Status: domain.OrderShipped})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.OrderShipped {
		t.Errorf("expected shipped, got %s", updated.Status)
	}

	_, err = fx.orders.UpdateStatus(ctx, order.ID, &domain.UpdateOrderStatusRequest{Status: "teleported"})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error for bogus status, got %v", err)
	}
}
