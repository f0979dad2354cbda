package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/infra/sqlite"
	"github.com/dieguin/ferreteria-api/internal/service"

	"go.uber.org/zap"
)

func newCartService(t *testing.T) (*service.CartService, *sqlite.Store) {
	t.Helper()

	store, _ := newTestStore(t)
	return service.NewCartService(store, store, zap.NewNop()), store
}

func TestCart_AddItemSnapshotsProduct(t *testing.T) {
	svc, store := newCartService(t)
	ctx := context.Background()

	mustCreateProduct(t, store, domain.Product{ID: "p1", Name: "Martillo", Price: 450, Image: "img.jpg", Active: true})

	cart, err := svc.CreateCart(ctx)
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}

	cart, err = svc.AddItem(ctx, cart.ID, &domain.AddCartItemRequest{ProductID: "p1"})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Items))
	}
	item := cart.Items[0]
	if item.Name != "Martillo" || item.Price != 450 || item.Image != "img.jpg" {
		t.Errorf("snapshot wrong: %+v", item)
	}
	if item.Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", item.Quantity)
	}
}

func TestCart_AddSameProductBumpsQuantity(t *testing.T) {
	svc, store := newCartService(t)
	ctx := context.Background()

	mustCreateProduct(t, store, domain.Product{ID: "p1", Name: "Martillo", Price: 450, Active: true})

	cart, _ := svc.CreateCart(ctx)
	svc.AddItem(ctx, cart.ID, &domain.AddCartItemRequest{ProductID: "p1"})
	cart, err := svc.AddItem(ctx, cart.ID, &domain.AddCartItemRequest{ProductID: "p1"})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected a single line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}
	if cart.Total != 900 {
		t.Errorf("expected total 900, got %.2f", cart.Total)
	}
	if cart.ItemCount != 2 {
		t.Errorf("expected item count 2, got %d", cart.ItemCount)
	}
}

func TestCart_AddInactiveProductRejected(t *testing.T) {
	svc, store := newCartService(t)
	ctx := context.Background()

	mustCreateProduct(t, store, domain.Product{ID: "p1", Name: "Oculto", Price: 100, Active: false})

	cart, _ := svc.CreateCart(ctx)
	_, err := svc.AddItem(ctx, cart.ID, &domain.AddCartItemRequest{ProductID: "p1"})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCart_UpdateQuantity(t *testing.T) {
	svc, store := newCartService(t)
	ctx := context.Background()

	mustCreateProduct(t, store, domain.Product{ID: "p1", Name: "Martillo", Price: 450, Active: true})

	cart, _ := svc.CreateCart(ctx)
	svc.AddItem(ctx, cart.ID, &domain.AddCartItemRequest{ProductID: "p1"})

	cart, err := svc.UpdateQuantity(ctx, cart.ID, "p1", &domain.UpdateCartItemRequest{Quantity: 5})
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if cart.Items[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", cart.Items[0].Quantity)
	}

	// Zero is not a removal shortcut.
	_, err = svc.UpdateQuantity(ctx, cart.ID, "p1", &domain.UpdateCartItemRequest{Quantity: 0})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error for quantity 0, got %v", err)
	}
}

func TestCart_UpdateQuantityMissingLine(t *testing.T) {
	svc, _ := newCartService(t)
	ctx := context.Background()

	cart, _ := svc.CreateCart(ctx)
	_, err := svc.UpdateQuantity(ctx, cart.ID, "nope", &domain.UpdateCartItemRequest{Quantity: 2})
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCart_RemoveAndClear(t *testing.T) {
	svc, store := newCartService(t)
	ctx := context.Background()

	mustCreateProduct(t, store, domain.Product{ID: "p1", Name: "Martillo", Price: 450, Active: true})
	mustCreateProduct(t, store, domain.Product{ID: "p2", Name: "Taladro", Price: 2850, Active: true})

	cart, _ := svc.CreateCart(ctx)
	svc.AddItem(ctx, cart.ID, &domain.AddCartItemRequest{ProductID: "p1"})
	svc.AddItem(ctx, cart.ID, &domain.AddCartItemRequest{ProductID: "p2"})

	cart, err := svc.RemoveItem(ctx, cart.ID, "p1")
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != "p2" {
		t.Fatalf("expected only p2 left, got %+v", cart.Items)
	}

	cart, err = svc.Clear(ctx, cart.ID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(cart.Items) != 0 || cart.Total != 0 {
		t.Errorf("expected empty cart, got %+v", cart)
	}
}

func TestCart_UnknownCart(t *testing.T) {
	svc, _ := newCartService(t)

	_, err := svc.GetCart(context.Background(), "missing")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
