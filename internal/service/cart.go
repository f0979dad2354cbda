package service

import (
	"context"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var cartTracer = otel.Tracer("service/cart")

// CartService manages server-side carts. Carts are anonymous: the client
// holds the cart id and presents it on every call, so a cart survives
// login and logout.
type CartService struct {
	carts   port.CartStore
	catalog port.CatalogStore
	logger  *zap.Logger
}

// NewCartService creates a new cart service.
func NewCartService(carts port.CartStore, catalog port.CatalogStore, logger *zap.Logger) *CartService {
	return &CartService{carts: carts, catalog: catalog, logger: logger}
}

// CreateCart mints a new empty cart and returns it.
func (s *CartService) CreateCart(ctx context.Context) (*domain.CartResponse, error) {
	ctx, span := cartTracer.Start(ctx, "CartService.CreateCart")
	defer span.End()

	cartID := uuid.NewString()
	if err := s.carts.CreateCart(ctx, cartID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, cartID)
}

// GetCart returns the cart with computed subtotal and item count.
func (s *CartService) GetCart(ctx context.Context, cartID string) (*domain.CartResponse, error) {
	ctx, span := cartTracer.Start(ctx, "CartService.GetCart")
	defer span.End()

	cart, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return toCartResponse(cart), nil
}

// AddItem puts one unit of a product in the cart. The product's name, price
// and image are snapshotted at add time; adding an already-present product
// bumps its quantity instead of creating a second line.
func (s *CartService) AddItem(ctx context.Context, cartID string, req *domain.AddCartItemRequest) (*domain.CartResponse, error) {
	ctx, span := cartTracer.Start(ctx, "CartService.AddItem")
	defer span.End()
	span.SetAttributes(attribute.String("product_id", req.ProductID))

	if _, err := s.carts.GetCart(ctx, cartID); err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, &domain.ErrValidation{Field: "productId", Message: "El producto no está disponible"}
	}

	item := &domain.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Quantity:  1,
	}
	if err := s.carts.InsertCartItem(ctx, cartID, item); err != nil {
		return nil, err
	}

	s.logger.Debug("cart item added",
		zap.String("cart_id", cartID),
		zap.String("product_id", product.ID),
	)
	return s.GetCart(ctx, cartID)
}

// UpdateQuantity sets the absolute quantity of a cart line. Quantities
// below one are rejected; removal is an explicit separate call.
func (s *CartService) UpdateQuantity(ctx context.Context, cartID, productID string, req *domain.UpdateCartItemRequest) (*domain.CartResponse, error) {
	ctx, span := cartTracer.Start(ctx, "CartService.UpdateQuantity")
	defer span.End()

	if req.Quantity < 1 {
		return nil, &domain.ErrValidation{Field: "quantity", Message: "La cantidad mínima es 1; elimina el producto para quitarlo"}
	}

	item, err := s.carts.GetCartItem(ctx, cartID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &domain.ErrNotFound{Resource: "cart item", ID: productID}
	}

	if err := s.carts.UpdateCartItemQuantity(ctx, cartID, productID, req.Quantity); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, cartID)
}

// RemoveItem deletes a cart line entirely, whatever its quantity.
func (s *CartService) RemoveItem(ctx context.Context, cartID, productID string) (*domain.CartResponse, error) {
	ctx, span := cartTracer.Start(ctx, "CartService.RemoveItem")
	defer span.End()

	if err := s.carts.DeleteCartItem(ctx, cartID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, cartID)
}

// Clear empties the cart but keeps it usable.
func (s *CartService) Clear(ctx context.Context, cartID string) (*domain.CartResponse, error) {
	ctx, span := cartTracer.Start(ctx, "CartService.Clear")
	defer span.End()

	if err := s.carts.ClearCart(ctx, cartID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, cartID)
}

func toCartResponse(cart *domain.Cart) *domain.CartResponse {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return &domain.CartResponse{
		ID:        cart.ID,
		Items:     items,
		Total:     round2(cart.Total()),
		ItemCount: cart.ItemCount(),
	}
}
