package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Cart — /v1/carts
// Carts are anonymous; the client keeps the cart id.
// ============================================================

func createCartHandler(cartSvc *service.CartService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/carts")
		defer span.End()

		cart, err := cartSvc.CreateCart(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, cart)
	}
}

func getCartHandler(cartSvc *service.CartService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/carts/{cartId}")
		defer span.End()

		cartID := chi.URLParam(r, "cartId")
		span.SetAttributes(attribute.String("cart.id", cartID))

		cart, err := cartSvc.GetCart(ctx, cartID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, cart)
	}
}

func addCartItemHandler(cartSvc *service.CartService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/carts/{cartId}/items")
		defer span.End()

		cartID := chi.URLParam(r, "cartId")

		var req domain.AddCartItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ProductID == "" {
			writeError(w, http.StatusBadRequest, "productId is required")
			return
		}

		cart, err := cartSvc.AddItem(ctx, cartID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, cart)
	}
}

func updateCartItemHandler(cartSvc *service.CartService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/carts/{cartId}/items/{productId}")
		defer span.End()

		cartID := chi.URLParam(r, "cartId")
		productID := chi.URLParam(r, "productId")

		var req domain.UpdateCartItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		cart, err := cartSvc.UpdateQuantity(ctx, cartID, productID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, cart)
	}
}

func removeCartItemHandler(cartSvc *service.CartService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/carts/{cartId}/items/{productId}")
		defer span.End()

		cartID := chi.URLParam(r, "cartId")
		productID := chi.URLParam(r, "productId")

		cart, err := cartSvc.RemoveItem(ctx, cartID, productID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, cart)
	}
}

func clearCartHandler(cartSvc *service.CartService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/carts/{cartId}/items")
		defer span.End()

		cartID := chi.URLParam(r, "cartId")

		cart, err := cartSvc.Clear(ctx, cartID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, cart)
	}
}
