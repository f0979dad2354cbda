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
// Checkout & orders — /v1/checkout, /v1/me/orders, /v1/orders/{orderId}
// ============================================================

func checkoutHandler(orderSvc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/checkout")
		defer span.End()

		var req domain.CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CartID == "" {
			writeError(w, http.StatusBadRequest, "cartId is required")
			return
		}
		span.SetAttributes(attribute.String("cart.id", req.CartID))

		order, err := orderSvc.Checkout(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, order)
	}
}

func listMyOrdersHandler(orderSvc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/me/orders")
		defer span.End()

		orders, err := orderSvc.ListMine(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
	}
}

func getOrderHandler(orderSvc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/orders/{orderId}")
		defer span.End()

		orderID := chi.URLParam(r, "orderId")
		order, err := orderSvc.Get(ctx, orderID, UserIDFromContext(ctx), RoleFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}
