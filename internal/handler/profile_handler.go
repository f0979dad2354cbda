package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Profile bundle — /v1/me/data
// ============================================================

func getUserDataHandler(profileSvc *service.ProfileService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/me/data")
		defer span.End()

		data, err := profileSvc.GetUserData(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}

// ============================================================
// Wishlist & favorites — /v1/me/wishlist, /v1/me/favorites
// ============================================================

func addWishlistHandler(profileSvc *service.ProfileService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/me/wishlist")
		defer span.End()

		var req domain.WishlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ProductID == "" {
			writeError(w, http.StatusBadRequest, "productId is required")
			return
		}

		wishlist, err := profileSvc.AddToWishlist(ctx, UserIDFromContext(ctx), req.ProductID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"wishlist": wishlist})
	}
}

func removeWishlistHandler(profileSvc *service.ProfileService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/me/wishlist/{productId}")
		defer span.End()

		wishlist, err := profileSvc.RemoveFromWishlist(ctx, UserIDFromContext(ctx), chi.URLParam(r, "productId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"wishlist": wishlist})
	}
}

func addFavoriteHandler(profileSvc *service.ProfileService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/me/favorites")
		defer span.End()

		var req domain.WishlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ProductID == "" {
			writeError(w, http.StatusBadRequest, "productId is required")
			return
		}

		favorites, err := profileSvc.AddToFavorites(ctx, UserIDFromContext(ctx), req.ProductID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"favorites": favorites})
	}
}

func removeFavoriteHandler(profileSvc *service.ProfileService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/me/favorites/{productId}")
		defer span.End()

		favorites, err := profileSvc.RemoveFromFavorites(ctx, UserIDFromContext(ctx), chi.URLParam(r, "productId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"favorites": favorites})
	}
}

// ============================================================
// Notifications — /v1/me/notifications
// ============================================================

func listNotificationsHandler(profileSvc *service.ProfileService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/me/notifications")
		defer span.End()

		notifications, err := profileSvc.ListNotifications(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
	}
}

func markNotificationReadHandler(profileSvc *service.ProfileService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/me/notifications/{notifId}/read")
		defer span.End()

		if err := profileSvc.MarkNotificationRead(ctx, UserIDFromContext(ctx), chi.URLParam(r, "notifId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func deleteNotificationHandler(profileSvc *service.ProfileService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/me/notifications/{notifId}")
		defer span.End()

		if err := profileSvc.DeleteNotification(ctx, UserIDFromContext(ctx), chi.URLParam(r, "notifId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Payment methods — /v1/me/payment-methods
// ============================================================

func listPaymentMethodsHandler(profileSvc *service.ProfileService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/me/payment-methods")
		defer span.End()

		methods, err := profileSvc.ListPaymentMethods(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"paymentMethods": methods})
	}
}

func addPaymentMethodHandler(profileSvc *service.ProfileService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/me/payment-methods")
		defer span.End()

		var req domain.AddPaymentMethodRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		method, err := profileSvc.AddPaymentMethod(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, method)
	}
}

func deletePaymentMethodHandler(profileSvc *service.ProfileService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/me/payment-methods/{methodId}")
		defer span.End()

		if err := profileSvc.DeletePaymentMethod(ctx, UserIDFromContext(ctx), chi.URLParam(r, "methodId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func setDefaultPaymentMethodHandler(profileSvc *service.ProfileService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/me/payment-methods/{methodId}/default")
		defer span.End()

		methods, err := profileSvc.SetDefaultPaymentMethod(ctx, UserIDFromContext(ctx), chi.URLParam(r, "methodId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"paymentMethods": methods})
	}
}
