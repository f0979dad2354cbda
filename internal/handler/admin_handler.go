package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/infra/observability"
	"github.com/dieguin/ferreteria-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Admin catalog — /v1/admin/products
// ============================================================

func adminListProductsHandler(catalogSvc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/products")
		defer span.End()

		products, err := catalogSvc.ListAll(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	}
}

func adminCreateProductHandler(catalogSvc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/products")
		defer span.End()

		var req domain.ProductCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		product, err := catalogSvc.CreateProduct(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, product)
	}
}

func adminUpdateProductHandler(catalogSvc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/products/{productId}")
		defer span.End()

		productID := chi.URLParam(r, "productId")

		var req domain.ProductUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		product, err := catalogSvc.UpdateProduct(ctx, productID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

func adminDeleteProductHandler(catalogSvc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/products/{productId}")
		defer span.End()

		if err := catalogSvc.DeleteProduct(ctx, chi.URLParam(r, "productId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func adminToggleProductHandler(catalogSvc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/products/{productId}/toggle")
		defer span.End()

		product, err := catalogSvc.ToggleActive(ctx, chi.URLParam(r, "productId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

func adminCheckImagesHandler(catalogSvc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/images/check")
		defer span.End()

		results, err := catalogSvc.CheckImages(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		broken := 0
		for _, res := range results {
			if !res.OK {
				broken++
			}
		}
		span.SetAttributes(attribute.Int("images.broken", broken))

		writeJSON(w, http.StatusOK, map[string]any{
			"results": results,
			"checked": len(results),
			"broken":  broken,
		})
	}
}

// ============================================================
// Sales — /v1/superadmin/products/{productId}/sale
// ============================================================

func applySaleHandler(catalogSvc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/superadmin/products/{productId}/sale")
		defer span.End()

		productID := chi.URLParam(r, "productId")

		var req domain.SaleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		product, err := catalogSvc.ApplySale(ctx, productID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

func removeSaleHandler(catalogSvc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/superadmin/products/{productId}/sale")
		defer span.End()

		product, err := catalogSvc.RemoveSale(ctx, chi.URLParam(r, "productId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

// ============================================================
// Admin orders — /v1/admin/orders
// ============================================================

func adminListOrdersHandler(orderSvc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/orders")
		defer span.End()

		orders, err := orderSvc.ListAll(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
	}
}

func adminUpdateOrderStatusHandler(orderSvc *service.OrderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/orders/{orderId}/status")
		defer span.End()

		orderID := chi.URLParam(r, "orderId")

		var req domain.UpdateOrderStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		order, err := orderSvc.UpdateStatus(ctx, orderID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

// ============================================================
// Admin metrics — /v1/admin/metrics
// ============================================================

func adminMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := metrics.GetSnapshot()
		writeJSON(w, http.StatusOK, snapshot)
	}
}
