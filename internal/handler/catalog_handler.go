package handler

import (
	"net/http"

	"github.com/dieguin/ferreteria-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Public catalog — /v1/products, /v1/categories
// ============================================================

func listProductsHandler(catalogSvc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/products")
		defer span.End()

		query := parseProductQuery(r)
		span.SetAttributes(
			attribute.String("search", query.Search),
			attribute.String("category", query.Category),
		)

		products, err := catalogSvc.Search(ctx, query)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	}
}

func getProductHandler(catalogSvc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/products/{productId}")
		defer span.End()

		productID := chi.URLParam(r, "productId")
		product, err := catalogSvc.GetProduct(ctx, productID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

func productWhatsAppLinkHandler(catalogSvc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/products/{productId}/whatsapp-link")
		defer span.End()

		productID := chi.URLParam(r, "productId")
		link, err := catalogSvc.WhatsAppLink(ctx, productID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": link})
	}
}

func listCategoriesHandler(catalogSvc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/categories")
		defer span.End()

		categories, err := catalogSvc.ListCategories(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
	}
}
