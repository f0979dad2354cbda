package handler

import (
	"net/http"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/infra/observability"
	"github.com/dieguin/ferreteria-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles the service layer dependencies the router wires up.
type Services struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Cart    *service.CartService
	Orders  *service.OrderService
	Profile *service.ProfileService
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, metrics *observability.Metrics, healthCheck func() error, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(healthCheck))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Catalog (public)
		// =============================================
		r.Get("/products", listProductsHandler(svcs.Catalog, logger))
		r.Get("/products/{productId}", getProductHandler(svcs.Catalog, logger))
		r.Get("/products/{productId}/whatsapp-link", productWhatsAppLinkHandler(svcs.Catalog, logger))
		r.Get("/categories", listCategoriesHandler(svcs.Catalog, logger))

		// =============================================
		// Carts (public; the client keeps the cart id)
		// =============================================
		r.Post("/carts", createCartHandler(svcs.Cart, logger))
		r.Get("/carts/{cartId}", getCartHandler(svcs.Cart, logger))
		r.Post("/carts/{cartId}/items", addCartItemHandler(svcs.Cart, logger))
		r.Delete("/carts/{cartId}/items", clearCartHandler(svcs.Cart, logger))
		r.Put("/carts/{cartId}/items/{productId}", updateCartItemHandler(svcs.Cart, logger))
		r.Delete("/carts/{cartId}/items/{productId}", removeCartItemHandler(svcs.Cart, logger))

		// =============================================
		// Auth
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))
			r.Post("/password/reset-request", authPasswordResetRequestHandler(svcs.Auth, logger))
			r.Post("/password/reset-confirm", authPasswordResetConfirmHandler(svcs.Auth, logger))

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
				r.Put("/password", authChangePasswordHandler(svcs.Auth, logger))
			})
		})

		// =============================================
		// Account & profile data (protected)
		// =============================================
		r.Route("/me", func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			r.Get("/", getMeHandler(svcs.Auth, logger))
			r.Put("/", updateMeHandler(svcs.Auth, logger))
			r.Delete("/", deleteMeHandler(svcs.Auth, logger))

			r.Get("/data", getUserDataHandler(svcs.Profile, logger))
			r.Get("/orders", listMyOrdersHandler(svcs.Orders, logger))

			r.Post("/wishlist", addWishlistHandler(svcs.Profile, logger))
			r.Delete("/wishlist/{productId}", removeWishlistHandler(svcs.Profile, logger))
			r.Post("/favorites", addFavoriteHandler(svcs.Profile, logger))
			r.Delete("/favorites/{productId}", removeFavoriteHandler(svcs.Profile, logger))

			r.Get("/notifications", listNotificationsHandler(svcs.Profile, logger))
			r.Post("/notifications/{notifId}/read", markNotificationReadHandler(svcs.Profile, logger))
			r.Delete("/notifications/{notifId}", deleteNotificationHandler(svcs.Profile, logger))

			r.Get("/payment-methods", listPaymentMethodsHandler(svcs.Profile, logger))
			r.Post("/payment-methods", addPaymentMethodHandler(svcs.Profile, logger))
			r.Delete("/payment-methods/{methodId}", deletePaymentMethodHandler(svcs.Profile, logger))
			r.Post("/payment-methods/{methodId}/default", setDefaultPaymentMethodHandler(svcs.Profile, logger))
		})

		// =============================================
		// Checkout & orders (protected)
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))
			r.Post("/checkout", checkoutHandler(svcs.Orders, logger))
			r.Get("/orders/{orderId}", getOrderHandler(svcs.Orders, logger))
		})

		// =============================================
		// Admin console (admin or superadmin)
		// =============================================
		r.Route("/admin", func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))
			r.Use(RequireRole(logger, domain.RoleAdmin))

			r.Get("/products", adminListProductsHandler(svcs.Catalog, logger))
			r.Post("/products", adminCreateProductHandler(svcs.Catalog, logger))
			r.Put("/products/{productId}", adminUpdateProductHandler(svcs.Catalog, logger))
			r.Delete("/products/{productId}", adminDeleteProductHandler(svcs.Catalog, logger))
			r.Post("/products/{productId}/toggle", adminToggleProductHandler(svcs.Catalog, logger))
			r.Post("/images/check", adminCheckImagesHandler(svcs.Catalog, logger))

			r.Get("/orders", adminListOrdersHandler(svcs.Orders, logger))
			r.Put("/orders/{orderId}/status", adminUpdateOrderStatusHandler(svcs.Orders, logger))

			r.Get("/metrics", adminMetricsHandler(metrics, logger))
		})

		// =============================================
		// Sales (superadmin only)
		// =============================================
		r.Route("/superadmin", func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))
			r.Use(RequireRole(logger, domain.RoleSuperadmin))

			r.Post("/products/{productId}/sale", applySaleHandler(svcs.Catalog, logger))
			r.Delete("/products/{productId}/sale", removeSaleHandler(svcs.Catalog, logger))
		})
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		code := http.StatusOK
		if check != nil {
			if err := check(); err != nil {
				status = "unhealthy"
				code = http.StatusServiceUnavailable
			}
		}
		writeJSON(w, code, map[string]string{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
