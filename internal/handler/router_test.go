package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/handler"
	"github.com/dieguin/ferreteria-api/internal/infra/cache"
	"github.com/dieguin/ferreteria-api/internal/infra/observability"
	"github.com/dieguin/ferreteria-api/internal/infra/sqlite"
	"github.com/dieguin/ferreteria-api/internal/service"

	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, *observability.Metrics) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	store := sqlite.NewStore(db, logger)
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init store: %v", err)
	}
	if err := store.Seed(ctx); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	metrics := observability.NewMetrics()
	catalogCache := cache.New[[]domain.Product](5 * time.Minute)

	svcs := handler.Services{
		Auth:    service.NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, 10*time.Minute, logger),
		Catalog: service.NewCatalogService(store, catalogCache, nil, metrics, "50499999999", logger),
		Cart:    service.NewCartService(store, store, logger),
		Orders:  service.NewOrderService(store, store, store, metrics, 1000, 100, logger),
		Profile: service.NewProfileService(store, store, store, logger),
	}
	return handler.NewRouter(svcs, metrics, db.Ping, logger), metrics
}

func loginAs(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()

	body := `{"email":"` + email + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%s)", email, rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequestCounters_MoveWithTraffic(t *testing.T) {
	router, metrics := newTestRouter(t)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}

	snap := metrics.GetSnapshot()
	if snap.TotalRequests < 3 {
		t.Errorf("expected at least 3 counted requests, got %.0f", snap.TotalRequests)
	}
	if snap.ErrorRate != 0 {
		t.Errorf("expected zero error rate for healthy traffic, got %.2f", snap.ErrorRate)
	}
}

func TestListProducts_Public(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(body.Products) == 0 {
		t.Error("expected seeded products in the listing")
	}
}

func TestProtectedRoute_RequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}

func TestAdminRoute_RejectsCustomer(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginAs(t, router, "cliente@email.com", "cliente123")

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for customer on admin route, got %d", rec.Code)
	}
}

func TestAdminRoute_AcceptsSuperadmin(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginAs(t, router, "gerencia@ferreteria.com", "admin123456")

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for superadmin on admin route, got %d", rec.Code)
	}
}

func TestMe_WithToken(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginAs(t, router, "cliente@email.com", "cliente123")

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var user domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Email != "cliente@email.com" {
		t.Errorf("expected seeded customer, got %s", user.Email)
	}
}
