package observability_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dieguin/ferreteria-api/internal/infra/observability"

	"go.uber.org/zap"
)

func TestZapLoggerMiddleware_CountsRequests(t *testing.T) {
	metrics := observability.NewMetrics()

	handler := observability.ZapLoggerMiddleware(zap.NewNop(), metrics)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/boom" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))

	for _, path := range []string{"/v1/products", "/v1/products", "/v1/categories", "/boom"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}
	// Heartbeat traffic must not be counted.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	snap := metrics.GetSnapshot()
	if snap.TotalRequests != 4 {
		t.Errorf("expected 4 counted requests, got %.0f", snap.TotalRequests)
	}
	if snap.ErrorRate != 0.25 {
		t.Errorf("expected error rate 0.25, got %.2f", snap.ErrorRate)
	}
}

func TestRegisterCacheSize(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.RegisterCacheSize("catalog", func() int { return 3 })

	families, err := metrics.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != "ferreteria_cache_entries" {
			continue
		}
		if got := fam.GetMetric()[0].GetGauge().GetValue(); got != 3 {
			t.Errorf("expected gauge value 3, got %.0f", got)
		}
		return
	}
	t.Fatal("expected ferreteria_cache_entries gauge to be registered")
}
