package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the storefront API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	ordersCreated   prometheus.Counter
	orderRevenue    prometheus.Counter
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ferreteria_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ferreteria_store_errors_total",
				Help: "Total errors from the persistence layer.",
			},
			[]string{"collection"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ferreteria_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ferreteria_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		ordersCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ferreteria_orders_created_total",
				Help: "Total orders placed through checkout.",
			},
		),
		orderRevenue: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ferreteria_order_revenue_total",
				Help: "Cumulative order totals (including shipping).",
			},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ferreteria_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RegisterCacheSize exposes the live entry count of a cache as a gauge,
// sampled at scrape time.
func (m *Metrics) RegisterCacheSize(cache string, size func() int) {
	promauto.With(m.Registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "ferreteria_cache_entries",
			Help:        "Current number of live cache entries.",
			ConstLabels: prometheus.Labels{"cache": cache},
		},
		func() float64 { return float64(size()) },
	)
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStoreError increments the persistence error counter for a collection.
func (m *Metrics) IncrStoreError(collection string) {
	m.storeErrors.WithLabelValues(collection).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordOrder records a placed order and its total.
func (m *Metrics) RecordOrder(total float64) {
	m.ordersCreated.Inc()
	m.orderRevenue.Add(total)
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// Snapshot is a point-in-time view of the counters, rendered for the
// admin dashboard.
type Snapshot struct {
	OrdersCreated float64 `json:"ordersCreated"`
	OrderRevenue  float64 `json:"orderRevenue"`
	TotalRequests float64 `json:"totalRequests"`
	ErrorRate     float64 `json:"errorRate"`
	CacheHitRate  float64 `json:"cacheHitRate"`
}

// GetSnapshot gathers current counter values for the admin dashboard
// endpoint. Prometheus counters expose cumulative values.
func (m *Metrics) GetSnapshot() *Snapshot {
	success := getCounterValue(m.requestsTotal, "success")
	failed := getCounterValue(m.requestsTotal, "error")
	hits := getCounterValue(m.cacheHits, "catalog")
	misses := getCounterValue(m.cacheMisses, "catalog")

	s := &Snapshot{
		OrdersCreated: counterValue(m.ordersCreated),
		OrderRevenue:  counterValue(m.orderRevenue),
		TotalRequests: success + failed,
	}
	if s.TotalRequests > 0 {
		s.ErrorRate = failed / s.TotalRequests
	}
	if hits+misses > 0 {
		s.CacheHitRate = hits / (hits + misses)
	}
	return s
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return counterValue(cv.WithLabelValues(label))
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
