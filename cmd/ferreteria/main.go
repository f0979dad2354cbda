package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dieguin/ferreteria-api/internal/config"
	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/handler"
	"github.com/dieguin/ferreteria-api/internal/infra/cache"
	"github.com/dieguin/ferreteria-api/internal/infra/client"
	"github.com/dieguin/ferreteria-api/internal/infra/observability"
	"github.com/dieguin/ferreteria-api/internal/infra/resilience"
	"github.com/dieguin/ferreteria-api/internal/infra/sqlite"
	"github.com/dieguin/ferreteria-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("sqlite_path", cfg.SQLitePath),
		zap.Bool("seed_data", cfg.SeedData),
		zap.Duration("catalog_cache_ttl", cfg.CatalogCacheTTL),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
		zap.Float64("free_shipping_min", cfg.FreeShippingMin),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "ferreteria-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Storage ---
	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	store := sqlite.NewStore(db, logger)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelInit()
	if err := store.Init(initCtx); err != nil {
		logger.Fatal("failed to init schema", zap.Error(err))
	}
	if cfg.SeedData {
		if err := store.Seed(initCtx); err != nil {
			logger.Fatal("failed to seed data", zap.Error(err))
		}
	}

	// --- Cache ---
	catalogCache := cache.New[[]domain.Product](cfg.CatalogCacheTTL)
	metrics.RegisterCacheSize("catalog", catalogCache.Len)

	// --- Resilience & image prober ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("image-probe")
	httpClient := &http.Client{Timeout: cfg.ProbeTimeout}
	prober := client.NewImageProbeClient(httpClient, cb, resilienceCfg)

	// --- Services ---
	authSvc := service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, cfg.ResetCodeTTL, logger)
	catalogSvc := service.NewCatalogService(store, catalogCache, prober, metrics, cfg.WhatsAppNumber, logger)
	cartSvc := service.NewCartService(store, store, logger)
	orderSvc := service.NewOrderService(store, store, store, metrics, cfg.FreeShippingMin, cfg.ShippingCost, logger)
	profileSvc := service.NewProfileService(store, store, store, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Auth:    authSvc,
		Catalog: catalogSvc,
		Cart:    cartSvc,
		Orders:  orderSvc,
		Profile: profileSvc,
	}, metrics, db.Ping, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
