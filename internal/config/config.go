package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Storage
	SQLitePath string
	SeedData   bool

	// JWT / Auth
	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration
	ResetCodeTTL  time.Duration

	// Checkout
	FreeShippingMin float64
	ShippingCost    float64

	// Catalog cache
	CatalogCacheTTL time.Duration

	// Image prober
	ProbeTimeout     time.Duration
	MaxRetries       int
	InitialBackoff   time.Duration
	MaxConcurrency   int

	// WhatsApp contact number for product inquiry links
	WhatsAppNumber string

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SQLitePath: getEnv("SQLITE_PATH", "ferreteria.db"),
		SeedData:   getEnv("SEED_DATA", "true") == "true",

		JWTSecret:     getEnv("JWT_SECRET", "ferreteria-default-dev-secret-change-me"),
		JWTAccessTTL:  getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		JWTRefreshTTL: getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		ResetCodeTTL:  getEnvDuration("RESET_CODE_TTL", 10*time.Minute),

		FreeShippingMin: getEnvFloat("FREE_SHIPPING_MIN", 1000),
		ShippingCost:    getEnvFloat("SHIPPING_COST", 100),

		CatalogCacheTTL: getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),

		ProbeTimeout:   getEnvDuration("PROBE_TIMEOUT", 5*time.Second),
		MaxRetries:     getEnvInt("MAX_RETRIES", 2),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 8),

		WhatsAppNumber: getEnv("WHATSAPP_NUMBER", "50499999999"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
