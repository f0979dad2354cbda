package service

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/infra/observability"
	"github.com/dieguin/ferreteria-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var catalogTracer = otel.Tracer("service/catalog")

const activeCatalogKey = "catalog:active"

// CatalogService serves the product catalog: listing, search, admin CRUD
// and the superadmin sale workflow. Active-catalog reads go through a TTL
// cache; every mutation invalidates it.
type CatalogService struct {
	store          port.CatalogStore
	cache          port.Cache[[]domain.Product]
	prober         port.ImageProber
	metrics        *observability.Metrics
	whatsAppNumber string
	logger         *zap.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store port.CatalogStore, cache port.Cache[[]domain.Product], prober port.ImageProber, metrics *observability.Metrics, whatsAppNumber string, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		store:          store,
		cache:          cache,
		prober:         prober,
		metrics:        metrics,
		whatsAppNumber: whatsAppNumber,
		logger:         logger,
	}
}

// ============================================================
// Public catalog
// ============================================================

// Search returns the active catalog filtered and sorted by query.
func (s *CatalogService) Search(ctx context.Context, query domain.ProductQuery) ([]domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("search", query.Search),
		attribute.String("category", query.Category),
		attribute.String("sort_by", query.SortBy),
	)

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("catalog_search", time.Since(start)) }()

	products, err := s.activeProducts(ctx)
	if err != nil {
		return nil, err
	}
	return FilterAndSort(products, query), nil
}

// GetProduct returns a single product. Inactive products resolve too, so a
// direct link to a just-deactivated product still renders.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.GetProduct")
	defer span.End()

	return s.store.GetProduct(ctx, id)
}

// ListCategories returns all categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.ListCategories")
	defer span.End()

	return s.store.ListCategories(ctx)
}

// WhatsAppLink builds a wa.me deep link preloaded with a product inquiry.
func (s *CatalogService) WhatsAppLink(ctx context.Context, productID string) (string, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.WhatsAppLink")
	defer span.End()

	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return "", err
	}

	message := fmt.Sprintf("Hola, me interesa el producto: %s (L %.2f)", product.Name, product.Price)
	return fmt.Sprintf("https://wa.me/%s?text=%s", s.whatsAppNumber, url.QueryEscape(message)), nil
}

// ============================================================
// Admin catalog
// ============================================================

// ListAll returns the full catalog including inactive products.
func (s *CatalogService) ListAll(ctx context.Context) ([]domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.ListAll")
	defer span.End()

	return s.store.ListProducts(ctx, true)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req *domain.ProductCreateRequest) (*domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if err := validateProductFields(req.Name, req.Price, req.Stock); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Price:       round2(req.Price),
		Category:    req.Category,
		Image:       req.Image,
		Stock:       req.Stock,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	if req.OnSale && req.OriginalPrice != nil {
		original := round2(*req.OriginalPrice)
		product.OnSale = true
		product.OriginalPrice = &original
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate()
	s.logger.Info("product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct merges non-nil fields of req into the stored product.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, req *domain.ProductUpdateRequest) (*domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = round2(*req.Price)
		// A manual price edit supersedes any running sale.
		product.OnSale = false
		product.OriginalPrice = nil
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	if err := validateProductFields(product.Name, product.Price, product.Stock); err != nil {
		return nil, err
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate()
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.DeleteProduct")
	defer span.End()

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

// ToggleActive flips a product's visibility in the public catalog.
func (s *CatalogService) ToggleActive(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.ToggleActive")
	defer span.End()

	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Active = !product.Active
	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate()
	return product, nil
}

// CheckImages probes every product image URL and reports which respond.
func (s *CatalogService) CheckImages(ctx context.Context) ([]domain.ImageCheckResult, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.CheckImages")
	defer span.End()

	products, err := s.store.ListProducts(ctx, true)
	if err != nil {
		return nil, err
	}
	return s.prober.Check(ctx, products)
}

// ============================================================
// Sales (superadmin)
// ============================================================

// ApplySale discounts a product by a percentage, clamped to [1,90].
// The pre-sale price is kept so the sale can be undone.
func (s *CatalogService) ApplySale(ctx context.Context, id string, req *domain.SaleRequest) (*domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.ApplySale")
	defer span.End()
	span.SetAttributes(attribute.Float64("percentage", req.Percentage))

	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.OnSale {
		return nil, &domain.ErrValidation{Field: "productId", Message: "El producto ya tiene una oferta activa"}
	}

	pct := clampPercentage(req.Percentage)
	discount := round2(product.Price * pct / 100)

	original := product.Price
	product.OriginalPrice = &original
	product.Price = round2(product.Price - discount)
	product.OnSale = true

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate()
	s.logger.Info("sale applied",
		zap.String("product_id", id),
		zap.Float64("percentage", pct),
		zap.Float64("new_price", product.Price),
	)
	return product, nil
}

// RemoveSale restores the pre-sale price.
func (s *CatalogService) RemoveSale(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.RemoveSale")
	defer span.End()

	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.OnSale || product.OriginalPrice == nil {
		return nil, &domain.ErrValidation{Field: "productId", Message: "El producto no tiene una oferta activa"}
	}

	product.Price = *product.OriginalPrice
	product.OriginalPrice = nil
	product.OnSale = false

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate()
	s.logger.Info("sale removed", zap.String("product_id", id))
	return product, nil
}

// ============================================================
// Filtering and sorting
// ============================================================

// FilterAndSort applies the search query to a product slice in memory.
// Text search matches case-insensitive substrings of name, description or
// category. Sorting is stable so equal keys keep catalog order.
func FilterAndSort(products []domain.Product, query domain.ProductQuery) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	term := strings.ToLower(strings.TrimSpace(query.Search))

	for _, p := range products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) &&
			!strings.Contains(strings.ToLower(p.Category), term) {
			continue
		}
		if query.Category != "" && p.Category != query.Category {
			continue
		}
		if query.MinPrice > 0 && p.Price < query.MinPrice {
			continue
		}
		if query.MaxPrice > 0 && p.Price > query.MaxPrice {
			continue
		}
		out = append(out, p)
	}

	switch query.SortBy {
	case domain.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case domain.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	default: // SortNameAsc
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	}
	return out
}

func (s *CatalogService) activeProducts(ctx context.Context) ([]domain.Product, error) {
	if cached, ok := s.cache.Get(activeCatalogKey); ok {
		s.metrics.IncrCacheHit("catalog")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("catalog")

	products, err := s.store.ListProducts(ctx, false)
	if err != nil {
		s.metrics.IncrStoreError("products")
		return nil, err
	}
	s.cache.Set(activeCatalogKey, products)
	return products, nil
}

func (s *CatalogService) invalidate() {
	s.cache.Delete(activeCatalogKey)
}

func validateProductFields(name string, price float64, stock int) error {
	if strings.TrimSpace(name) == "" {
		return &domain.ErrValidation{Field: "name", Message: "El nombre es obligatorio"}
	}
	if price <= 0 {
		return &domain.ErrValidation{Field: "price", Message: "El precio debe ser mayor que cero"}
	}
	if stock < 0 {
		return &domain.ErrValidation{Field: "stock", Message: "El stock no puede ser negativo"}
	}
	return nil
}

func clampPercentage(p float64) float64 {
	return math.Min(90, math.Max(1, p))
}

// round2 rounds to two decimals the way storefront prices are displayed.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
