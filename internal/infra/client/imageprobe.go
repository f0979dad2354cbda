// Package client holds outbound HTTP adapters.
package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("client")

// ImageProbeClient probes product image URLs so the admin console can spot
// broken images before customers do. Probes run concurrently, bounded by
// MaxConcurrency, each behind retry + the shared circuit breaker.
type ImageProbeClient struct {
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewImageProbeClient creates a new ImageProbeClient.
func NewImageProbeClient(httpClient *http.Client, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *ImageProbeClient {
	return &ImageProbeClient{
		httpClient: httpClient,
		cb:         cb,
		cfg:        cfg,
	}
}

// Check probes the image URL of every given product with an HTTP HEAD.
// A product with an empty image URL is reported as failed without a probe.
func (c *ImageProbeClient) Check(ctx context.Context, products []domain.Product) ([]domain.ImageCheckResult, error) {
	ctx, span := tracer.Start(ctx, "ImageProbeClient.Check")
	defer span.End()
	span.SetAttributes(attribute.Int("products.count", len(products)))

	results := make([]domain.ImageCheckResult, len(products))

	g, ctx := errgroup.WithContext(ctx)
	if c.cfg.MaxConcurrency > 0 {
		g.SetLimit(c.cfg.MaxConcurrency)
	}

	var mu sync.Mutex
	for i, p := range products {
		i, p := i, p
		g.Go(func() error {
			res := c.probe(ctx, p)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("probe images: %w", err)
	}
	return results, nil
}

func (c *ImageProbeClient) probe(ctx context.Context, p domain.Product) domain.ImageCheckResult {
	res := domain.ImageCheckResult{ProductID: p.ID, URL: p.Image}
	if p.Image == "" {
		res.Error = "no image URL"
		return res
	}

	status, err := c.head(ctx, p.Image)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Status = status
	res.OK = status >= 200 && status < 400
	if !res.OK {
		res.Error = fmt.Sprintf("image host returned status %d", status)
	}
	return res
}

// head issues the HEAD request with retry and circuit breaker.
func (c *ImageProbeClient) head(ctx context.Context, url string) (int, error) {
	result, err := c.cb.Execute(func() (any, error) {
		var status int
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			resp.Body.Close()

			status = resp.StatusCode
			if status >= 500 {
				return fmt.Errorf("image host returned status %d", status)
			}
			return nil
		})
		if innerErr != nil {
			return 0, innerErr
		}
		return status, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return 0, &domain.ErrCircuitOpen{Service: "image-probe"}
		}
		return 0, &domain.ErrExternalService{Service: "image-probe", Err: err}
	}
	return result.(int), nil
}
