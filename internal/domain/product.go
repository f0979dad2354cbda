package domain

import "time"

// Product is a catalog entry. OriginalPrice is only set while the product
// is on sale; RemoveSale restores Price from it and clears it again.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Image         string    `json:"image"`
	Category      string    `json:"category"`
	Stock         int       `json:"stock"`
	Active        bool      `json:"active"`
	OnSale        bool      `json:"onSale"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Category is a static-seeded catalog grouping.
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
}

// Sort orders accepted by the product search endpoint.
const (
	SortNameAsc   = "name"
	SortPriceAsc  = "price-low"
	SortPriceDesc = "price-high"
)

// ProductQuery is the search/filter/sort input for the catalog.
// Zero values mean "no filter"; MaxPrice <= 0 disables the upper bound.
type ProductQuery struct {
	Search   string
	Category string
	MinPrice float64
	MaxPrice float64
	SortBy   string
}

type ProductCreateRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Image         string   `json:"image"`
	Category      string   `json:"category"`
	Stock         int      `json:"stock"`
	Active        *bool    `json:"active,omitempty"`
	OnSale        bool     `json:"onSale,omitempty"`
}

// ProductUpdateRequest merges non-nil fields into an existing product.
type ProductUpdateRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

type SaleRequest struct {
	Percentage float64 `json:"percentage"`
}

// ImageCheckResult reports whether one product image URL answered a probe.
type ImageCheckResult struct {
	ProductID string `json:"productId"`
	URL       string `json:"url"`
	OK        bool   `json:"ok"`
	Status    int    `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}
