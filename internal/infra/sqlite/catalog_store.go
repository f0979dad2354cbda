package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dieguin/ferreteria-api/internal/domain"
)

const productColumns = `id, name, description, price, original_price, image, category, stock, active, on_sale, created_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.OriginalPrice,
		&p.Image, &p.Category, &p.Stock, &p.Active, &p.OnSale, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns the catalog. Storefront reads exclude inactive
// products; the admin console passes includeInactive.
func (s *Store) ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter products: %w", err)
	}
	return products, nil
}

// GetProduct fetches one product by id.
func (s *Store) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, productID)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "product", ID: productID}
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// CreateProduct inserts a catalog entry.
func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price, original_price, image, category, stock, active, on_sale, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Price, p.OriginalPrice, p.Image, p.Category, p.Stock, p.Active, p.OnSale, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// UpdateProduct rewrites a full product row (read-merge-write happens in
// the service).
func (s *Store) UpdateProduct(ctx context.Context, p *domain.Product) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products
		 SET name = ?, description = ?, price = ?, original_price = ?, image = ?,
		     category = ?, stock = ?, active = ?, on_sale = ?
		 WHERE id = ?`,
		p.Name, p.Description, p.Price, p.OriginalPrice, p.Image, p.Category, p.Stock, p.Active, p.OnSale, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &domain.ErrNotFound{Resource: "product", ID: p.ID}
	}
	return nil
}

// DeleteProduct removes a catalog entry.
func (s *Store) DeleteProduct(ctx context.Context, productID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &domain.ErrNotFound{Resource: "product", ID: productID}
	}
	return nil
}

// ListCategories returns all categories in seed order.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, icon, active FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Active); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter categories: %w", err)
	}
	return categories, nil
}
