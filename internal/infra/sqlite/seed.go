package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func f64(v float64) *float64 { return &v }

var seedCategories = []domain.Category{
	{ID: "1", Name: "Herramientas", Icon: "🔨", Active: true},
	{ID: "2", Name: "Pinturas", Icon: "🎨", Active: true},
	{ID: "3", Name: "Materiales Eléctricos", Icon: "⚡", Active: true},
	{ID: "4", Name: "Plomería", Icon: "🔧", Active: true},
	{ID: "5", Name: "Construcción", Icon: "🏗️", Active: true},
	{ID: "6", Name: "Jardinería", Icon: "🌱", Active: true},
}

var seedProducts = []domain.Product{
	{
		ID:            "1",
		Name:          "Martillo de Carpintero 16oz",
		Description:   "Martillo profesional con mango de madera, ideal para trabajos de carpintería y construcción.",
		Price:         450,
		OriginalPrice: f64(520),
		Image:         "https://images.unsplash.com/photo-1504148455328-c376907d081c?w=400&h=400&fit=crop",
		Category:      "Herramientas",
		Stock:         25,
		Active:        true,
		OnSale:        true,
	},
	{
		ID:          "2",
		Name:        "Taladro Inalámbrico 18V",
		Description: "Taladro inalámbrico profesional con batería de litio y cargador incluido.",
		Price:       2850,
		Image:       "https://images.unsplash.com/photo-1572981779307-38b8cabb2407?w=400&h=400&fit=crop",
		Category:    "Herramientas",
		Stock:       8,
		Active:      true,
	},
	{
		ID:          "3",
		Name:        "Pintura Látex Blanca 1 Galón",
		Description: "Pintura látex de alta calidad, perfecta para interiores y exteriores.",
		Price:       680,
		Image:       "https://images.unsplash.com/photo-1562259949-e8e7689d7828?w=400&h=400&fit=crop",
		Category:    "Pinturas",
		Stock:       15,
		Active:      true,
	},
	{
		ID:          "4",
		Name:        "Cable Eléctrico 12 AWG",
		Description: "Cable eléctrico de cobre calibre 12, ideal para instalaciones residenciales.",
		Price:       25,
		Image:       "https://images.unsplash.com/photo-1621905251189-08b45d6a269e?w=400&h=400&fit=crop",
		Category:    "Materiales Eléctricos",
		Stock:       100,
		Active:      true,
	},
	{
		ID:          "5",
		Name:        "Tubería PVC 4 pulgadas",
		Description: "Tubería de PVC de 4 pulgadas para sistemas de drenaje y plomería.",
		Price:       180,
		Image:       "https://images.unsplash.com/photo-1581833971358-2c8b550f87b3?w=400&h=400&fit=crop",
		Category:    "Plomería",
		Stock:       50,
		Active:      true,
	},
	{
		ID:          "6",
		Name:        "Cemento Portland 50kg",
		Description: "Cemento Portland de alta resistencia para construcción.",
		Price:       320,
		Image:       "https://images.unsplash.com/photo-1504307651254-35680f356dfd?w=400&h=400&fit=crop",
		Category:    "Construcción",
		Stock:       30,
		Active:      true,
	},
	{
		ID:          "7",
		Name:        "Pala de Jardín",
		Description: "Pala de acero con mango de madera para trabajos de jardinería.",
		Price:       180,
		Image:       "https://images.unsplash.com/photo-1416879595882-3373a0480b5b?w=400&h=400&fit=crop",
		Category:    "Jardinería",
		Stock:       20,
		Active:      true,
	},
	{
		ID:            "8",
		Name:          `Sierra Circular 7 1/4"`,
		Description:   "Sierra circular eléctrica de alta potencia para cortes precisos en madera.",
		Price:         1560,
		OriginalPrice: f64(1850),
		Image:         "https://images.unsplash.com/photo-1581833971358-2c8b550f87b3?w=400&h=400&fit=crop",
		Category:      "Herramientas",
		Stock:         6,
		Active:        true,
		OnSale:        true,
	},
}

type seedUser struct {
	user     domain.User
	password string
}

var seedUsers = []seedUser{
	{
		user: domain.User{
			ID:    "1",
			Email: "admin@ferreteria.com",
			Name:  "Administrador",
			Role:  domain.RoleAdmin,
		},
		password: "admin123",
	},
	{
		user: domain.User{
			ID:      "2",
			Email:   "cliente@email.com",
			Name:    "Juan Pérez",
			Role:    domain.RoleCustomer,
			Phone:   "+504 9999-9999",
			Address: "Comayagua, Honduras",
		},
		password: "cliente123",
	},
	{
		user: domain.User{
			ID:      "3",
			Email:   "gerencia@ferreteria.com",
			Name:    "Diego Martínez",
			Role:    domain.RoleSuperadmin,
			Phone:   "+504 2772-0000",
			Address: "Comayagua, Barrio Arriba, media cuadra arriba del parque central, Comayagua, Honduras C.A.",
		},
		password: "admin123456",
	},
}

// Seed loads the demonstration catalog and demo accounts on an empty
// database. Non-empty collections are left alone, so it is safe to call
// on every startup.
func (s *Store) Seed(ctx context.Context) error {
	now := time.Now().UTC()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n == 0 {
		for _, c := range seedCategories {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO categories (id, name, icon, active) VALUES (?, ?, ?, ?)`,
				c.ID, c.Name, c.Icon, c.Active,
			); err != nil {
				return fmt.Errorf("seed category %s: %w", c.ID, err)
			}
		}
		s.logger.Info("seeded categories", zap.Int("count", len(seedCategories)))
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n == 0 {
		for _, p := range seedProducts {
			p.CreatedAt = now
			if err := s.CreateProduct(ctx, &p); err != nil {
				return fmt.Errorf("seed product %s: %w", p.ID, err)
			}
		}
		s.logger.Info("seeded products", zap.Int("count", len(seedProducts)))
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n == 0 {
		for _, su := range seedUsers {
			hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash seed password: %w", err)
			}
			su.user.CreatedAt = now
			if err := s.CreateUser(ctx, &su.user, string(hash), nil); err != nil {
				return fmt.Errorf("seed user %s: %w", su.user.Email, err)
			}
		}
		s.logger.Info("seeded demo users", zap.Int("count", len(seedUsers)))
	}

	return nil
}
