package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/infra/sqlite"

	"go.uber.org/zap"
)

// newTestStore opens an in-memory database with the full schema applied.
func newTestStore(t *testing.T) (*sqlite.Store, *sql.DB) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := sqlite.NewStore(db, zap.NewNop())
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return store, db
}

func mustCreateProduct(t *testing.T, store *sqlite.Store, p domain.Product) domain.Product {
	t.Helper()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if err := store.CreateProduct(context.Background(), &p); err != nil {
		t.Fatalf("create product %s: %v", p.ID, err)
	}
	return p
}
