package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dieguin/ferreteria-api/internal/domain"
	"github.com/dieguin/ferreteria-api/internal/infra/sqlite"

	"go.uber.org/zap"
)

func newStore(t *testing.T) (*sqlite.Store, *sql.DB) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := sqlite.NewStore(db, zap.NewNop())
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return store, db
}

func createUser(t *testing.T, store *sqlite.Store, id, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:        id,
		Email:     email,
		Name:      "Juan Pérez",
		Role:      domain.RoleCustomer,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.CreateUser(context.Background(), user, "not-a-real-hash", nil); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestSeed_Idempotent(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	if err := store.Seed(ctx); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := store.Seed(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	counts := map[string]int{"categories": 6, "products": 8, "users": 3}
	for table, want := range counts {
		var got int
		if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&got); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if got != want {
			t.Errorf("%s: expected %d rows after double seed, got %d", table, want, got)
		}
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store, _ := newStore(t)

	createUser(t, store, "u1", "juan@email.com")

	dup := &domain.User{ID: "u2", Email: "juan@email.com", Name: "Otro", Role: domain.RoleCustomer, CreatedAt: time.Now().UTC()}
	err := store.CreateUser(context.Background(), dup, "hash", nil)
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestDeleteUser_LeavesProfileRows(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	user := createUser(t, store, "u1", "juan@email.com")
	notif := &domain.Notification{
		ID: "n1", UserID: user.ID, Title: "Hola", Message: "mensaje",
		Date: time.Now().UTC(), Type: domain.NotifSystem,
	}
	if err := store.InsertNotification(ctx, notif); err != nil {
		t.Fatalf("insert notification: %v", err)
	}

	if err := store.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := store.GetUserByID(ctx, user.ID); err == nil {
		t.Fatal("expected user row gone")
	}
	notifs, err := store.ListNotifications(ctx, user.ID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifs) != 1 {
		t.Errorf("expected notification to survive account deletion, got %d rows", len(notifs))
	}
}

func TestSetDefaultPaymentMethod_SingleDefault(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	user := createUser(t, store, "u1", "juan@email.com")
	for _, m := range []domain.PaymentMethod{
		{ID: "m1", UserID: user.ID, Type: domain.PaymentCard, Name: "Visa", IsDefault: true},
		{ID: "m2", UserID: user.ID, Type: domain.PaymentBank, Name: "BAC", IsDefault: false},
	} {
		if err := store.InsertPaymentMethod(ctx, &m); err != nil {
			t.Fatalf("insert payment method: %v", err)
		}
	}

	if err := store.SetDefaultPaymentMethod(ctx, user.ID, "m2"); err != nil {
		t.Fatalf("set default: %v", err)
	}

	methods, err := store.ListPaymentMethods(ctx, user.ID)
	if err != nil {
		t.Fatalf("list payment methods: %v", err)
	}
	defaults := 0
	for _, m := range methods {
		if m.IsDefault {
			defaults++
			if m.ID != "m2" {
				t.Errorf("expected m2 as default, got %s", m.ID)
			}
		}
	}
	if defaults != 1 {
		t.Errorf("expected exactly one default, got %d", defaults)
	}
}

func TestGetOrder_OwnItemsOnly(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	user := createUser(t, store, "u1", "juan@email.com")
	orders := []domain.Order{
		{ID: "o1", Items: []domain.OrderItem{{ProductID: "p1", Name: "Martillo", Price: 100, Quantity: 1}}},
		{ID: "o2", Items: []domain.OrderItem{
			{ProductID: "p2", Name: "Taladro", Price: 2850, Quantity: 1},
			{ProductID: "p3", Name: "Pala", Price: 180, Quantity: 2},
		}},
	}
	for _, o := range orders {
		o.UserID = user.ID
		o.Status = domain.OrderPending
		o.Date = time.Now().UTC()
		if err := store.CreateOrder(ctx, &o, nil, ""); err != nil {
			t.Fatalf("create order %s: %v", o.ID, err)
		}
	}

	got, err := store.GetOrder(ctx, "o1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].ProductID != "p1" {
		t.Fatalf("expected only o1's line item, got %+v", got.Items)
	}

	got, err = store.GetOrder(ctx, "o2")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected both o2 line items, got %d", len(got.Items))
	}
}

func TestListOrders_NewestFirst(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	user := createUser(t, store, "u1", "juan@email.com")
	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"o1", "o2", "o3"} {
		order := &domain.Order{
			ID:     id,
			UserID: user.ID,
			Items:  []domain.OrderItem{{ProductID: "p1", Name: "Martillo", Price: 100, Quantity: 1}},
			Subtotal: 100, Shipping: 100, Total: 200,
			Status: domain.OrderPending,
			Date:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.CreateOrder(ctx, order, nil, ""); err != nil {
			t.Fatalf("create order %s: %v", id, err)
		}
	}

	orders, err := store.ListOrdersByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	if orders[0].ID != "o3" || orders[2].ID != "o1" {
		t.Errorf("expected newest first, got %s, %s, %s", orders[0].ID, orders[1].ID, orders[2].ID)
	}
}
