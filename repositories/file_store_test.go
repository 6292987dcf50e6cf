package repositories

import (
	"context"
	"errors"
	"testing"

	"shop-backend/models"
)

func seedProduct(title, category string, price float64, status bool) models.Product {
	return models.Product{
		Title:       title,
		Description: title + " description",
		Code:        "C-" + title,
		Price:       price,
		Status:      status,
		Stock:       5,
		Category:    category,
	}
}

func newTestProductStore(t *testing.T) *FileProductStore {
	t.Helper()
	store, err := NewFileProductStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileProductStore: %v", err)
	}
	return store
}

func TestFileProductStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestProductStore(t)

	added, err := store.Add(ctx, seedProduct("Lamp", "home", 19.5, true))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.ID == "" {
		t.Fatal("expected a generated id")
	}
	if added.Thumbnails == nil {
		t.Error("nil thumbnails should be normalized to empty")
	}

	got, err := store.GetByID(ctx, added.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Lamp" || got.Price != 19.5 {
		t.Errorf("got %+v", got)
	}

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	t.Run("update merges only the given fields", func(t *testing.T) {
		updated, err := store.UpdateByID(ctx, added.ID, map[string]any{"price": 25.0, "status": false})
		if err != nil {
			t.Fatalf("UpdateByID: %v", err)
		}
		if updated.Price != 25.0 || updated.Status {
			t.Errorf("got %+v", updated)
		}
		if updated.Title != "Lamp" {
			t.Errorf("untouched field changed: %+v", updated)
		}
		if updated.ID != added.ID {
			t.Errorf("id changed from %q to %q", added.ID, updated.ID)
		}
	})

	t.Run("update refuses to touch the id", func(t *testing.T) {
		for _, key := range []string{"id", "_id"} {
			_, err := store.UpdateByID(ctx, added.ID, map[string]any{key: "other"})
			if !errors.Is(err, ErrImmutableID) {
				t.Errorf("key %q: expected ErrImmutableID, got %v", key, err)
			}
		}
		got, err := store.GetByID(ctx, added.ID)
		if err != nil {
			t.Fatalf("GetByID after rejected update: %v", err)
		}
		if got.ID != added.ID {
			t.Error("rejected update still changed the record")
		}
	})

	t.Run("update of unknown id is not found", func(t *testing.T) {
		if _, err := store.UpdateByID(ctx, "missing", map[string]any{"price": 1.0}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete reports whether anything was removed", func(t *testing.T) {
		deleted, err := store.DeleteByID(ctx, added.ID)
		if err != nil {
			t.Fatalf("DeleteByID: %v", err)
		}
		if !deleted {
			t.Error("expected deleted = true")
		}
		deleted, err = store.DeleteByID(ctx, added.ID)
		if err != nil {
			t.Fatalf("second DeleteByID: %v", err)
		}
		if deleted {
			t.Error("expected deleted = false on second delete")
		}
	})
}

func TestFileProductStoreList(t *testing.T) {
	ctx := context.Background()
	store := newTestProductStore(t)

	seeds := []models.Product{
		seedProduct("Mug", "Kitchen", 8, true),
		seedProduct("Pan", "kitchen", 30, true),
		seedProduct("Lamp", "home", 20, false),
		seedProduct("Rug", "home", 45, true),
		seedProduct("Book", "books", 12, true),
	}
	for _, p := range seeds {
		if _, err := store.Add(ctx, p); err != nil {
			t.Fatalf("seed %s: %v", p.Title, err)
		}
	}

	t.Run("no filter returns everything", func(t *testing.T) {
		products, total, err := store.List(ctx, ListQuery{Limit: 10})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 5 || len(products) != 5 {
			t.Errorf("total/len = %d/%d, want 5/5", total, len(products))
		}
	})

	t.Run("category filter is case-insensitive", func(t *testing.T) {
		products, total, err := store.List(ctx, ListQuery{
			Filter: Filter{Kind: FilterCategory, Category: "KITCHEN"},
			Limit:  10,
		})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		for _, p := range products {
			if p.Category != "Kitchen" && p.Category != "kitchen" {
				t.Errorf("unexpected match %+v", p)
			}
		}
	})

	t.Run("status filter", func(t *testing.T) {
		_, total, err := store.List(ctx, ListQuery{
			Filter: Filter{Kind: FilterStatus, Status: false},
			Limit:  10,
		})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 1 {
			t.Errorf("total = %d, want 1", total)
		}
	})

	t.Run("structured filter matches field equality", func(t *testing.T) {
		products, total, err := store.List(ctx, ListQuery{
			Filter: Filter{Kind: FilterStructured, Fields: map[string]any{"category": "home", "status": true}},
			Limit:  10,
		})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 1 || products[0].Title != "Rug" {
			t.Errorf("total = %d, products = %+v", total, products)
		}
	})

	t.Run("structured filter compares numbers across encodings", func(t *testing.T) {
		// a decoded JSON object carries prices as float64
		_, total, err := store.List(ctx, ListQuery{
			Filter: Filter{Kind: FilterStructured, Fields: map[string]any{"price": float64(30)}},
			Limit:  10,
		})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 1 {
			t.Errorf("total = %d, want 1", total)
		}
	})

	t.Run("price sort is applied before slicing", func(t *testing.T) {
		products, _, err := store.List(ctx, ListQuery{Sort: SortPriceAsc, Limit: 2})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(products) != 2 || products[0].Title != "Mug" || products[1].Title != "Book" {
			t.Errorf("products = %+v", products)
		}
		products, _, err = store.List(ctx, ListQuery{Sort: SortPriceDesc, Limit: 1})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(products) != 1 || products[0].Title != "Rug" {
			t.Errorf("products = %+v", products)
		}
	})

	t.Run("skip past the end yields an empty slice with the real total", func(t *testing.T) {
		products, total, err := store.List(ctx, ListQuery{Skip: 10, Limit: 10})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 5 || len(products) != 0 {
			t.Errorf("total/len = %d/%d, want 5/0", total, len(products))
		}
	})
}

func TestFileCartStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileCartStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCartStore: %v", err)
	}

	cart, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cart.ID == "" || cart.Products == nil {
		t.Fatalf("got %+v", cart)
	}

	cart.Products = append(cart.Products, models.CartLine{Product: "p1", Quantity: 2})
	if err := store.Save(ctx, cart); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByID(ctx, cart.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Products) != 1 || got.Products[0].Quantity != 2 {
		t.Errorf("products = %+v", got.Products)
	}

	if err := store.Save(ctx, &models.Cart{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileUserStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileUserStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileUserStore: %v", err)
	}

	user, err := store.Create(ctx, models.User{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Age:       30,
		Password:  "hashed",
		Role:      "user",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected a generated id")
	}

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := store.Create(ctx, models.User{Email: "ada@example.com"})
		if !errors.Is(err, ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}
	})

	t.Run("lookups round-trip the password hash", func(t *testing.T) {
		byEmail, err := store.FindByEmail(ctx, "ada@example.com")
		if err != nil {
			t.Fatalf("FindByEmail: %v", err)
		}
		if byEmail.Password != "hashed" {
			t.Errorf("password = %q, want the stored hash", byEmail.Password)
		}
		byID, err := store.FindByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if byID.Email != "ada@example.com" {
			t.Errorf("email = %q", byID.Email)
		}
	})

	t.Run("set cart attaches the id", func(t *testing.T) {
		if err := store.SetCart(ctx, user.ID, "cart-1"); err != nil {
			t.Fatalf("SetCart: %v", err)
		}
		got, err := store.FindByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if got.Cart != "cart-1" {
			t.Errorf("cart = %q, want cart-1", got.Cart)
		}
		if err := store.SetCart(ctx, "missing", "cart-1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
