package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"shop-backend/models"
	"shop-backend/repositories"
)

// fakeProductStore is an in-memory ProductStore. List returns the canned
// listProducts/listTotal and records the query it was asked for.
type fakeProductStore struct {
	products     []models.Product
	nextID       int
	listProducts []models.Product
	listTotal    int
	lastQuery    repositories.ListQuery
}

func (f *fakeProductStore) GetAll(ctx context.Context) ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeProductStore) Add(ctx context.Context, p models.Product) (*models.Product, error) {
	f.nextID++
	p.ID = fmt.Sprintf("p%d", f.nextID)
	if p.Thumbnails == nil {
		p.Thumbnails = []string{}
	}
	f.products = append(f.products, p)
	return &p, nil
}

func (f *fakeProductStore) UpdateByID(ctx context.Context, id string, fields map[string]any) (*models.Product, error) {
	p, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v, ok := fields["title"]; ok {
		p.Title = v.(string)
	}
	if v, ok := fields["price"]; ok {
		p.Price = v.(float64)
	}
	if v, ok := fields["thumbnails"]; ok {
		thumbs := []string{}
		for _, item := range v.([]any) {
			thumbs = append(thumbs, item.(string))
		}
		p.Thumbnails = thumbs
	}
	return p, nil
}

func (f *fakeProductStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProductStore) List(ctx context.Context, q repositories.ListQuery) ([]models.Product, int, error) {
	f.lastQuery = q
	return f.listProducts, f.listTotal, nil
}

func strPtr(s string) *string     { return &s }
func floatPtr(n float64) *float64 { return &n }
func intPtr(n int) *int           { return &n }
func boolPtr(b bool) *bool        { return &b }

func validCreateRequest() models.CreateProductRequest {
	return models.CreateProductRequest{
		Title:       strPtr("Keyboard"),
		Description: strPtr("Mechanical keyboard"),
		Code:        strPtr("KB-01"),
		Price:       floatPtr(49.9),
		Stock:       intPtr(12),
		Category:    strPtr("peripherals"),
	}
}

func TestProductServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults status to true", func(t *testing.T) {
		svc := NewProductService(&fakeProductStore{})
		p, err := svc.Create(ctx, validCreateRequest())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if !p.Status {
			t.Error("expected status to default to true")
		}
		if p.Thumbnails == nil || len(p.Thumbnails) != 0 {
			t.Errorf("expected empty thumbnails, got %v", p.Thumbnails)
		}
		if p.ID == "" {
			t.Error("expected store-assigned id")
		}
	})

	t.Run("keeps explicit status false", func(t *testing.T) {
		svc := NewProductService(&fakeProductStore{})
		req := validCreateRequest()
		req.Status = boolPtr(false)
		p, err := svc.Create(ctx, req)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if p.Status {
			t.Error("expected status false to survive")
		}
	})

	t.Run("lists every missing field", func(t *testing.T) {
		svc := NewProductService(&fakeProductStore{})
		req := validCreateRequest()
		req.Price = nil
		req.Category = nil
		_, err := svc.Create(ctx, req)
		if !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		for _, field := range []string{"price", "category"} {
			if !strings.Contains(err.Error(), field) {
				t.Errorf("error %q does not name %q", err, field)
			}
		}
	})

	t.Run("rejects negative price", func(t *testing.T) {
		svc := NewProductService(&fakeProductStore{})
		req := validCreateRequest()
		req.Price = floatPtr(-1)
		if _, err := svc.Create(ctx, req); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestProductServiceUpdate(t *testing.T) {
	ctx := context.Background()

	seed := func() (*ProductService, string) {
		store := &fakeProductStore{}
		svc := NewProductService(store)
		p, err := svc.Create(ctx, validCreateRequest())
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		return svc, p.ID
	}

	t.Run("rejects id field", func(t *testing.T) {
		svc, id := seed()
		_, err := svc.Update(ctx, id, map[string]any{"id": "other", "title": "x"})
		if !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, err := svc.Update(ctx, id, map[string]any{"_id": "other"}); !IsValidation(err) {
			t.Fatalf("expected validation error for _id, got %v", err)
		}
	})

	t.Run("rejects empty body", func(t *testing.T) {
		svc, id := seed()
		if _, err := svc.Update(ctx, id, map[string]any{}); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("drops unknown keys and rejects all-unknown body", func(t *testing.T) {
		svc, id := seed()
		if _, err := svc.Update(ctx, id, map[string]any{"owner": "me"}); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		p, err := svc.Update(ctx, id, map[string]any{"owner": "me", "title": "Mouse"})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if p.Title != "Mouse" {
			t.Errorf("title = %q, want Mouse", p.Title)
		}
	})

	t.Run("rejects wrong types", func(t *testing.T) {
		svc, id := seed()
		cases := map[string]any{
			"price":  "cheap",
			"stock":  2.5,
			"status": "true",
			"title":  7.0,
		}
		for field, value := range cases {
			if _, err := svc.Update(ctx, id, map[string]any{field: value}); !IsValidation(err) {
				t.Errorf("field %q value %v: expected validation error, got %v", field, value, err)
			}
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		svc, _ := seed()
		_, err := svc.Update(ctx, "missing", map[string]any{"title": "x"})
		if !errors.Is(err, repositories.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestProductServiceAppendThumbnail(t *testing.T) {
	ctx := context.Background()
	store := &fakeProductStore{}
	svc := NewProductService(store)
	p, err := svc.Create(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	updated, err := svc.AppendThumbnail(ctx, p.ID, "/uploads/products/a.png")
	if err != nil {
		t.Fatalf("AppendThumbnail: %v", err)
	}
	if len(updated.Thumbnails) != 1 || updated.Thumbnails[0] != "/uploads/products/a.png" {
		t.Errorf("thumbnails = %v", updated.Thumbnails)
	}

	if _, err := svc.AppendThumbnail(ctx, "missing", "/x.png"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
