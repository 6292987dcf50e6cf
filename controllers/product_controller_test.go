package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"shop-backend/models"
	"shop-backend/realtime"
	"shop-backend/repositories"
	"shop-backend/services"
)

type stubProductStore struct {
	products []models.Product
}

func (s *stubProductStore) GetAll(ctx context.Context) ([]models.Product, error) {
	return s.products, nil
}

func (s *stubProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return nil, repositories.ErrNotFound
}

func (s *stubProductStore) Add(ctx context.Context, p models.Product) (*models.Product, error) {
	return &p, nil
}

func (s *stubProductStore) UpdateByID(ctx context.Context, id string, fields map[string]any) (*models.Product, error) {
	return nil, repositories.ErrNotFound
}

func (s *stubProductStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	return false, nil
}

func (s *stubProductStore) List(ctx context.Context, q repositories.ListQuery) ([]models.Product, int, error) {
	return s.products, len(s.products), nil
}

func newProductsRouter(store repositories.ProductStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewProductController(services.NewProductService(store), realtime.NewHub())
	router := gin.New()
	router.GET("/api/products", ctrl.GetProducts)
	return router
}

func TestGetProductsParamValidation(t *testing.T) {
	router := newProductsRouter(&stubProductStore{})

	badQueries := []string{
		"limit=0",
		"page=0",
		"limit=-3",
		"page=-1",
		"limit=ten",
		"page=2.5",
	}
	for _, q := range badQueries {
		t.Run(q, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/products?"+q, nil)
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var resp models.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if resp.Status != "error" || resp.Error == "" {
				t.Errorf("body = %+v, want an error envelope", resp)
			}
		})
	}
}

func TestGetProductsEnvelope(t *testing.T) {
	store := &stubProductStore{products: []models.Product{
		{ID: "p1", Title: "Lamp", Price: 20, Status: true, Category: "home", Thumbnails: []string{}},
	}}
	router := newProductsRouter(store)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp models.PaginatedProducts
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Status != "success" || len(resp.Payload) != 1 {
		t.Errorf("got %+v", resp)
	}
	if resp.TotalPages != 1 || resp.Page != 1 {
		t.Errorf("totalPages/page = %d/%d, want 1/1", resp.TotalPages, resp.Page)
	}
	if resp.HasPrevPage || resp.HasNextPage || resp.PrevLink != nil || resp.NextLink != nil {
		t.Errorf("single page should have no neighbours: %+v", resp)
	}
}
