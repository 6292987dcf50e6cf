package services

import (
	"context"
	"fmt"
	"strings"

	"shop-backend/models"
	"shop-backend/repositories"
)

type ProductService struct {
	store repositories.ProductStore
}

func NewProductService(store repositories.ProductStore) *ProductService {
	return &ProductService{store: store}
}

func (s *ProductService) GetAll(ctx context.Context) ([]models.Product, error) {
	return s.store.GetAll(ctx)
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return s.store.GetByID(ctx, id)
}

// GetPaginated runs the query engine: resolve the filter, push
// filter/sort/skip/limit to the backend, and wrap the slice in page
// bookkeeping.
func (s *ProductService) GetPaginated(ctx context.Context, params ListParams) (*ProductPage, error) {
	limit := params.Limit
	if limit == 0 {
		limit = DefaultPageLimit
	}
	page := params.Page
	if page == 0 {
		page = 1
	}
	if limit < 1 || page < 1 {
		return nil, invalidf("limit and page must be positive integers")
	}

	q := repositories.ListQuery{
		Filter: ResolveFilter(strings.TrimSpace(params.Query)),
		Sort:   resolveSort(params.Sort),
		Skip:   (page - 1) * limit,
		Limit:  limit,
	}
	products, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return buildPage(products, total, page, limit), nil
}

func (s *ProductService) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if missing := req.MissingFields(); len(missing) > 0 {
		return nil, invalidf("missing fields: " + strings.Join(missing, ", "))
	}
	if *req.Price < 0 {
		return nil, invalidf("price must be non-negative")
	}
	if *req.Stock < 0 {
		return nil, invalidf("stock must be non-negative")
	}

	product := models.Product{
		Title:       *req.Title,
		Description: *req.Description,
		Code:        *req.Code,
		Price:       *req.Price,
		Status:      true,
		Stock:       *req.Stock,
		Category:    *req.Category,
		Thumbnails:  req.Thumbnails,
	}
	if req.Status != nil {
		product.Status = *req.Status
	}
	return s.store.Add(ctx, product)
}

// updatableFields maps the fields a partial update may touch to a type check.
// Unknown keys are dropped rather than stored, so all three backends see the
// same document shape.
var updatableFields = map[string]func(v any) bool{
	"title":       isString,
	"description": isString,
	"code":        isString,
	"category":    isString,
	"price":       isNonNegativeNumber,
	"stock":       isNonNegativeInt,
	"status":      func(v any) bool { _, ok := v.(bool); return ok },
	"thumbnails":  isStringSlice,
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isNonNegativeNumber(v any) bool {
	n, ok := v.(float64)
	return ok && n >= 0
}

func isNonNegativeInt(v any) bool {
	n, ok := v.(float64)
	return ok && n >= 0 && n == float64(int(n))
}

func isStringSlice(v any) bool {
	items, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}

// Update merges the provided fields into the stored record. An id/_id key is
// rejected outright; the identifier is immutable.
func (s *ProductService) Update(ctx context.Context, id string, fields map[string]any) (*models.Product, error) {
	if _, ok := fields["id"]; ok {
		return nil, invalidf("cannot update id field")
	}
	if _, ok := fields["_id"]; ok {
		return nil, invalidf("cannot update id field")
	}
	if len(fields) == 0 {
		return nil, invalidf("no fields to update")
	}

	sanitized := map[string]any{}
	for k, v := range fields {
		check, known := updatableFields[k]
		if !known {
			continue
		}
		if !check(v) {
			return nil, invalidf(fmt.Sprintf("invalid value for field %q", k))
		}
		sanitized[k] = v
	}
	if len(sanitized) == 0 {
		return nil, invalidf("no updatable fields provided")
	}
	return s.store.UpdateByID(ctx, id, sanitized)
}

func (s *ProductService) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteByID(ctx, id)
}

// AppendThumbnail adds one uploaded image URL to the product's thumbnail
// list.
func (s *ProductService) AppendThumbnail(ctx context.Context, id, url string) (*models.Product, error) {
	product, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	thumbnails := append(product.Thumbnails, url)
	return s.store.UpdateByID(ctx, id, map[string]any{"thumbnails": toAnySlice(thumbnails)})
}

func toAnySlice(items []string) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
