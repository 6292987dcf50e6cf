package services

import (
	"encoding/json"
	"math"

	"shop-backend/models"
	"shop-backend/repositories"
)

const DefaultPageLimit = 10

// ListParams are the loose request parameters of GET /api/products. Zero
// Limit/Page mean "absent" and take the defaults; explicit values below 1 are
// a validation error, not clamped.
type ListParams struct {
	Limit int
	Page  int
	Sort  string
	Query string
}

// ProductPage is the deterministic paged result: the slice
// [skip, skip+limit) of the filtered set plus the page bookkeeping. A page
// past the end is an empty payload with HasNextPage false, not an error.
type ProductPage struct {
	Products   []models.Product
	Total      int
	Page       int
	Limit      int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   *int
	NextPage   *int
}

// ResolveFilter applies the precedence rule for the `query` parameter: a JSON
// object is a structured field filter, the literals "true"/"false" filter by
// status, anything else matches category case-insensitively.
func ResolveFilter(query string) repositories.Filter {
	if query == "" {
		return repositories.Filter{Kind: repositories.FilterAll}
	}
	var parsed any
	if err := json.Unmarshal([]byte(query), &parsed); err == nil {
		if fields, ok := parsed.(map[string]any); ok {
			return repositories.Filter{Kind: repositories.FilterStructured, Fields: fields}
		}
	}
	if query == "true" || query == "false" {
		return repositories.Filter{Kind: repositories.FilterStatus, Status: query == "true"}
	}
	return repositories.Filter{Kind: repositories.FilterCategory, Category: query}
}

func resolveSort(sort string) repositories.SortOrder {
	switch sort {
	case "asc":
		return repositories.SortPriceAsc
	case "desc":
		return repositories.SortPriceDesc
	default:
		return repositories.SortNone
	}
}

func buildPage(products []models.Product, total, page, limit int) *ProductPage {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	result := &ProductPage{
		Products:   products,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
	if result.HasPrev {
		prev := page - 1
		result.PrevPage = &prev
	}
	if result.HasNext {
		next := page + 1
		result.NextPage = &next
	}
	return result
}
