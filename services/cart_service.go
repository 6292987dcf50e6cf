package services

import (
	"context"

	"shop-backend/models"
	"shop-backend/repositories"
)

// CartService holds the line-item merge rules. Every mutation is a
// get-modify-save cycle against the store; whether two concurrent mutations
// of the same cart interleave safely is the backend's business (the file
// store serializes in-process, the document backends replace last-write-wins).
type CartService struct {
	store repositories.CartStore
}

func NewCartService(store repositories.CartStore) *CartService {
	return &CartService{store: store}
}

func (s *CartService) Create(ctx context.Context) (*models.Cart, error) {
	return s.store.Create(ctx)
}

func (s *CartService) Get(ctx context.Context, id string) (*models.Cart, error) {
	return s.store.GetByID(ctx, id)
}

// AddProduct merges qty into an existing line for the product or appends a
// new one. It does not check that the product exists; the route layer does
// that before calling.
func (s *CartService) AddProduct(ctx context.Context, cartID, productID string, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, invalidf("quantity must be a positive integer")
	}
	cart, err := s.store.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if i := cart.LineIndex(productID); i >= 0 {
		cart.Products[i].Quantity += qty
	} else {
		cart.Products = append(cart.Products, models.CartLine{Product: productID, Quantity: qty})
	}
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveProduct drops the product's line. Removing a product that is not in
// the cart succeeds without changing anything.
func (s *CartService) RemoveProduct(ctx context.Context, cartID, productID string) (*models.Cart, error) {
	cart, err := s.store.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	i := cart.LineIndex(productID)
	if i < 0 {
		return cart, nil
	}
	cart.Products = append(cart.Products[:i], cart.Products[i+1:]...)
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity overwrites (not increments) the line's quantity. Unlike
// RemoveProduct, a missing line is not-found here.
func (s *CartService) UpdateQuantity(ctx context.Context, cartID, productID string, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, invalidf("quantity must be a positive integer")
	}
	cart, err := s.store.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	i := cart.LineIndex(productID)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	cart.Products[i].Quantity = qty
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Replace swaps the whole line-item list. Duplicate product references in the
// input are collapsed by summing their quantities, keeping the one-line-per-
// product invariant that AddProduct maintains.
func (s *CartService) Replace(ctx context.Context, cartID string, lines []models.CartLine) (*models.Cart, error) {
	deduped := []models.CartLine{}
	index := map[string]int{}
	for _, line := range lines {
		if line.Product == "" {
			return nil, invalidf("every line needs a product id")
		}
		if line.Quantity < 1 {
			return nil, invalidf("quantity must be a positive integer")
		}
		if i, ok := index[line.Product]; ok {
			deduped[i].Quantity += line.Quantity
			continue
		}
		index[line.Product] = len(deduped)
		deduped = append(deduped, line)
	}

	cart, err := s.store.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.Products = deduped
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) Clear(ctx context.Context, cartID string) (*models.Cart, error) {
	cart, err := s.store.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.Products = []models.CartLine{}
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
