package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/store"
)

// WishlistService manages the products a user saved for later
type WishlistService struct {
	wishlists store.WishlistRepository
	products  store.ProductRepository
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(wishlists store.WishlistRepository, products store.ProductRepository) *WishlistService {
	return &WishlistService{wishlists: wishlists, products: products}
}

// GetWishlist returns the saved products, most recently saved first.
// Products that were deleted or deactivated since are left out.
func (s *WishlistService) GetWishlist(ctx context.Context, userID string) ([]models.Product, error) {
	items, err := s.wishlists.Items(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}

	products := make([]models.Product, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		p, err := s.products.Get(ctx, items[i].ProductID)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if p.IsActive {
			products = append(products, *p)
		}
	}
	return products, nil
}

// AddItem saves an active product; saving it again is a no-op
func (s *WishlistService) AddItem(ctx context.Context, userID, productID string) ([]models.Product, error) {
	if productID == "" {
		return nil, models.InvalidInput("productId is required")
	}
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, models.ErrProductNotFound
	}

	item := models.WishlistItem{ProductID: productID, AddedAt: now()}
	if err := s.wishlists.Add(ctx, userID, item); err != nil {
		return nil, err
	}
	return s.GetWishlist(ctx, userID)
}

// RemoveItem drops a product from the wishlist. Removing an absent product
// succeeds.
func (s *WishlistService) RemoveItem(ctx context.Context, userID, productID string) ([]models.Product, error) {
	if err := s.wishlists.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.GetWishlist(ctx, userID)
}
