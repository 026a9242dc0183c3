// Package store declares the persistence contracts used by the services.
//
// Every document-shaped record (product, cart, order) carries a Version.
// Update methods are conditional on the version the caller loaded and
// return models.ErrConflict when another writer got there first; on
// success the stored version is incremented and written back into the
// argument.
package store

import (
	"context"
	"math"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// ProductRepository persists catalog products
type ProductRepository interface {
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	// RecordSale atomically decrements stock (floored at zero) and increments sold.
	RecordSale(ctx context.Context, id string, quantity int) error
}

// CategoryRepository persists categories
type CategoryRepository interface {
	List(ctx context.Context, includeInactive bool) ([]models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id string) error
}

// CartRepository persists one cart per user
type CartRepository interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	// Create inserts a new cart; ErrConflict if the user already has one.
	Create(ctx context.Context, c *models.Cart) error
	Update(ctx context.Context, c *models.Cart) error
	CountActive(ctx context.Context) (int64, error)
}

// WishlistRepository keeps the products each user saved. Add and Remove are
// idempotent; Items returns the oldest entry first.
type WishlistRepository interface {
	Items(ctx context.Context, userID string) ([]models.WishlistItem, error)
	Add(ctx context.Context, userID string, item models.WishlistItem) error
	Remove(ctx context.Context, userID, productID string) error
}

// OrderRepository persists orders
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	Update(ctx context.Context, o *models.Order) error
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	List(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error)
	Summary(ctx context.Context) (*models.OrderSummary, error)
}

// Store bundles the repositories of one backend
type Store struct {
	Products   ProductRepository
	Categories CategoryRepository
	Carts      CartRepository
	Wishlists  WishlistRepository
	Orders     OrderRepository
	Close      func(context.Context) error
}

// Pagination defaults shared by every backend
const (
	DefaultLimit = 12
	MaxLimit     = 100
)

// NormalizePage clamps page and limit to sane values. page is capped so
// that (page-1)*limit cannot overflow.
func NormalizePage(page, limit int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}
