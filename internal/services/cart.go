package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/store"
)

// CartService handles cart-related operations
type CartService struct {
	carts    store.CartRepository
	products store.ProductRepository
	metrics  *metrics.AppMetrics
}

// NewCartService creates a new cart service
func NewCartService(carts store.CartRepository, products store.ProductRepository, m *metrics.AppMetrics) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		metrics:  m,
	}
}

// GetOrCreateCart returns the user's cart, creating an empty one on first use
func (s *CartService) GetOrCreateCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	cart = models.NewCart(userID, now())
	err = s.carts.Create(ctx, cart)
	if errors.Is(err, models.ErrConflict) {
		// lost the race to another first request
		return s.carts.Get(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

// mutate loads the cart, applies fn, recomputes totals and saves it
// conditionally, retrying when another writer changed the cart meanwhile
func (s *CartService) mutate(ctx context.Context, userID string, fn func(*models.Cart) error) (*models.Cart, error) {
	var saved *models.Cart
	err := retryOnConflict(func() error {
		cart, err := s.GetOrCreateCart(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(cart); err != nil {
			return err
		}
		cart.CalculateTotals()
		cart.UpdatedAt = now()
		if err := s.carts.Update(ctx, cart); err != nil {
			return err
		}
		saved = cart
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CartItemsCount.Record(ctx, int64(saved.TotalItems), s.metrics.Attrs(attribute.String("user_id", userID)))
	return saved, nil
}

// activeProduct loads a product that can be sold
func (s *CartService) activeProduct(ctx context.Context, productID string) (*models.Product, error) {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, models.ErrProductNotFound
	}
	return p, nil
}

// AddItem adds quantity of a product. An existing line keeps the price it
// was first added at; only the requested quantity is checked against stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, models.InvalidInput("quantity must be at least 1")
	}
	product, err := s.activeProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, fmt.Errorf("%w: %d of %q available", models.ErrInsufficientStock, product.Stock, product.Name)
	}

	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		if i := cart.FindItem(productID); i >= 0 {
			cart.Items[i].Quantity += quantity
			return nil
		}
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.Price,
		})
		return nil
	})
}

// UpdateItem sets the quantity of an existing line
func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, models.InvalidInput("quantity must be at least 1")
	}
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		i := cart.FindItem(productID)
		if i < 0 {
			return models.ErrItemNotFound
		}
		product, err := s.products.Get(ctx, productID)
		if err != nil {
			return err
		}
		if product.Stock < quantity {
			return fmt.Errorf("%w: %d of %q available", models.ErrInsufficientStock, product.Stock, product.Name)
		}
		cart.Items[i].Quantity = quantity
		return nil
	})
}

// RemoveItem drops a line; removing an absent line is not an error
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		cart.RemoveItem(productID)
		return nil
	})
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, userID string) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		cart.Items = []models.CartItem{}
		return nil
	})
}

// RecordActiveCarts updates the active carts gauge and returns the count
func (s *CartService) RecordActiveCarts(ctx context.Context) (int64, error) {
	n, err := s.carts.CountActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count active carts: %w", err)
	}
	s.metrics.ActiveCartsCount.Record(ctx, n, s.metrics.Attrs())
	return n, nil
}
