package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/SigNoz/storefront-go-app/internal/cache"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/store"
)

const (
	productCacheTTL = 5 * time.Minute
	featuredLimit   = 8
)

// ProductService handles catalog reads, admin writes and reviews
type ProductService struct {
	products   store.ProductRepository
	categories store.CategoryRepository
	cache      cache.Cache
	metrics    *metrics.AppMetrics
}

// NewProductService creates a new product service
func NewProductService(products store.ProductRepository, categories store.CategoryRepository, c cache.Cache, m *metrics.AppMetrics) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		cache:      c,
		metrics:    m,
	}
}

func productCacheKey(id string) string {
	return "product:" + id
}

// ListProducts returns one page of products matching f
func (s *ProductService) ListProducts(ctx context.Context, f models.ProductFilter) (*models.ProductPage, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, models.InvalidInput("minPrice must not exceed maxPrice")
	}
	f.Page, f.Limit = store.NormalizePage(f.Page, f.Limit)

	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &models.ProductPage{
		Products:   products,
		Pagination: models.NewPagination(f.Page, f.Limit, total),
	}, nil
}

// FeaturedProducts returns the newest featured active products
func (s *ProductService) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	products, _, err := s.products.List(ctx, models.ProductFilter{
		Featured: true,
		Sort:     models.SortNewest,
		Page:     1,
		Limit:    featuredLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return products, nil
}

// GetProduct returns a product by ID, served from cache when possible
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := cache.GetJSON(ctx, s.cache, productCacheKey(id), &p)
	if err == nil {
		s.metrics.CacheHits.Add(ctx, 1, s.metrics.Attrs(attribute.String("cache", "product")))
		s.recordView(ctx, &p)
		return &p, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Str("product_id", id).Msg("product cache read failed")
	}
	s.metrics.CacheMisses.Add(ctx, 1, s.metrics.Attrs(attribute.String("cache", "product")))

	fresh, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.cache, productCacheKey(id), fresh, productCacheTTL); err != nil {
		log.Warn().Err(err).Str("product_id", id).Msg("product cache write failed")
	}
	s.recordView(ctx, fresh)
	return fresh, nil
}

func (s *ProductService) recordView(ctx context.Context, p *models.Product) {
	s.metrics.ProductsViewed.Add(ctx, 1, s.metrics.Attrs(
		attribute.String("product_id", p.ID),
		attribute.String("product_category", p.Category),
	))
	s.metrics.InventoryLevel.Record(ctx, int64(p.Stock), s.metrics.Attrs(attribute.String("product_id", p.ID)))
}

// Invalidate drops the cached copy of a product
func (s *ProductService) Invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, productCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("product_id", id).Msg("product cache invalidation failed")
	}
}

// AddReview appends a review from who and recomputes the product rating
func (s *ProductService) AddReview(ctx context.Context, productID string, who models.Identity, req models.ReviewRequest) (*models.Product, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, models.InvalidInput("rating must be between 1 and 5")
	}

	var updated *models.Product
	err := retryOnConflict(func() error {
		p, err := s.products.Get(ctx, productID)
		if err != nil {
			return err
		}
		if p.HasReviewFrom(who.UserID) {
			return models.ErrAlreadyReviewed
		}
		p.Reviews = append(p.Reviews, models.Review{
			UserID:    who.UserID,
			Name:      who.Name,
			Rating:    req.Rating,
			Comment:   strings.TrimSpace(req.Comment),
			CreatedAt: now(),
		})
		p.CalculateAverageRating()
		p.UpdatedAt = now()
		if err := s.products.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx, productID)
	return updated, nil
}

// CreateProduct validates req and stores a new product
func (s *ProductService) CreateProduct(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, models.InvalidInput("name is required")
	}
	if req.Price == nil {
		return nil, models.InvalidInput("price is required")
	}

	ts := now()
	p := &models.Product{
		ID:        uuid.NewString(),
		Price:     decimal.Zero,
		Images:    []models.Image{},
		Reviews:   []models.Review{},
		Tags:      []string{},
		IsActive:  true,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.apply(ctx, p, req); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	log.Info().Str("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return p, nil
}

// UpdateProduct applies the non-nil fields of req
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req models.ProductRequest) (*models.Product, error) {
	var updated *models.Product
	err := retryOnConflict(func() error {
		p, err := s.products.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, p, req); err != nil {
			return err
		}
		p.UpdatedAt = now()
		if err := s.products.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx, id)
	return updated, nil
}

// DeleteProduct removes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.Invalidate(ctx, id)
	log.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// apply copies request fields onto p and validates the result
func (s *ProductService) apply(ctx context.Context, p *models.Product, req models.ProductRequest) error {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
		if p.Name == "" {
			return models.InvalidInput("name is required")
		}
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return models.InvalidInput("price must not be negative")
		}
		p.Price = *req.Price
	}
	if req.CompareAtPrice != nil {
		v := *req.CompareAtPrice
		p.CompareAtPrice = &v
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return models.InvalidInput("stock must not be negative")
		}
		p.Stock = *req.Stock
	}
	if req.Category != nil {
		if *req.Category != "" {
			if _, err := s.categories.Get(ctx, *req.Category); err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return models.InvalidInput("category %q does not exist", *req.Category)
				}
				return err
			}
		}
		p.Category = *req.Category
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.Brand != nil {
		p.Brand = *req.Brand
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}
	return nil
}
