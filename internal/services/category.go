package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/store"
)

// CategoryService manages product categories
type CategoryService struct {
	categories store.CategoryRepository
	products   store.ProductRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categories store.CategoryRepository, products store.ProductRepository) *CategoryService {
	return &CategoryService{categories: categories, products: products}
}

// ListCategories returns active categories, or all of them when includeInactive
func (s *CategoryService) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	categories, err := s.categories.List(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.categories.Get(ctx, id)
}

// CreateCategory stores a new category; the slug defaults to the slugified name
func (s *CategoryService) CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, models.InvalidInput("name is required")
	}
	ts := now()
	c := &models.Category{ID: uuid.NewString(), IsActive: true, CreatedAt: ts, UpdatedAt: ts}
	if err := applyCategory(c, req); err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category %q: %w", c.Slug, err)
	}
	log.Info().Str("category_id", c.ID).Str("slug", c.Slug).Msg("category created")
	return c, nil
}

// UpdateCategory applies the non-nil fields of req
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, req models.CategoryRequest) (*models.Category, error) {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyCategory(c, req); err != nil {
		return nil, err
	}
	c.UpdatedAt = now()
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update category %q: %w", c.Slug, err)
	}
	return c, nil
}

// DeleteCategory removes a category that no product references
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.categories.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: category still has %d products", models.ErrInvalidState, n)
	}
	return s.categories.Delete(ctx, id)
}

func applyCategory(c *models.Category, req models.CategoryRequest) error {
	nameChanged := false
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
		if c.Name == "" {
			return models.InvalidInput("name is required")
		}
		nameChanged = true
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	switch {
	case req.Slug != nil && *req.Slug != "":
		c.Slug = models.Slugify(*req.Slug)
	case nameChanged && (c.Slug == "" || req.Slug != nil):
		c.Slug = models.Slugify(c.Name)
	}
	if c.Slug == "" {
		return models.InvalidInput("slug must contain letters or digits")
	}
	return nil
}
