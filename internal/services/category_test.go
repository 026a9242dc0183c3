package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

func TestCategoryService_CreateCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.categories.CreateCategory(ctx, models.CategoryRequest{Name: ptr("Home & Garden")})
	require.NoError(t, err)
	assert.Equal(t, "home-garden", c.Slug)
	assert.True(t, c.IsActive)

	_, err = env.categories.CreateCategory(ctx, models.CategoryRequest{Name: ptr("Home Garden")})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = env.categories.CreateCategory(ctx, models.CategoryRequest{Name: ptr("  ")})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	custom, err := env.categories.CreateCategory(ctx, models.CategoryRequest{Name: ptr("Shoes"), Slug: ptr("Footwear")})
	require.NoError(t, err)
	assert.Equal(t, "footwear", custom.Slug)
}

func TestCategoryService_UpdateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.categories.CreateCategory(ctx, models.CategoryRequest{Name: ptr("Toys")})
	require.NoError(t, err)

	renamed, err := env.categories.UpdateCategory(ctx, c.ID, models.CategoryRequest{Name: ptr("Games"), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Games", renamed.Name)
	assert.Equal(t, "toys", renamed.Slug, "renames keep the existing slug")

	active, err := env.categories.ListCategories(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := env.categories.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = env.categories.UpdateCategory(ctx, "missing", models.CategoryRequest{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.categories.CreateCategory(ctx, models.CategoryRequest{Name: ptr("Books")})
	require.NoError(t, err)
	p := env.addProduct(t, "p1", "5.00", 1)
	p.Category = c.ID
	require.NoError(t, env.store.Products.Update(ctx, p))

	assert.ErrorIs(t, env.categories.DeleteCategory(ctx, c.ID), models.ErrInvalidState)

	require.NoError(t, env.store.Products.Delete(ctx, p.ID))
	require.NoError(t, env.categories.DeleteCategory(ctx, c.ID))

	_, err = env.categories.GetCategory(ctx, c.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, env.categories.DeleteCategory(ctx, c.ID), models.ErrNotFound)
}
