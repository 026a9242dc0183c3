package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

func productIDs(products []models.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestWishlistService_AddAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)
	env.addProduct(t, "p2", "20.00", 0)

	list, err := env.wishlists.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = env.wishlists.AddItem(ctx, "u1", "p1")
	require.NoError(t, err)
	list, err = env.wishlists.AddItem(ctx, "u1", "p2")
	require.NoError(t, err, "out of stock products can still be saved")
	assert.Equal(t, []string{"p2", "p1"}, productIDs(list))

	list, err = env.wishlists.AddItem(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, productIDs(list), "adding twice keeps one entry")

	other, err := env.wishlists.GetWishlist(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestWishlistService_AddItem_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inactive := env.addProduct(t, "p1", "10.00", 5)
	inactive.IsActive = false
	require.NoError(t, env.store.Products.Update(ctx, inactive))

	tests := []struct {
		name      string
		productID string
		want      error
	}{
		{"missing id", "", models.ErrInvalidInput},
		{"unknown product", "nope", models.ErrNotFound},
		{"inactive product", "p1", models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.wishlists.AddItem(ctx, "u1", tt.productID)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	items, err := env.store.Wishlists.Items(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWishlistService_RemoveItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)
	env.addProduct(t, "p2", "20.00", 5)
	_, err := env.wishlists.AddItem(ctx, "u1", "p1")
	require.NoError(t, err)
	_, err = env.wishlists.AddItem(ctx, "u1", "p2")
	require.NoError(t, err)

	list, err := env.wishlists.RemoveItem(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, productIDs(list))

	list, err = env.wishlists.RemoveItem(ctx, "u1", "p1")
	require.NoError(t, err, "removing twice succeeds")
	assert.Equal(t, []string{"p2"}, productIDs(list))

	_, err = env.wishlists.RemoveItem(ctx, "nobody", "p2")
	assert.NoError(t, err)
}

func TestWishlistService_SkipsUnavailableProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)
	env.addProduct(t, "p2", "20.00", 5)
	env.addProduct(t, "p3", "30.00", 5)
	for _, id := range []string{"p1", "p2", "p3"} {
		_, err := env.wishlists.AddItem(ctx, "u1", id)
		require.NoError(t, err)
	}

	require.NoError(t, env.store.Products.Delete(ctx, "p1"))
	p2 := env.product(t, "p2")
	p2.IsActive = false
	require.NoError(t, env.store.Products.Update(ctx, p2))

	list, err := env.wishlists.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, productIDs(list))
}
