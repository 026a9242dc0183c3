package memory

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

func seedProducts(t *testing.T, repo *ProductRepo) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	products := []models.Product{
		{ID: "a", Name: "Trail Shoe", Price: decimal.NewFromInt(80), Category: "shoes", Brand: "Acme", Tags: []string{"outdoor"}, IsActive: true, Rating: 4, Sold: 5, CreatedAt: base},
		{ID: "b", Name: "Road Shoe", Description: "light and fast", Price: decimal.NewFromInt(120), Category: "shoes", Brand: "Zoom", Tags: []string{"running"}, IsActive: true, Rating: 5, Sold: 1, CreatedAt: base.Add(time.Hour)},
		{ID: "c", Name: "Wool Sock", Price: decimal.NewFromInt(10), Category: "socks", Tags: []string{"outdoor", "winter"}, IsActive: true, Featured: true, Rating: 3, Sold: 20, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "d", Name: "Retired Shoe", Price: decimal.NewFromInt(60), Category: "shoes", IsActive: false, CreatedAt: base.Add(3 * time.Hour)},
	}
	for i := range products {
		require.NoError(t, repo.Create(context.Background(), &products[i]))
	}
}

func ids(list []models.Product) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.ID)
	}
	return out
}

func TestProductRepo_List(t *testing.T) {
	repo := NewProductRepo()
	seedProducts(t, repo)

	lo := decimal.NewFromInt(50)
	hi := decimal.NewFromInt(100)
	rating := 4.0

	tests := []struct {
		name   string
		filter models.ProductFilter
		want   []string
	}{
		{"default newest first, active only", models.ProductFilter{}, []string{"c", "b", "a"}},
		{"include inactive", models.ProductFilter{IncludeInactive: true}, []string{"d", "c", "b", "a"}},
		{"price ascending", models.ProductFilter{Sort: models.SortPriceAsc}, []string{"c", "a", "b"}},
		{"price descending", models.ProductFilter{Sort: models.SortPriceDesc}, []string{"b", "a", "c"}},
		{"rating", models.ProductFilter{Sort: models.SortRating}, []string{"b", "a", "c"}},
		{"popular", models.ProductFilter{Sort: models.SortPopular}, []string{"c", "a", "b"}},
		{"price range inclusive", models.ProductFilter{MinPrice: &lo, MaxPrice: &hi}, []string{"a"}},
		{"category", models.ProductFilter{Category: "socks"}, []string{"c"}},
		{"min rating", models.ProductFilter{MinRating: &rating, Sort: models.SortPriceAsc}, []string{"a", "b"}},
		{"search matches description case-insensitively", models.ProductFilter{Search: "FAST"}, []string{"b"}},
		{"tags are OR-matched", models.ProductFilter{Tags: []string{"running", "winter"}}, []string{"c", "b"}},
		{"brand", models.ProductFilter{Brand: "Acme"}, []string{"a"}},
		{"featured", models.ProductFilter{Featured: true}, []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestProductRepo_ListPaginates(t *testing.T) {
	repo := NewProductRepo()
	seedProducts(t, repo)

	got, total, err := repo.List(context.Background(), models.ProductFilter{Sort: models.SortPriceAsc, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"b"}, ids(got))

	got, _, err = repo.List(context.Background(), models.ProductFilter{Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, total, err = repo.List(context.Background(), models.ProductFilter{Page: math.MaxInt, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, got)
}

func TestProductRepo_UpdateIsVersionChecked(t *testing.T) {
	repo := NewProductRepo()
	ctx := context.Background()
	p := &models.Product{ID: "p1", Name: "Lamp", Price: decimal.NewFromInt(30), IsActive: true}
	require.NoError(t, repo.Create(ctx, p))

	first, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "p1")
	require.NoError(t, err)

	first.Name = "Desk Lamp"
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Name = "Floor Lamp"
	assert.ErrorIs(t, repo.Update(ctx, second), models.ErrConflict)

	stored, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", stored.Name)
}

func TestProductRepo_RecordSaleFloorsStock(t *testing.T) {
	repo := NewProductRepo()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Product{ID: "p1", Stock: 2, Price: decimal.NewFromInt(1)}))

	require.NoError(t, repo.RecordSale(ctx, "p1", 3))

	p, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, 3, p.Sold)
	assert.ErrorIs(t, repo.RecordSale(ctx, "missing", 1), models.ErrNotFound)
}

func TestProductRepo_GetReturnsCopy(t *testing.T) {
	repo := NewProductRepo()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Product{ID: "p1", Tags: []string{"x"}, Price: decimal.NewFromInt(1)}))

	p, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	p.Tags[0] = "mutated"

	again, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, again.Tags)
}

func TestCategoryRepo_SlugUnique(t *testing.T) {
	repo := NewCategoryRepo()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Category{ID: "1", Name: "Shoes", Slug: "shoes", IsActive: true}))
	assert.ErrorIs(t, repo.Create(ctx, &models.Category{ID: "2", Name: "Shoes!", Slug: "shoes"}), models.ErrConflict)

	require.NoError(t, repo.Create(ctx, &models.Category{ID: "2", Name: "Hats", Slug: "hats"}))
	list, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCartRepo_CreateAndCount(t *testing.T) {
	repo := NewCartRepo()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, models.NewCart("u1", now)))
	assert.ErrorIs(t, repo.Create(ctx, models.NewCart("u1", now)), models.ErrConflict)

	cart, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	cart.Items = append(cart.Items, models.CartItem{ProductID: "p", Quantity: 1, Price: decimal.NewFromInt(5)})
	require.NoError(t, repo.Update(ctx, cart))

	require.NoError(t, repo.Create(ctx, models.NewCart("u2", now)))

	n, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOrderRepo_ListAndSummary(t *testing.T) {
	repo := NewOrderRepo()
	ctx := context.Background()
	base := time.Now()

	orders := []*models.Order{
		{ID: "o1", UserID: "u1", Status: models.StatusPending, TotalPrice: decimal.NewFromInt(20), CreatedAt: base},
		{ID: "o2", UserID: "u1", Status: models.StatusProcessing, IsPaid: true, TotalPrice: decimal.NewFromInt(50), CreatedAt: base.Add(time.Minute)},
		{ID: "o3", UserID: "u2", Status: models.StatusProcessing, IsPaid: true, TotalPrice: decimal.RequireFromString("12.5"), CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, o := range orders {
		require.NoError(t, repo.Create(ctx, o))
	}

	mine, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "o2", mine[0].ID)

	page, total, err := repo.List(ctx, models.OrderFilter{Status: models.StatusProcessing})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "o3", page[0].ID)

	sum, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.TotalOrders)
	assert.Equal(t, int64(2), sum.PaidOrders)
	assert.True(t, decimal.RequireFromString("62.5").Equal(sum.Revenue))
	assert.Equal(t, int64(2), sum.ByStatus[models.StatusProcessing])
}

func TestWishlistRepo_AddRemove(t *testing.T) {
	repo := NewWishlistRepo()
	ctx := context.Background()
	at := time.Now()

	require.NoError(t, repo.Add(ctx, "u1", models.WishlistItem{ProductID: "a", AddedAt: at}))
	require.NoError(t, repo.Add(ctx, "u1", models.WishlistItem{ProductID: "b", AddedAt: at}))
	require.NoError(t, repo.Add(ctx, "u1", models.WishlistItem{ProductID: "a", AddedAt: at.Add(time.Hour)}))

	items, err := repo.Items(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ProductID)
	assert.True(t, at.Equal(items[0].AddedAt), "re-adding keeps the original entry")

	// callers get a copy
	items[0].ProductID = "changed"
	require.NoError(t, repo.Remove(ctx, "u1", "a"))
	require.NoError(t, repo.Remove(ctx, "u1", "a"))
	require.NoError(t, repo.Remove(ctx, "u2", "a"))

	items, err = repo.Items(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ProductID)
}
