package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/SigNoz/storefront-go-app/internal/cache"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/mocks"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/store"
	"github.com/SigNoz/storefront-go-app/internal/store/memory"
)

type testEnv struct {
	store      *store.Store
	cache      *cache.Local
	publisher  *mocks.MockPublisher
	processor  *mocks.MockProcessor
	products   *ProductService
	categories *CategoryService
	carts      *CartService
	wishlists  *WishlistService
	orders     *OrderService
	payments   *PaymentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	m, err := metrics.New(noop.NewMeterProvider().Meter("test"), "storefront-test")
	require.NoError(t, err)

	env := &testEnv{
		store:     memory.New(),
		cache:     cache.NewLocal(),
		publisher: &mocks.MockPublisher{},
		processor: &mocks.MockProcessor{},
	}
	env.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	st := env.store
	env.products = NewProductService(st.Products, st.Categories, env.cache, m)
	env.categories = NewCategoryService(st.Categories, st.Products)
	env.carts = NewCartService(st.Carts, st.Products, m)
	env.wishlists = NewWishlistService(st.Wishlists, st.Products)
	env.orders = NewOrderService(st.Orders, st.Carts, st.Products, env.publisher, m)
	env.orders.SetProductCache(env.cache)
	env.payments = NewPaymentService(st.Orders, env.orders, env.processor, env.cache, m, "USD", "pk_test_123")
	return env
}

func (e *testEnv) addProduct(t *testing.T, id, price string, stock int) *models.Product {
	t.Helper()
	ts := time.Now().UTC()
	p := &models.Product{
		ID:        id,
		Name:      "Product " + id,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Images:    []models.Image{{URL: "https://img.example/" + id + ".png"}},
		IsActive:  true,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	require.NoError(t, e.store.Products.Create(context.Background(), p))
	return p
}

func (e *testEnv) product(t *testing.T, id string) *models.Product {
	t.Helper()
	p, err := e.store.Products.Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

func validOrderRequest() models.CreateOrderRequest {
	return models.CreateOrderRequest{
		ShippingAddress: models.ShippingAddress{
			Street:  "1 Main St",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62701",
			Country: "US",
		},
		PaymentMethod: "card",
	}
}

// placeOrder fills userID's cart with quantity of productID and checks out
func (e *testEnv) placeOrder(t *testing.T, userID, productID string, quantity int) *models.Order {
	t.Helper()
	ctx := context.Background()
	_, err := e.carts.AddItem(ctx, userID, productID, quantity)
	require.NoError(t, err)
	o, err := e.orders.CreateOrder(ctx, userID, validOrderRequest())
	require.NoError(t, err)
	return o
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
