package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SigNoz/storefront-go-app/internal/events"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/store"
)

func TestOrderService_CreateOrder_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.orders.CreateOrder(ctx, "u1", validOrderRequest())
	assert.ErrorIs(t, err, models.ErrEmptyCart)

	_, err = env.carts.GetOrCreateCart(ctx, "u1")
	require.NoError(t, err)
	_, err = env.orders.CreateOrder(ctx, "u1", validOrderRequest())
	assert.ErrorIs(t, err, models.ErrEmptyCart)

	orders, err := env.orders.ListUserOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	env.publisher.AssertNotCalled(t, "Publish", mock.Anything, events.OrderCreated, mock.Anything)
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)
	_, err := env.carts.AddItem(ctx, "u1", "p1", 1)
	require.NoError(t, err)

	noCity := validOrderRequest()
	noCity.ShippingAddress.City = ""
	_, err = env.orders.CreateOrder(ctx, "u1", noCity)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	noMethod := validOrderRequest()
	noMethod.PaymentMethod = " "
	_, err = env.orders.CreateOrder(ctx, "u1", noMethod)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestOrderService_CreateOrder_Pricing(t *testing.T) {
	tests := []struct {
		name                        string
		price                       string
		quantity                    int
		items, shipping, tax, total string
	}{
		{"below threshold pays shipping", "25.00", 2, "50.00", "10", "5.00", "65.00"},
		{"exactly threshold pays shipping", "50.00", 2, "100.00", "10", "10.00", "120.00"},
		{"above threshold ships free", "75.50", 2, "151.00", "0", "15.10", "166.10"},
		{"tax rounds to cents", "3.33", 1, "3.33", "10", "0.33", "13.66"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.addProduct(t, "p1", tt.price, 10)

			o := env.placeOrder(t, "u1", "p1", tt.quantity)
			assert.True(t, dec(tt.items).Equal(o.ItemsPrice), "items %s", o.ItemsPrice)
			assert.True(t, dec(tt.shipping).Equal(o.ShippingPrice), "shipping %s", o.ShippingPrice)
			assert.True(t, dec(tt.tax).Equal(o.TaxPrice), "tax %s", o.TaxPrice)
			assert.True(t, dec(tt.total).Equal(o.TotalPrice), "total %s", o.TotalPrice)
		})
	}
}

func TestOrderService_CreateOrder_Snapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "20.00", 10)

	o := env.placeOrder(t, "u1", "p1", 3)
	assert.Equal(t, models.StatusPending, o.Status)
	assert.False(t, o.IsPaid)
	require.Len(t, o.OrderItems, 1)
	assert.Equal(t, "Product p1", o.OrderItems[0].Name)
	assert.Equal(t, "https://img.example/p1.png", o.OrderItems[0].Image)
	assert.Equal(t, 3, o.OrderItems[0].Quantity)

	// later catalog edits do not reach the order
	p := env.product(t, "p1")
	p.Name = "Renamed"
	p.Price = dec("99.00")
	require.NoError(t, env.store.Products.Update(ctx, p))

	stored, err := env.store.Orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Product p1", stored.OrderItems[0].Name)
	assert.True(t, dec("20.00").Equal(stored.OrderItems[0].Price))

	// stock moves only on payment
	assert.Equal(t, 10, env.product(t, "p1").Stock)

	cart, err := env.store.Carts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1, "checkout clears the cart, not CreateOrder")

	env.publisher.AssertCalled(t, "Publish", mock.Anything, events.OrderCreated, mock.Anything)
}

func TestOrderService_GetOrder_Visibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)
	o := env.placeOrder(t, "owner", "p1", 1)

	_, err := env.orders.GetOrder(ctx, models.Identity{UserID: "owner"}, o.ID)
	assert.NoError(t, err)
	_, err = env.orders.GetOrder(ctx, models.Identity{UserID: "admin", Role: models.RoleAdmin}, o.ID)
	assert.NoError(t, err)
	_, err = env.orders.GetOrder(ctx, models.Identity{UserID: "stranger"}, o.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = env.orders.GetOrder(ctx, models.Identity{UserID: "owner"}, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOrderService_CancelOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)

	o := env.placeOrder(t, "u1", "p1", 1)
	_, err := env.orders.CancelOrder(ctx, "u2", o.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	cancelled, err := env.orders.CancelOrder(ctx, "u1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	env.publisher.AssertCalled(t, "Publish", mock.Anything, events.OrderCancelled, mock.Anything)

	_, err = env.orders.CancelOrder(ctx, "u1", o.ID)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	for _, status := range []models.OrderStatus{models.StatusShipped, models.StatusDelivered} {
		t.Run(string(status), func(t *testing.T) {
			placed := env.placeOrder(t, "u1", "p1", 1)
			_, err := env.orders.UpdateStatus(ctx, placed.ID, models.UpdateOrderStatusRequest{Status: status})
			require.NoError(t, err)
			before, err := env.store.Orders.Get(ctx, placed.ID)
			require.NoError(t, err)

			_, err = env.orders.CancelOrder(ctx, "u1", placed.ID)
			assert.ErrorIs(t, err, models.ErrInvalidState)

			after, err := env.store.Orders.Get(ctx, placed.ID)
			require.NoError(t, err)
			assert.Equal(t, status, after.Status)
			assert.Equal(t, before.Version, after.Version)
		})
	}
}

func TestOrderService_UpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)
	o := env.placeOrder(t, "u1", "p1", 1)

	_, err := env.orders.UpdateStatus(ctx, o.ID, models.UpdateOrderStatusRequest{Status: "lost"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	updated, err := env.orders.UpdateStatus(ctx, o.ID, models.UpdateOrderStatusRequest{
		Status:         models.StatusDelivered,
		TrackingNumber: "1Z999",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)
	assert.Equal(t, "1Z999", updated.TrackingNumber)
	require.NotNil(t, updated.DeliveredAt)
	env.publisher.AssertCalled(t, "Publish", mock.Anything, events.OrderStatusChanged, mock.Anything)
}

func TestOrderService_MarkPaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)
	env.addProduct(t, "p2", "3.00", 1)

	_, err := env.carts.AddItem(ctx, "u1", "p1", 2)
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, "u1", "p2", 1)
	require.NoError(t, err)
	o, err := env.orders.CreateOrder(ctx, "u1", validOrderRequest())
	require.NoError(t, err)

	// a stale cached copy must not survive the sale
	_, err = env.products.GetProduct(ctx, "p1")
	require.NoError(t, err)

	receipt := models.PaymentResult{ID: "pi_1", Status: "succeeded", UpdateTime: "2024-01-01T00:00:00Z"}
	paid, err := env.orders.MarkPaid(ctx, o.ID, receipt)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.NotNil(t, paid.PaidAt)
	assert.Equal(t, models.StatusProcessing, paid.Status)
	assert.Equal(t, &receipt, paid.PaymentResult)

	again, err := env.orders.MarkPaid(ctx, o.ID, models.PaymentResult{ID: "pi_2"})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", again.PaymentResult.ID)

	p1 := env.product(t, "p1")
	assert.Equal(t, 3, p1.Stock)
	assert.Equal(t, 2, p1.Sold)
	p2 := env.product(t, "p2")
	assert.Equal(t, 0, p2.Stock)
	assert.Equal(t, 1, p2.Sold)

	cached, err := env.products.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, cached.Stock)

	env.publisher.AssertNumberOfCalls(t, "Publish", 2)
}

func TestOrderService_MarkPaid_KeepsLaterStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)
	o := env.placeOrder(t, "u1", "p1", 1)

	_, err := env.orders.UpdateStatus(ctx, o.ID, models.UpdateOrderStatusRequest{Status: models.StatusShipped})
	require.NoError(t, err)
	paid, err := env.orders.MarkPaid(ctx, o.ID, models.PaymentResult{ID: "pi_1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, paid.Status)
}

// conflictingOrders fails the first n updates with a version conflict
type conflictingOrders struct {
	store.OrderRepository
	n int
}

func (c *conflictingOrders) Update(ctx context.Context, o *models.Order) error {
	if c.n > 0 {
		c.n--
		return models.ErrConflict
	}
	return c.OrderRepository.Update(ctx, o)
}

func TestOrderService_RetriesOnConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)
	o := env.placeOrder(t, "u1", "p1", 1)

	repo := &conflictingOrders{OrderRepository: env.store.Orders, n: maxAttempts - 1}
	svc := NewOrderService(repo, env.store.Carts, env.store.Products, env.publisher, env.orders.metrics)
	updated, err := svc.UpdateStatus(ctx, o.ID, models.UpdateOrderStatusRequest{Status: models.StatusShipped})
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, updated.Status)

	repo.n = maxAttempts
	_, err = svc.UpdateStatus(ctx, o.ID, models.UpdateOrderStatusRequest{Status: models.StatusDelivered})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestOrderService_ListOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 50)
	for i := 0; i < 3; i++ {
		env.placeOrder(t, "u1", "p1", 1)
	}
	last := env.placeOrder(t, "u2", "p1", 1)
	_, err := env.orders.CancelOrder(ctx, "u2", last.ID)
	require.NoError(t, err)

	page, err := env.orders.ListOrders(ctx, models.OrderFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)
	assert.Equal(t, int64(4), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Pages)

	page, err = env.orders.ListOrders(ctx, models.OrderFilter{Status: models.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, last.ID, page.Orders[0].ID)

	_, err = env.orders.ListOrders(ctx, models.OrderFilter{Status: "bogus"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	all, err := env.orders.AllOrders(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	mine, err := env.orders.ListUserOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}
