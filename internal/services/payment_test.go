package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SigNoz/storefront-go-app/internal/cache"
	"github.com/SigNoz/storefront-go-app/internal/events"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/payment"
)

func succeededEvent(id, orderID string) *payment.Event {
	return &payment.Event{
		ID:              id,
		Type:            payment.EventPaymentSucceeded,
		PaymentIntentID: "pi_" + orderID,
		Status:          "succeeded",
		Metadata:        map[string]string{"orderId": orderID},
		Created:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPaymentService_CreatePaymentIntent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "25.00", 5)
	o := env.placeOrder(t, "u1", "p1", 2) // 50 + 10 shipping + 5 tax

	env.processor.On("CreateIntent", mock.Anything, payment.IntentRequest{
		AmountMinor: 6500,
		Currency:    "usd",
		Metadata:    map[string]string{"orderId": o.ID, "userId": "u1"},
	}).Return(&payment.Intent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil).Once()

	res, err := env.payments.CreatePaymentIntent(ctx, o.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, &models.PaymentIntentResponse{
		ClientSecret:    "pi_1_secret",
		PaymentIntentID: "pi_1",
		Amount:          6500,
		Currency:        "usd",
	}, res)
	env.processor.AssertExpectations(t)
}

func TestPaymentService_CreatePaymentIntent_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 10)

	open := env.placeOrder(t, "u1", "p1", 1)
	paid := env.placeOrder(t, "u1", "p1", 1)
	_, err := env.orders.MarkPaid(ctx, paid.ID, models.PaymentResult{ID: "pi_x"})
	require.NoError(t, err)
	cancelled := env.placeOrder(t, "u1", "p1", 1)
	_, err = env.orders.CancelOrder(ctx, "u1", cancelled.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		orderID string
		userID  string
		want    error
	}{
		{"missing id", "", "u1", models.ErrInvalidInput},
		{"unknown order", "nope", "u1", models.ErrNotFound},
		{"not the owner", open.ID, "u2", models.ErrForbidden},
		{"already paid", paid.ID, "u1", models.ErrInvalidState},
		{"cancelled", cancelled.ID, "u1", models.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.payments.CreatePaymentIntent(ctx, tt.orderID, tt.userID)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	env.processor.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestPaymentService_CreatePaymentIntent_ProcessorError(t *testing.T) {
	env := newTestEnv(t)
	env.addProduct(t, "p1", "10.00", 5)
	o := env.placeOrder(t, "u1", "p1", 1)

	env.processor.On("CreateIntent", mock.Anything, mock.Anything).Return(nil, errors.New("card network down"))
	_, err := env.payments.CreatePaymentIntent(context.Background(), o.ID, "u1")
	assert.EqualError(t, err, "card network down")
}

func TestPaymentService_HandleWebhook_BadSignature(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)
	o := env.placeOrder(t, "u1", "p1", 1)

	payload := []byte(`{"id":"evt_1"}`)
	env.processor.On("ConstructEvent", payload, "t=1,v1=bad").Return(nil, errors.New("signature mismatch"))

	err := env.payments.HandleWebhook(ctx, payload, "t=1,v1=bad")
	assert.ErrorIs(t, err, models.ErrInvalidSignature)

	stored, err := env.store.Orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPaid)
	assert.Equal(t, 5, env.product(t, "p1").Stock)
}

func TestPaymentService_HandleWebhook_Succeeded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)
	o := env.placeOrder(t, "u1", "p1", 2)

	payload := []byte(`{"id":"evt_1"}`)
	env.processor.On("ConstructEvent", payload, "sig").Return(succeededEvent("evt_1", o.ID), nil)

	require.NoError(t, env.payments.HandleWebhook(ctx, payload, "sig"))
	// a redelivery of the same event is acknowledged and ignored
	require.NoError(t, env.payments.HandleWebhook(ctx, payload, "sig"))

	stored, err := env.store.Orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
	assert.Equal(t, models.StatusProcessing, stored.Status)
	require.NotNil(t, stored.PaymentResult)
	assert.Equal(t, models.PaymentResult{
		ID:         "pi_" + o.ID,
		Status:     "succeeded",
		UpdateTime: "2024-05-01T12:00:00Z",
	}, *stored.PaymentResult)

	p := env.product(t, "p1")
	assert.Equal(t, 3, p.Stock)
	assert.Equal(t, 2, p.Sold)
	env.publisher.AssertCalled(t, "Publish", mock.Anything, events.OrderPaid, mock.Anything)
}

func TestPaymentService_HandleWebhook_DistinctEventsSameOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)
	o := env.placeOrder(t, "u1", "p1", 1)

	env.processor.On("ConstructEvent", []byte("a"), "sig").Return(succeededEvent("evt_a", o.ID), nil)
	env.processor.On("ConstructEvent", []byte("b"), "sig").Return(succeededEvent("evt_b", o.ID), nil)

	require.NoError(t, env.payments.HandleWebhook(ctx, []byte("a"), "sig"))
	require.NoError(t, env.payments.HandleWebhook(ctx, []byte("b"), "sig"))

	p := env.product(t, "p1")
	assert.Equal(t, 4, p.Stock, "inventory moves once per order")
	assert.Equal(t, 1, p.Sold)
}

func TestPaymentService_HandleWebhook_AcknowledgesOtherOutcomes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	failed := &payment.Event{ID: "evt_f", Type: payment.EventPaymentFailed, Metadata: map[string]string{"orderId": "o1"}}
	unknownOrder := succeededEvent("evt_u", "missing")
	noMetadata := &payment.Event{ID: "evt_n", Type: payment.EventPaymentSucceeded}
	other := &payment.Event{ID: "evt_o", Type: "charge.refunded"}

	for _, evt := range []*payment.Event{failed, unknownOrder, noMetadata, other} {
		payload := []byte(evt.ID)
		env.processor.On("ConstructEvent", payload, "sig").Return(evt, nil)
		assert.NoError(t, env.payments.HandleWebhook(ctx, payload, "sig"), evt.ID)
	}

	// a failed apply is not remembered so a redelivery is retried
	fresh, err := env.cache.SetNX(ctx, "webhook:evt_u", []byte("x"), time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	held, err := env.cache.SetNX(ctx, "webhook:evt_f", []byte("x"), time.Minute)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestPaymentService_HandleWebhook_RetriesFailedApply(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)

	payload := []byte("late")
	env.processor.On("ConstructEvent", payload, "sig").Return(succeededEvent("evt_late", "o-late"), nil)

	// the order is not visible yet, so the first delivery cannot be applied
	require.NoError(t, env.payments.HandleWebhook(ctx, payload, "sig"))
	_, err := env.cache.Get(ctx, "webhook:evt_late")
	assert.ErrorIs(t, err, cache.ErrMiss)

	o := env.placeOrder(t, "u1", "p1", 1)
	stored, err := env.store.Orders.Get(ctx, o.ID)
	require.NoError(t, err)
	late := *stored
	late.ID = "o-late"
	require.NoError(t, env.store.Orders.Create(ctx, &late))

	require.NoError(t, env.payments.HandleWebhook(ctx, payload, "sig"))
	paid, err := env.store.Orders.Get(ctx, "o-late")
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)

	_, err = env.cache.Get(ctx, "webhook:evt_late")
	assert.NoError(t, err, "handled event is remembered")
}

func TestPaymentService_Config(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, models.PaymentConfig{PublishableKey: "pk_test_123", Currency: "usd"}, env.payments.Config())
}
