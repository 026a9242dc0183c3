package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

func TestEncode(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	order := &models.Order{ID: "o1", UserID: "u1", Status: models.StatusProcessing, IsPaid: true, TotalPrice: decimal.RequireFromString("70.5")}

	body, err := Encode(OrderPaid, NewOrderEvent(order, at))
	require.NoError(t, err)

	var got struct {
		ID      string `json:"id"`
		Pattern string `json:"pattern"`
		Data    struct {
			OrderID    string `json:"orderId"`
			Status     string `json:"status"`
			IsPaid     bool   `json:"isPaid"`
			TotalPrice string `json:"totalPrice"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &got))

	_, err = uuid.Parse(got.ID)
	assert.NoError(t, err)
	assert.Equal(t, OrderPaid, got.Pattern)
	assert.Equal(t, "o1", got.Data.OrderID)
	assert.Equal(t, "processing", got.Data.Status)
	assert.True(t, got.Data.IsPaid)
	assert.Equal(t, "70.5", got.Data.TotalPrice)
}

func TestLogPublisher(t *testing.T) {
	var p Publisher = LogPublisher{}
	assert.NoError(t, p.Publish(context.Background(), OrderCreated, map[string]string{"orderId": "o1"}))
}
