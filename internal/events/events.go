// Package events publishes order lifecycle events to a message broker.
package events

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// Routing keys for order events
const (
	OrderCreated       = "order.created"
	OrderPaid          = "order.paid"
	OrderCancelled     = "order.cancelled"
	OrderStatusChanged = "order.status_changed"
)

// Publisher delivers a payload under a routing key
type Publisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

// OrderEvent is the payload of every order event
type OrderEvent struct {
	OrderID    string             `json:"orderId"`
	UserID     string             `json:"userId"`
	Status     models.OrderStatus `json:"status"`
	IsPaid     bool               `json:"isPaid"`
	TotalPrice decimal.Decimal    `json:"totalPrice"`
	OccurredAt time.Time          `json:"occurredAt"`
}

// NewOrderEvent snapshots the fields consumers care about
func NewOrderEvent(o *models.Order, at time.Time) OrderEvent {
	return OrderEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		IsPaid:     o.IsPaid,
		TotalPrice: o.TotalPrice,
		OccurredAt: at,
	}
}

// LogPublisher writes events to the log; used when no broker is configured
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, routingKey string, data any) error {
	log.Info().Str("routing_key", routingKey).Interface("data", data).Msg("order event")
	return nil
}
