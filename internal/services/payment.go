package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/SigNoz/storefront-go-app/internal/cache"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/payment"
	"github.com/SigNoz/storefront-go-app/internal/store"
)

// webhookDedupTTL is how long a processed event id is remembered
const webhookDedupTTL = 24 * time.Hour

// PaymentService bridges orders and the payment processor
type PaymentService struct {
	orders         store.OrderRepository
	orderService   *OrderService
	processor      payment.Processor
	cache          cache.Cache
	metrics        *metrics.AppMetrics
	currency       string
	publishableKey string
}

// NewPaymentService creates a new payment service
func NewPaymentService(orders store.OrderRepository, orderService *OrderService, processor payment.Processor, c cache.Cache, m *metrics.AppMetrics, currency, publishableKey string) *PaymentService {
	return &PaymentService{
		orders:         orders,
		orderService:   orderService,
		processor:      processor,
		cache:          c,
		metrics:        m,
		currency:       strings.ToLower(currency),
		publishableKey: publishableKey,
	}
}

// Config returns the public processor settings for clients
func (s *PaymentService) Config() models.PaymentConfig {
	return models.PaymentConfig{PublishableKey: s.publishableKey, Currency: s.currency}
}

// CreatePaymentIntent prepares a processor payment for the order's total
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, orderID, requesterID string) (*models.PaymentIntentResponse, error) {
	if orderID == "" {
		return nil, models.InvalidInput("orderId is required")
	}
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != requesterID {
		return nil, models.ErrForbidden
	}
	if o.IsPaid {
		return nil, fmt.Errorf("%w: order is already paid", models.ErrInvalidState)
	}
	if o.Status == models.StatusCancelled {
		return nil, fmt.Errorf("%w: order is cancelled", models.ErrInvalidState)
	}

	amount := o.AmountMinor()
	intent, err := s.processor.CreateIntent(ctx, payment.IntentRequest{
		AmountMinor: amount,
		Currency:    s.currency,
		Metadata: map[string]string{
			"orderId": o.ID,
			"userId":  o.UserID,
		},
	})
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.PaymentIntents.Add(ctx, 1, s.metrics.Attrs(attribute.String("outcome", outcome)))
	if err != nil {
		return nil, err
	}

	log.Info().Str("order_id", o.ID).Str("payment_intent", intent.ID).Int64("amount", amount).Msg("payment intent created")
	return &models.PaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          amount,
		Currency:        s.currency,
	}, nil
}

// HandleWebhook verifies and applies a processor notification. Only a bad
// signature is reported to the caller; once an event is authentic every
// outcome is acknowledged so the processor stops redelivering.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.processor.ConstructEvent(payload, signature)
	if err != nil {
		s.recordWebhook(ctx, "unknown", "rejected")
		log.Warn().Err(err).Msg("webhook signature verification failed")
		if !errors.Is(err, models.ErrInvalidSignature) {
			err = fmt.Errorf("%w: %v", models.ErrInvalidSignature, err)
		}
		return err
	}

	dedupKey := "webhook:" + evt.ID
	if s.seen(ctx, dedupKey) {
		s.recordWebhook(ctx, evt.Type, "duplicate")
		log.Info().Str("event_id", evt.ID).Msg("duplicate webhook ignored")
		return nil
	}

	switch evt.Type {
	case payment.EventPaymentSucceeded:
		if !s.paymentSucceeded(ctx, evt) {
			return nil
		}
	case payment.EventPaymentFailed:
		s.recordWebhook(ctx, evt.Type, "logged")
		log.Warn().
			Str("event_id", evt.ID).
			Str("payment_intent", evt.PaymentIntentID).
			Str("order_id", evt.Metadata["orderId"]).
			Msg("payment failed")
	default:
		s.recordWebhook(ctx, evt.Type, "ignored")
		log.Debug().Str("event_id", evt.ID).Str("type", evt.Type).Msg("unhandled webhook event")
	}

	// recorded only after handling; MarkPaid tolerates a racing redelivery
	if _, err := s.cache.SetNX(ctx, dedupKey, []byte(evt.Type), webhookDedupTTL); err != nil {
		log.Warn().Err(err).Str("event_id", evt.ID).Msg("failed to record webhook event")
	}
	return nil
}

// seen reports whether the event was already handled. An unavailable cache
// counts as unseen.
func (s *PaymentService) seen(ctx context.Context, key string) bool {
	_, err := s.cache.Get(ctx, key)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Str("key", key).Msg("webhook dedup unavailable")
	}
	return false
}

// paymentSucceeded applies a succeeded payment and reports whether the event
// is done with. A failed apply is left unrecorded so a redelivery retries it.
func (s *PaymentService) paymentSucceeded(ctx context.Context, evt *payment.Event) bool {
	orderID := evt.Metadata["orderId"]
	if orderID == "" {
		s.recordWebhook(ctx, evt.Type, "error")
		log.Warn().Str("event_id", evt.ID).Msg("payment succeeded without orderId metadata")
		return true
	}

	_, err := s.orderService.MarkPaid(ctx, orderID, models.PaymentResult{
		ID:         evt.PaymentIntentID,
		Status:     evt.Status,
		UpdateTime: evt.Created.Format(time.RFC3339),
	})
	if err != nil {
		s.recordWebhook(ctx, evt.Type, "error")
		log.Error().Err(err).Str("event_id", evt.ID).Str("order_id", orderID).Msg("failed to mark order paid")
		return false
	}
	s.recordWebhook(ctx, evt.Type, "applied")
	return true
}

func (s *PaymentService) recordWebhook(ctx context.Context, eventType, outcome string) {
	s.metrics.WebhookEvents.Add(ctx, 1, s.metrics.Attrs(
		attribute.String("event_type", eventType),
		attribute.String("outcome", outcome),
	))
}
