// Package payment adapts the hosted payment processor.
package payment

import (
	"context"
	"time"
)

// Event types the storefront reacts to
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// IntentRequest asks the processor to prepare a payment
type IntentRequest struct {
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

// Intent is the processor's handle for a pending payment
type Intent struct {
	ID           string
	ClientSecret string
}

// Event is a verified webhook notification
type Event struct {
	ID              string
	Type            string
	PaymentIntentID string
	Status          string
	Metadata        map[string]string
	Created         time.Time
}

// Processor is the outbound payment collaborator
type Processor interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	// ConstructEvent verifies signature against the raw payload and parses it.
	ConstructEvent(payload []byte, signature string) (*Event, error)
}
