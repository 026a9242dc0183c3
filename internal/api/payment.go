package api

import (
	"io"
	"net/http"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// CreatePaymentIntentHandler handles POST /api/payment/create-payment-intent
func (a *App) CreatePaymentIntentHandler(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	intent, err := a.paymentService.CreatePaymentIntent(r.Context(), req.OrderID, identity(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success":         true,
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.PaymentIntentID,
		"amount":          intent.Amount,
		"currency":        intent.Currency,
	})
}

// WebhookHandler handles POST /api/payment/webhook. The body is read raw so
// the processor signature can be checked against the exact bytes sent.
func (a *App) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeError(w, r, models.InvalidInput("unreadable webhook body"))
		return
	}
	if err := a.paymentService.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"received": true})
}

// PaymentConfigHandler handles GET /api/payment/config
func (a *App) PaymentConfigHandler(w http.ResponseWriter, r *http.Request) {
	cfg := a.paymentService.Config()
	writeJSON(w, http.StatusOK, envelope{
		"success":        true,
		"publishableKey": cfg.PublishableKey,
		"currency":       cfg.Currency,
	})
}
