package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/SigNoz/storefront-go-app/internal/middleware"
	"github.com/SigNoz/storefront-go-app/internal/models"
)

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// ok writes {success:true, key:value}
func ok(w http.ResponseWriter, status int, key string, value any) {
	writeJSON(w, status, envelope{"success": true, key: value})
}

// statusFor maps a service error onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrAlreadyReviewed),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrInvalidSignature):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err and writes {success:false, message}. Internal errors
// are logged and their detail is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.RequestID(r.Context())).
			Msg("request failed")
		message = "internal server error"
	}
	writeJSON(w, status, envelope{"success": false, "message": message})
}

// decodeJSON reads a JSON body into dst
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return models.InvalidInput("invalid request body: %s", strings.TrimPrefix(err.Error(), "json: "))
	}
	return nil
}

// identity returns the caller; routes behind RequireAuth always have one
func identity(r *http.Request) models.Identity {
	who, _ := middleware.IdentityFrom(r.Context())
	return who
}
