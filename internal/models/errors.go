package models

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by services, stores and the API layer.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("not authorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyReviewed   = errors.New("product already reviewed")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrInvalidState      = errors.New("invalid state")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrConflict          = errors.New("conflict")

	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrCartNotFound     = fmt.Errorf("cart %w", ErrNotFound)
	ErrItemNotFound     = fmt.Errorf("item %w in cart", ErrNotFound)
)

// InvalidInput wraps ErrInvalidInput with a field-level message
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
