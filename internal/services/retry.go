package services

import (
	"errors"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// maxAttempts bounds read-modify-write retries on version conflicts
const maxAttempts = 3

// retryOnConflict reruns fn while it fails with models.ErrConflict
func retryOnConflict(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = fn(); !errors.Is(err, models.ErrConflict) {
			return err
		}
	}
	return err
}

func now() time.Time {
	return time.Now().UTC()
}
