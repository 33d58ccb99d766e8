package service

import (
	"context"
	"fmt"
	"time"

	"github.com/formsdesk/forms-api/internal/core/domain"
)

const defaultStoreTimeout = 3 * time.Second

// withStoreTimeout bounds a single store round trip.
func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}

// storeFailure tags err as a transient store failure while keeping the cause
// available to errors.Is / errors.As for logging.
func storeFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
