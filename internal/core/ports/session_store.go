package ports

import (
	"context"
	"time"
)

// SessionStore is an expiring key-value store for serialized sessions.
// Get reports a missing or expired key as (nil, false, nil).
type SessionStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
}
