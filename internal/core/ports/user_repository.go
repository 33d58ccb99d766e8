package ports

import (
	"context"

	"github.com/formsdesk/forms-api/internal/core/domain"
)

// UserRepository is the credential store.
//
// Lookups return domain.ErrUserNotFound when no record matches. Create returns
// domain.ErrUserExists when the username is already taken; the store's unique
// constraint is authoritative for that decision.
type UserRepository interface {
	// FindByUsername returns the full record, password hash included.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByID returns the record without its password hash.
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// Create assigns the ID and persists the record.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
