package ports

import (
	"context"

	"github.com/shoenig/go-conceal"

	"github.com/formsdesk/forms-api/internal/core/domain"
)

// AuthService verifies credentials in either of their two forms and mints
// bearer tokens.
type AuthService interface {
	Register(ctx context.Context, username string, password *conceal.Text) (*domain.Identity, error)
	Authenticate(ctx context.Context, username string, password *conceal.Text) (*domain.Identity, error)
	AuthenticateToken(ctx context.Context, token string) (*domain.Identity, error)
	IssueToken(identity *domain.Identity) (string, error)
}

// SessionService owns the session lifecycle.
type SessionService interface {
	Create(ctx context.Context, identity *domain.Identity) (*domain.Session, error)
	Resolve(ctx context.Context, token string) (*domain.Session, error)
	Destroy(ctx context.Context, token string) error
}

// IdentitySource rehydrates a full identity from a stored user id.
type IdentitySource interface {
	Load(ctx context.Context, id int64) (*domain.Identity, error)
}
