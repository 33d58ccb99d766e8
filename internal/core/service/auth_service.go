package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shoenig/go-conceal"
	"golang.org/x/crypto/bcrypt"

	"github.com/formsdesk/forms-api/internal/core/domain"
	"github.com/formsdesk/forms-api/internal/core/ports"
)

// AuthService implements registration, password login and bearer-token login.
type AuthService struct {
	repo         ports.UserRepository
	hasher       *BcryptHasher
	tokens       *TokenIssuer
	identities   ports.IdentitySource
	storeTimeout time.Duration
	now          func() time.Time
	log          zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	hasher *BcryptHasher,
	tokens *TokenIssuer,
	identities ports.IdentitySource,
	storeTimeout time.Duration,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:         repo,
		hasher:       hasher,
		tokens:       tokens,
		identities:   identities,
		storeTimeout: storeTimeout,
		now:          time.Now,
		log:          log,
	}
}

// Register creates an account with the default role set. A username that is
// already taken yields domain.ErrUserExists, whether the pre-check or the
// store's unique constraint catches it.
func (s *AuthService) Register(ctx context.Context, username string, password *conceal.Text) (*domain.Identity, error) {
	if username == "" || unveil(password) == "" {
		return nil, domain.ErrValidation
	}
	if len(unveil(password)) > MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, MaxPasswordBytes)
	}

	if err := s.ensureUsernameFree(ctx, username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Roles:        domain.DefaultRoles(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	sctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	created, err := s.repo.Create(sctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, storeFailure("register", err)
	}

	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created.Identity(), nil
}

func (s *AuthService) ensureUsernameFree(ctx context.Context, username string) error {
	sctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	_, err := s.repo.FindByUsername(sctx, username)
	switch {
	case err == nil:
		return domain.ErrUserExists
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return storeFailure("register", err)
	}
}

// Authenticate checks a username/password pair. Unknown usernames and wrong
// passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username string, password *conceal.Text) (*domain.Identity, error) {
	if username == "" || unveil(password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	sctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.repo.FindByUsername(sctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, storeFailure("authenticate", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user.Identity(), nil
}

// AuthenticateToken verifies a bearer token and loads the identity it names.
func (s *AuthService) AuthenticateToken(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	identity, err := s.identities.Load(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	return identity, nil
}

// IssueToken mints a bearer token for identity.
func (s *AuthService) IssueToken(identity *domain.Identity) (string, error) {
	return s.tokens.Issue(identity)
}
