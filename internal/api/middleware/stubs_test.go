package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/shoenig/go-conceal"

	"github.com/formsdesk/forms-api/internal/core/domain"
)

type stubSessions struct {
	mu         sync.Mutex
	sessions   map[string]*domain.Session
	resolveErr error
	destroyed  []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{sessions: map[string]*domain.Session{}}
}

func (s *stubSessions) Create(_ context.Context, identity *domain.Identity) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := &domain.Session{Token: "tok-" + identity.Username, UserID: identity.ID, Username: identity.Username}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *stubSessions) Resolve(_ context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.sessions[token], nil
}

func (s *stubSessions) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	s.destroyed = append(s.destroyed, token)
	return nil
}

type stubAuth struct {
	tokens map[string]*domain.Identity
	err    error
}

func (s *stubAuth) Register(context.Context, string, *conceal.Text) (*domain.Identity, error) {
	panic("not used")
}

func (s *stubAuth) Authenticate(context.Context, string, *conceal.Text) (*domain.Identity, error) {
	panic("not used")
}

func (s *stubAuth) AuthenticateToken(_ context.Context, token string) (*domain.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	identity, ok := s.tokens[token]
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return identity, nil
}

func (s *stubAuth) IssueToken(*domain.Identity) (string, error) {
	panic("not used")
}

type stubIdentities map[int64]*domain.Identity

func (s stubIdentities) Load(_ context.Context, id int64) (*domain.Identity, error) {
	identity, ok := s[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return identity, nil
}

var (
	alice = &domain.Identity{ID: 1, Username: "alice", Roles: []string{domain.RoleUser}}
	root  = &domain.Identity{ID: 2, Username: "root", Roles: []string{domain.RoleAdmin}}
)

func newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}
