package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/shoenig/go-conceal"

	"github.com/formsdesk/forms-api/internal/core/domain"
	"github.com/formsdesk/forms-api/internal/core/ports"
)

const defaultSessionTTL = time.Hour

// SessionManager creates, resolves and destroys server-side sessions.
// Expiry is fixed at creation; lookups never extend it.
type SessionManager struct {
	store        ports.SessionStore
	ttl          time.Duration
	storeTimeout time.Duration
	now          func() time.Time
	log          zerolog.Logger
}

func NewSessionManager(store ports.SessionStore, ttl, storeTimeout time.Duration, log zerolog.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionManager{
		store:        store,
		ttl:          ttl,
		storeTimeout: storeTimeout,
		now:          time.Now,
		log:          log,
	}
}

// TTL is the lifetime given to new sessions.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Create opens a session for identity under a fresh random token.
func (m *SessionManager) Create(ctx context.Context, identity *domain.Identity) (*domain.Session, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}

	now := m.now().UTC()
	sess := &domain.Session{
		Token:     conceal.UUIDv4().Unveil(),
		UserID:    identity.ID,
		Username:  identity.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}

	sctx, cancel := withStoreTimeout(ctx, m.storeTimeout)
	defer cancel()

	if err := m.store.Set(sctx, sess.Token, data, m.ttl); err != nil {
		return nil, storeFailure("create session", err)
	}

	m.log.Debug().Int64("user_id", sess.UserID).Time("expires_at", sess.ExpiresAt).Msg("session created")
	return sess, nil
}

// Resolve returns the live session behind token, or nil when there is none.
// A missing, unreadable or expired session is not an error.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}

	sctx, cancel := withStoreTimeout(ctx, m.storeTimeout)
	defer cancel()

	data, ok, err := m.store.Get(sctx, token)
	if err != nil {
		return nil, storeFailure("resolve session", err)
	}
	if !ok {
		return nil, nil
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		m.log.Warn().Err(err).Msg("discarding unreadable session")
		m.evict(sctx, token)
		return nil, nil
	}
	if sess.Expired(m.now()) {
		m.evict(sctx, token)
		return nil, nil
	}

	sess.Token = token
	return &sess, nil
}

// Destroy removes the session. Destroying an unknown token succeeds.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	sctx, cancel := withStoreTimeout(ctx, m.storeTimeout)
	defer cancel()

	if err := m.store.Delete(sctx, token); err != nil {
		return storeFailure("destroy session", err)
	}
	return nil
}

func (m *SessionManager) evict(ctx context.Context, token string) {
	if err := m.store.Delete(ctx, token); err != nil {
		m.log.Warn().Err(err).Msg("failed to evict stale session")
	}
}
