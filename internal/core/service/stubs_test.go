package service

import (
	"context"
	"sync"
	"time"

	"github.com/formsdesk/forms-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User

	findErr   error // if set, lookups return this error
	blindFind bool  // FindByUsername never sees existing users (lost check-then-insert race)
	findByID  int   // number of FindByID calls

	// if set, FindByID blocks until the channel is closed or its ctx ends
	findByIDGate chan struct{}
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.users[stored.Username] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.blindFind {
		return nil, domain.ErrUserNotFound
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	r.findByID++
	gate := r.findByIDGate
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.ID == id {
			clone := cloneUser(u)
			clone.PasswordHash = ""
			return clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) count(username string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, u := range r.users {
		if u.Username == username {
			n++
		}
	}
	return n
}

func (r *stubUserRepo) remove(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, username)
}

func (r *stubUserRepo) setRoles(username string, roles ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[username].Roles = roles
}

// ---------------------------------------------------------------------------
// In-memory session store driven by a fake clock
// ---------------------------------------------------------------------------

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sessionEntry struct {
	value   []byte
	expires time.Time
}

type stubSessionStore struct {
	mu      sync.Mutex
	clock   *fakeClock
	entries map[string]sessionEntry
	err     error
	ttls    []time.Duration
}

func newStubSessionStore(clock *fakeClock) *stubSessionStore {
	return &stubSessionStore{clock: clock, entries: make(map[string]sessionEntry)}
}

func (s *stubSessionStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.ttls = append(s.ttls, ttl)
	s.entries[key] = sessionEntry{value: append([]byte(nil), value...), expires: s.clock.Now().Add(ttl)}
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, false, s.err
	}
	e, ok := s.entries[key]
	if !ok || !s.clock.Now().Before(e.expires) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *stubSessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	delete(s.entries, key)
	return nil
}

func (s *stubSessionStore) put(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = sessionEntry{value: value, expires: s.clock.Now().Add(ttl)}
}

func (s *stubSessionStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}
