package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/formsdesk/forms-api/internal/core/domain"
)

func newSessionMgr(store *stubSessionStore, clock *fakeClock) *SessionManager {
	m := NewSessionManager(store, time.Hour, time.Second, zerolog.Nop())
	m.now = clock.Now
	return m
}

func TestSessionManager_CreateResolveDestroy(t *testing.T) {
	clock := newFakeClock()
	store := newStubSessionStore(clock)
	mgr := newSessionMgr(store, clock)
	ctx := context.Background()

	alice := &domain.Identity{ID: 1, Username: "alice", Roles: []string{domain.RoleUser}}
	sess, err := mgr.Create(ctx, alice)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.Token == "" {
		t.Fatalf("expected a token")
	}
	if len(store.ttls) != 1 || store.ttls[0] != time.Hour {
		t.Fatalf("expected a 1h TTL on the store entry, got %v", store.ttls)
	}

	got, err := mgr.Resolve(ctx, sess.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || got.UserID != 1 || got.Username != "alice" || got.Token != sess.Token {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := mgr.Destroy(ctx, sess.Token); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	got, err = mgr.Resolve(ctx, sess.Token)
	if err != nil || got != nil {
		t.Fatalf("expected no session after destroy, got %+v (%v)", got, err)
	}

	// destroying twice is fine
	if err := mgr.Destroy(ctx, sess.Token); err != nil {
		t.Fatalf("second destroy: %v", err)
	}
}

func TestSessionManager_StoresNoSecrets(t *testing.T) {
	clock := newFakeClock()
	store := newStubSessionStore(clock)
	mgr := newSessionMgr(store, clock)

	sess, _ := mgr.Create(context.Background(), &domain.Identity{ID: 3, Username: "carol"})
	raw, ok, _ := store.Get(context.Background(), sess.Token)
	if !ok {
		t.Fatalf("expected stored session")
	}
	if strings.Contains(string(raw), sess.Token) || strings.Contains(string(raw), "password") {
		t.Fatalf("stored session leaks secrets: %s", raw)
	}
}

func TestSessionManager_TokensAreUnique(t *testing.T) {
	clock := newFakeClock()
	mgr := newSessionMgr(newStubSessionStore(clock), clock)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sess, err := mgr.Create(context.Background(), &domain.Identity{ID: 1})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[sess.Token] {
			t.Fatalf("duplicate token %q", sess.Token)
		}
		seen[sess.Token] = true
	}
}

func TestSessionManager_ExpiresAfterTTL(t *testing.T) {
	clock := newFakeClock()
	store := newStubSessionStore(clock)
	mgr := newSessionMgr(store, clock)
	ctx := context.Background()

	sess, _ := mgr.Create(ctx, &domain.Identity{ID: 1, Username: "alice"})

	clock.Advance(59 * time.Minute)
	if got, _ := mgr.Resolve(ctx, sess.Token); got == nil {
		t.Fatalf("expected session to be alive before TTL")
	}

	clock.Advance(2 * time.Minute)
	got, err := mgr.Resolve(ctx, sess.Token)
	if err != nil || got != nil {
		t.Fatalf("expected no session after TTL, got %+v (%v)", got, err)
	}
}

func TestSessionManager_LazyEvictsExpiredRecord(t *testing.T) {
	clock := newFakeClock()
	store := newStubSessionStore(clock)
	mgr := newSessionMgr(store, clock)
	ctx := context.Background()

	// the store still holds it but the record's own expiry has passed
	expired := `{"user_id":1,"username":"alice","created_at":"2025-12-31T10:00:00Z","expires_at":"2025-12-31T11:00:00Z"}`
	store.put("stale", []byte(expired), 24*time.Hour)

	got, err := mgr.Resolve(ctx, "stale")
	if err != nil || got != nil {
		t.Fatalf("expected no session, got %+v (%v)", got, err)
	}
	if store.has("stale") {
		t.Fatalf("expected stale record to be evicted")
	}
}

func TestSessionManager_UnknownAndGarbage(t *testing.T) {
	clock := newFakeClock()
	store := newStubSessionStore(clock)
	mgr := newSessionMgr(store, clock)
	ctx := context.Background()

	for _, token := range []string{"", "does-not-exist"} {
		got, err := mgr.Resolve(ctx, token)
		if err != nil || got != nil {
			t.Fatalf("token %q: expected (nil, nil), got %+v (%v)", token, got, err)
		}
	}

	store.put("garbage", []byte("{not json"), time.Hour)
	got, err := mgr.Resolve(ctx, "garbage")
	if err != nil || got != nil {
		t.Fatalf("expected garbage session to resolve to nothing, got %+v (%v)", got, err)
	}
	if store.has("garbage") {
		t.Fatalf("expected garbage record to be evicted")
	}
}

func TestSessionManager_StoreFailure(t *testing.T) {
	clock := newFakeClock()
	store := newStubSessionStore(clock)
	store.err = errors.New("i/o timeout")
	mgr := newSessionMgr(store, clock)
	ctx := context.Background()

	if _, err := mgr.Create(ctx, &domain.Identity{ID: 1}); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("create: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := mgr.Resolve(ctx, "tok"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("resolve: expected ErrStoreUnavailable, got %v", err)
	}
	if err := mgr.Destroy(ctx, "tok"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("destroy: expected ErrStoreUnavailable, got %v", err)
	}
}

func TestSessionManager_CreateRequiresIdentity(t *testing.T) {
	clock := newFakeClock()
	mgr := newSessionMgr(newStubSessionStore(clock), clock)

	if _, err := mgr.Create(context.Background(), nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
