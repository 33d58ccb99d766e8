package service

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/formsdesk/forms-api/internal/core/domain"
	"github.com/formsdesk/forms-api/internal/core/ports"
)

// IdentityLoader turns a stored user id back into an Identity. Sessions and
// bearer tokens only carry the id, so every authenticated request goes
// through here. Concurrent loads of the same id share one store round trip.
type IdentityLoader struct {
	repo         ports.UserRepository
	storeTimeout time.Duration
	group        singleflight.Group
}

func NewIdentityLoader(repo ports.UserRepository, storeTimeout time.Duration) *IdentityLoader {
	return &IdentityLoader{repo: repo, storeTimeout: storeTimeout}
}

// Load returns domain.ErrUserNotFound when the account no longer exists.
// The shared lookup runs detached from any one caller, so a caller that goes
// away only abandons its own wait.
func (l *IdentityLoader) Load(ctx context.Context, id int64) (*domain.Identity, error) {
	flight := context.WithoutCancel(ctx)
	ch := l.group.DoChan(strconv.FormatInt(id, 10), func() (interface{}, error) {
		sctx, cancel := withStoreTimeout(flight, l.storeTimeout)
		defer cancel()

		user, err := l.repo.FindByID(sctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, err
			}
			return nil, storeFailure("load identity", err)
		}
		return user.Identity(), nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	// callers sharing a flight must not share the slice
	shared := res.Val.(*domain.Identity)
	identity := *shared
	identity.Roles = slices.Clone(shared.Roles)
	return &identity, nil
}
