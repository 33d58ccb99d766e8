package service

import (
	"sync"

	"github.com/shoenig/go-conceal"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// BcryptHasher hashes and verifies passwords with bcrypt.
type BcryptHasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewBcryptHasher returns a hasher using cost, falling back to
// bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of password.
func (h *BcryptHasher) Hash(password *conceal.Text) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(unveil(password)), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash.
func (h *BcryptHasher) Verify(password *conceal.Text, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(unveil(password))) == nil
}

// VerifyDummy spends the same work as Verify against a throwaway hash, so an
// unknown username costs as much as a wrong password.
func (h *BcryptHasher) VerifyDummy(password *conceal.Text) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(unveil(password)))
}

func unveil(t *conceal.Text) string {
	if t == nil {
		return ""
	}
	return t.Unveil()
}
