package domain

import (
	"slices"
	"time"

	"github.com/hashicorp/go-set/v3"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// DefaultRoles is the role set assigned to every self-registered account.
func DefaultRoles() []string {
	return []string{RoleUser}
}

// User is the stored credential record. PasswordHash only leaves the
// repository through FindByUsername, which is what the authenticator needs.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the sanitized view of u.
func (u *User) Identity() *Identity {
	if u == nil {
		return nil
	}
	return &Identity{
		ID:        u.ID,
		Username:  u.Username,
		Roles:     slices.Clone(u.Roles),
		CreatedAt: u.CreatedAt,
	}
}

// Identity is the authenticated principal handed around after login. It never
// carries a password hash.
type Identity struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleSet returns the identity's roles as a set.
func (id *Identity) RoleSet() *set.Set[string] {
	if id == nil {
		return set.New[string](0)
	}
	return set.From(id.Roles)
}

// HasRole reports whether the identity carries role.
func (id *Identity) HasRole(role string) bool {
	return id.RoleSet().Contains(role)
}

// RoleRequirement is the set of roles a route accepts. A caller needs any one
// of them; an empty requirement accepts every caller.
type RoleRequirement []string

// Requires builds a RoleRequirement from roles.
func Requires(roles ...string) RoleRequirement {
	return RoleRequirement(roles)
}

// Empty reports whether the requirement accepts any caller.
func (r RoleRequirement) Empty() bool {
	return len(r) == 0
}
