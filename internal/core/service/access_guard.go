package service

import "github.com/formsdesk/forms-api/internal/core/domain"

// AccessGuard decides whether an already-resolved identity satisfies a
// route's role requirement.
type AccessGuard struct{}

func NewAccessGuard() *AccessGuard {
	return &AccessGuard{}
}

// Authorize allows when required is empty, or when identity holds at least
// one of the required roles. A nil identity only passes an empty requirement.
func (g *AccessGuard) Authorize(identity *domain.Identity, required domain.RoleRequirement) bool {
	if required.Empty() {
		return true
	}
	if identity == nil {
		return false
	}

	roles := identity.RoleSet()
	for _, role := range required {
		if roles.Contains(role) {
			return true
		}
	}
	return false
}
