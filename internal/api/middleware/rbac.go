package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/formsdesk/forms-api/internal/api/metrics"
	"github.com/formsdesk/forms-api/internal/core/domain"
)

// Authorizer decides whether an identity satisfies a role requirement.
type Authorizer interface {
	Authorize(identity *domain.Identity, required domain.RoleRequirement) bool
}

// RequireRoles enforces role-based access control for one route. It runs
// after Identify and never resolves the identity itself.
func RequireRoles(guard Authorizer, required domain.RoleRequirement, route string, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFrom(c)
			if guard.Authorize(identity, required) {
				return next(c)
			}

			if identity == nil {
				m.AuthorizationDeniedTotal.WithLabelValues(route, metrics.ReasonUnauthenticated).Inc()
				return domain.ErrUnauthenticated
			}
			m.AuthorizationDeniedTotal.WithLabelValues(route, metrics.ReasonForbidden).Inc()
			return domain.ErrForbidden
		}
	}
}
