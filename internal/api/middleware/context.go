package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/formsdesk/forms-api/internal/core/domain"
)

const (
	identityKey   = "identity"
	sessionKey    = "session"
	authMethodKey = "auth_method"
)

// IdentityFrom returns the identity Identify stored on c, or nil.
func IdentityFrom(c echo.Context) *domain.Identity {
	identity, _ := c.Get(identityKey).(*domain.Identity)
	return identity
}

// SessionFrom returns the session that authenticated the request, or nil when
// the request was anonymous or used a bearer token.
func SessionFrom(c echo.Context) *domain.Session {
	session, _ := c.Get(sessionKey).(*domain.Session)
	return session
}

// MethodFrom returns how the request was authenticated.
func MethodFrom(c echo.Context) AuthMode {
	mode, _ := c.Get(authMethodKey).(AuthMode)
	return mode
}
