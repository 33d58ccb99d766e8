package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/formsdesk/forms-api/internal/api/metrics"
	"github.com/formsdesk/forms-api/internal/core/domain"
	"github.com/formsdesk/forms-api/internal/core/ports"
)

// AuthMode is a bit set of the credential sources a route accepts.
type AuthMode uint8

const (
	AuthSession AuthMode = 1 << iota
	AuthBearer

	AuthNone AuthMode = 0
	AuthAny           = AuthSession | AuthBearer
)

func (m AuthMode) String() string {
	switch m {
	case AuthNone:
		return "none"
	case AuthSession:
		return "session"
	case AuthBearer:
		return "bearer"
	case AuthAny:
		return "session|bearer"
	default:
		return "unknown"
	}
}

type IdentifyConfig struct {
	Sessions   ports.SessionService
	Auth       ports.AuthService
	Identities ports.IdentitySource
	CookieName string
	Log        zerolog.Logger
}

// Identify resolves the caller from the sources mode allows: the session
// cookie first, then an Authorization bearer token. A missing or stale cookie
// leaves the request anonymous; a bearer token that is present but fails
// verification rejects the request.
func Identify(cfg IdentifyConfig, mode AuthMode) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if mode&AuthSession != 0 {
				ok, err := identifySession(c, cfg)
				if err != nil {
					return err
				}
				if ok {
					return next(c)
				}
			}

			if mode&AuthBearer != 0 {
				if err := identifyBearer(c, cfg); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}

func identifySession(c echo.Context, cfg IdentifyConfig) (bool, error) {
	cookie, err := c.Cookie(cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return false, nil
	}

	ctx := c.Request().Context()
	session, err := cfg.Sessions.Resolve(ctx, cookie.Value)
	if err != nil {
		return false, err
	}
	if session == nil {
		return false, nil
	}

	identity, err := cfg.Identities.Load(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return false, err
		}
		cfg.Log.Info().Int64("user_id", session.UserID).Msg("session references a deleted user")
		if err := cfg.Sessions.Destroy(ctx, cookie.Value); err != nil {
			cfg.Log.Warn().Err(err).Msg("failed to drop orphaned session")
		}
		return false, nil
	}

	c.Set(identityKey, identity)
	c.Set(sessionKey, session)
	c.Set(authMethodKey, AuthSession)
	return true, nil
}

func identifyBearer(c echo.Context, cfg IdentifyConfig) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	identity, err := cfg.Auth.AuthenticateToken(c.Request().Context(), strings.TrimSpace(parts[1]))
	if err != nil {
		return err
	}

	c.Set(identityKey, identity)
	c.Set(authMethodKey, AuthBearer)
	return nil
}

// RequireIdentity rejects anonymous requests with domain.ErrUnauthenticated.
func RequireIdentity(route string, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IdentityFrom(c) == nil {
				m.AuthorizationDeniedTotal.WithLabelValues(route, metrics.ReasonUnauthenticated).Inc()
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}
