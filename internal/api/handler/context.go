package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/formsdesk/forms-api/internal/api/middleware"
	"github.com/formsdesk/forms-api/internal/core/domain"
)

// currentIdentity fails fast when a handler mounted behind Identify finds no
// caller, which means the route table wired it without RequireIdentity.
func currentIdentity(c echo.Context) (*domain.Identity, error) {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}
	return identity, nil
}
