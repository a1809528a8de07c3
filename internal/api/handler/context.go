package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bazaar/marketplace-api/internal/api/middleware"
	"github.com/bazaar/marketplace-api/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Authenticate
// middleware. Its absence means the route was wired without the guard.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return p, nil
}
