package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/bazaar/marketplace-api/internal/api/metrics"
	"github.com/bazaar/marketplace-api/internal/core/domain"
	"github.com/bazaar/marketplace-api/internal/core/ports"
)

// Authorize enforces role-based access control. It must run after
// Authenticate; a request without a principal is rejected as unauthenticated.
func Authorize(guard ports.SessionGuard, allowed domain.RoleSet) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var principal *domain.Principal
			if p, ok := PrincipalFrom(c); ok {
				principal = &p
			}

			if err := guard.Authorize(principal, allowed); err != nil {
				metrics.GuardRejectionsTotal.WithLabelValues(domain.Reason(err)).Inc()
				return err
			}
			return next(c)
		}
	}
}
