package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bazaar/marketplace-api/internal/api/handler"
	"github.com/bazaar/marketplace-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally and hides their detail unless
//     exposeErrors is set.
//   - Renders the shared envelope with success=false.
func NewHTTPErrorHandler(log zerolog.Logger, exposeErrors bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		resp := resolveError(err, log, c, exposeErrors)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(resp.code)
			return
		}
		_ = c.JSON(resp.code, handler.Response{
			Success: false,
			Message: resp.message,
			Error:   resp.detail,
			Errors:  resp.fields,
		})
	}
}

type resolved struct {
	code    int
	message string
	detail  string
	fields  []string
}

func resolveError(err error, log zerolog.Logger, c echo.Context, exposeErrors bool) resolved {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return resolved{code: he.Code, message: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return resolved{code: http.StatusBadRequest, message: "validation failed", fields: ve.Fields}
	}

	// Known domain errors → deterministic HTTP codes. Unauthenticated is
	// checked first so every token failure collapses to one message.
	switch {
	case errors.Is(err, domain.ErrValidation):
		return resolved{code: http.StatusBadRequest, message: err.Error()}
	case errors.Is(err, domain.ErrDuplicateEmail):
		return resolved{code: http.StatusBadRequest, message: domain.ErrDuplicateEmail.Error()}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return resolved{code: http.StatusUnauthorized, message: domain.ErrInvalidCredentials.Error()}
	case errors.Is(err, domain.ErrAccountDeactivated):
		return resolved{code: http.StatusForbidden, message: "account is deactivated"}
	case errors.Is(err, domain.ErrUnauthenticated):
		return resolved{code: http.StatusUnauthorized, message: "not authorized, token failed"}
	case errors.Is(err, domain.ErrTokenExpired):
		return resolved{code: http.StatusUnauthorized, message: "token expired"}
	case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenRevoked):
		return resolved{code: http.StatusUnauthorized, message: "invalid token"}
	case errors.Is(err, domain.ErrUserNotFound):
		return resolved{code: http.StatusNotFound, message: "user not found"}
	case errors.Is(err, domain.ErrForbidden):
		return resolved{code: http.StatusForbidden, message: "access forbidden"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	r := resolved{code: http.StatusInternalServerError, message: "internal server error"}
	if exposeErrors {
		r.detail = err.Error()
	}
	return r
}
