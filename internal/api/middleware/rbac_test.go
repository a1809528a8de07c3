package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bazaar/marketplace-api/internal/core/domain"
)

func runAuthorize(t *testing.T, principal *domain.Principal, allowed domain.RoleSet) (bool, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if principal != nil {
		c.Set(PrincipalKey, *principal)
	}

	called := false
	err := Authorize(&stubGuard{}, allowed)(func(echo.Context) error {
		called = true
		return nil
	})(c)
	return called, err
}

func TestAuthorize_AllowedRole(t *testing.T) {
	called, err := runAuthorize(t,
		&domain.Principal{UserID: "u-1", Role: domain.RoleSeller},
		domain.Roles(domain.RoleSeller, domain.RoleAdmin))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthorize_ForbiddenRole(t *testing.T) {
	called, err := runAuthorize(t,
		&domain.Principal{UserID: "u-1", Role: domain.RoleCustomer},
		domain.Roles(domain.RoleAdmin))
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if called {
		t.Fatalf("next must not be called")
	}
}

func TestAuthorize_NoPrincipal(t *testing.T) {
	called, err := runAuthorize(t, nil, domain.Roles(domain.RoleAdmin))
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if called {
		t.Fatalf("next must not be called")
	}
}
