package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bazaar/marketplace-api/internal/api/middleware"
	"github.com/bazaar/marketplace-api/internal/core/domain"
	"github.com/bazaar/marketplace-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	logoutFn   func(ctx context.Context, p domain.Principal) error
	refreshFn  func(ctx context.Context, token string) (string, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, p domain.Principal) error {
	return s.logoutFn(ctx, p)
}

func (s *stubAuthService) RefreshAccessToken(ctx context.Context, token string) (string, error) {
	return s.refreshFn(ctx, token)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withPrincipal(c echo.Context, p domain.Principal) {
	c.Set(middleware.PrincipalKey, p)
}

func sampleUser() *domain.User {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.User{
		ID:               "u-1",
		FirstName:        "Alice",
		LastName:         "Smith",
		Email:            "alice@example.com",
		PasswordHash:     "$2a$10$secret-hash",
		RefreshTokenHash: "$2a$10$refresh-hash",
		Role:             domain.RoleSeller,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func validationFields(t *testing.T, err error) []string {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return ve.Fields
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Email != "alice@example.com" || in.Role != "seller" || in.FirstName != "Alice" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{User: sampleUser(), AccessToken: "access", RefreshToken: "refresh"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/register",
		`{"firstName":"Alice","lastName":"Smith","email":"alice@example.com","password":"password123","role":"seller"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	if resp["success"] != true {
		t.Fatalf("expected success=true: %+v", resp)
	}
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data in response")
	}
	if data["accessToken"] != "access" || data["refreshToken"] != "refresh" {
		t.Fatalf("unexpected tokens: %+v", data)
	}
	user := data["user"].(map[string]any)
	if user["userId"] != "u-1" || user["role"] != "seller" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("response leaks a hash: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_ValidationStopsBeforeService(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/auth/register",
		`{"firstName":"A","lastName":"Smith","email":"not-an-email","password":"short","role":"boss","phoneNumber":"12ab"}`)
	fields := validationFields(t, handler.Register(c))

	want := []string{
		"firstName must be at least 2 characters",
		"email must be a valid email",
		"password must be at least 8 characters",
		"role must be one of: customer seller admin",
		"phoneNumber must be 10 to 15 digits",
	}
	if strings.Join(fields, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected fields:\n got %v\nwant %v", fields, want)
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/auth/register",
		`{"firstName":"Alice","lastName":"Smith","email":"alice@example.com","password":"password123"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthHandler_Register_MalformedJSON(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := jsonContext(e, http.MethodPost, "/auth/register", `{"firstName":`)
	var he *echo.HTTPError
	if err := handler.Register(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "alice@example.com" || password != "password123" {
				t.Fatalf("unexpected credentials %s/%s", email, password)
			}
			return &ports.AuthResult{User: sampleUser(), AccessToken: "a", RefreshToken: "r"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"password123"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"wrong"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := jsonContext(e, http.MethodPost, "/auth/login", `{}`)
	fields := validationFields(t, handler.Login(c))
	if len(fields) != 2 {
		t.Fatalf("expected 2 field errors, got %v", fields)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	var got domain.Principal
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, p domain.Principal) error {
			got = p
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/logout", "")
	withPrincipal(c, domain.Principal{UserID: "u-1", Role: domain.RoleCustomer, TokenID: "jti"})
	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.UserID != "u-1" || got.TokenID != "jti" {
		t.Fatalf("principal not passed through: %+v", got)
	}
}

func TestAuthHandler_Logout_WithoutPrincipal(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := jsonContext(e, http.MethodPost, "/auth/logout", "")
	var he *echo.HTTPError
	if err := handler.Logout(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, token string) (string, error) {
			if token != "refresh-token" {
				return "", domain.ErrTokenInvalid
			}
			return "new-access", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/refresh-token", `{"refreshToken":"refresh-token"}`)
	if err := handler.RefreshToken(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeResponse(t, rec)["data"].(map[string]any)
	if data["accessToken"] != "new-access" {
		t.Fatalf("unexpected payload: %+v", data)
	}

	c, _ = jsonContext(e, http.MethodPost, "/auth/refresh-token", `{"refreshToken":"other"}`)
	if err := handler.RefreshToken(c); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	c, _ = jsonContext(e, http.MethodPost, "/auth/refresh-token", `{}`)
	if fields := validationFields(t, handler.RefreshToken(c)); fields[0] != "refreshToken is required" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}
