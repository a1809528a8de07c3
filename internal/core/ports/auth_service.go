package ports

import (
	"context"

	"github.com/bazaar/marketplace-api/internal/core/domain"
)

// RegisterInput carries the registration payload after boundary validation.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	Role        string // empty means customer
	PhoneNumber string
}

// AuthResult is returned by flows that open a session.
type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// AuthService implements the register / login / logout / refresh flows.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, principal domain.Principal) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

// UpdateProfileInput holds optional profile changes; nil fields are left alone.
type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// UserService covers profile and account administration.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	SetActive(ctx context.Context, userID string, active bool) (*domain.User, error)
}

// SessionGuard authenticates bearer tokens into principals and checks roles.
type SessionGuard interface {
	Authenticate(ctx context.Context, accessToken string) (domain.Principal, error)
	Authorize(principal *domain.Principal, allowed domain.RoleSet) error
}
