package ports

import (
	"context"

	"github.com/bazaar/marketplace-api/internal/core/domain"
)

// UserRepository is the credential store. Each method is a single-document
// operation; implementations must honour ctx cancellation.
type UserRepository interface {
	// FindByEmail looks up a user by normalised email.
	// Returns domain.ErrUserNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound when absent.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create assigns the ID and persists the user. A taken email yields
	// domain.ErrDuplicateEmail.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update overwrites the mutable fields of an existing user.
	Update(ctx context.Context, user *domain.User) error
}
