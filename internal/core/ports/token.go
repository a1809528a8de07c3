package ports

import (
	"context"
	"time"

	"github.com/bazaar/marketplace-api/internal/core/domain"
)

// TokenClaims is the claim set shared by access and refresh tokens.
type TokenClaims struct {
	UserID    string
	Email     string
	Role      domain.Role
	ID        string // jti
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService signs and verifies access and refresh tokens with distinct keys.
// Issue* fill in ID, IssuedAt and ExpiresAt.
type TokenService interface {
	IssueAccess(claims TokenClaims) (string, error)
	IssueRefresh(claims TokenClaims) (string, error)
	// Verify* fail with domain.ErrTokenExpired or domain.ErrTokenInvalid.
	VerifyAccess(token string) (*TokenClaims, error)
	VerifyRefresh(token string) (*TokenClaims, error)
}

// PasswordHasher is a salted one-way hash for passwords and refresh tokens.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify returns false for a mismatch and for a malformed digest.
	Verify(plaintext, digest string) bool
}

// TokenRevoker tracks access tokens revoked before their natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
