package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bazaar/marketplace-api/internal/core/domain"
	"github.com/bazaar/marketplace-api/internal/core/ports"
)

// Guard authenticates access tokens into principals and authorizes them
// against role sets.
type Guard struct {
	tokens  ports.TokenService
	users   ports.UserRepository
	revoker ports.TokenRevoker
	log     zerolog.Logger
}

// NewGuard returns a session guard. revoker may be nil.
func NewGuard(tokens ports.TokenService, users ports.UserRepository, revoker ports.TokenRevoker, log zerolog.Logger) *Guard {
	return &Guard{tokens: tokens, users: users, revoker: revoker, log: log}
}

var _ ports.SessionGuard = (*Guard)(nil)

// Authenticate verifies the access token and loads the account behind it.
// Any token problem is reported as domain.ErrUnauthenticated wrapping the
// precise cause.
func (g *Guard) Authenticate(ctx context.Context, accessToken string) (domain.Principal, error) {
	claims, err := g.tokens.VerifyAccess(accessToken)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	if g.revoker != nil && claims.ID != "" {
		revoked, err := g.revoker.IsRevoked(ctx, claims.ID)
		switch {
		case err != nil:
			g.log.Warn().Err(err).Str("user_id", claims.UserID).Msg("revocation check failed, accepting token")
		case revoked:
			return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, domain.ErrTokenRevoked)
		}
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Principal{}, domain.ErrUserNotFound
		}
		return domain.Principal{}, fmt.Errorf("authenticate: find user: %w", err)
	}
	if !user.IsActive {
		return domain.Principal{}, domain.ErrAccountDeactivated
	}

	p := user.Principal()
	p.TokenID = claims.ID
	p.ExpiresAt = claims.ExpiresAt
	return p, nil
}

// Authorize checks that an authenticated principal holds one of the allowed roles.
func (g *Guard) Authorize(principal *domain.Principal, allowed domain.RoleSet) error {
	if principal == nil || principal.UserID == "" {
		return domain.ErrUnauthenticated
	}
	if !allowed.Allows(principal.Role) {
		return domain.ErrForbidden
	}
	return nil
}
