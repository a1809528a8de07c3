package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bazaar/marketplace-api/internal/core/domain"
	"github.com/bazaar/marketplace-api/internal/core/ports"
)

// AuthService implements registration, login, logout and access-token refresh.
// Session state lives in the user's RefreshTokenHash: empty means logged out.
// Only one refresh token is valid per account at a time; a new login or
// registration replaces the previous one.
type AuthService struct {
	users   ports.UserRepository
	hasher  ports.PasswordHasher
	tokens  ports.TokenService
	revoker ports.TokenRevoker
	audit   ports.AuditRecorder
	log     zerolog.Logger
	now     func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService wires the orchestrator. revoker and audit may be nil.
func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	revoker ports.TokenRevoker,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *AuthService {
	if audit == nil {
		audit = noopAudit{}
	}
	return &AuthService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		revoker: revoker,
		audit:   audit,
		log:     log,
		now:     time.Now,
	}
}

var _ ports.AuthService = (*AuthService)(nil)

// Register creates a customer/seller/admin account and opens its first session.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.NewValidationError("email and password are required")
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, domain.NewValidationError("role must be one of: customer seller admin")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	result, err := s.openSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.record(domain.EventRegister, user.ID, user.Email, "")
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return result, nil
}

// Login verifies credentials and opens a new session, revoking any previous
// refresh token. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Burn a comparable amount of CPU so response time does not
			// reveal whether the email exists.
			s.hasher.Verify(password, s.dummyDigest())
			s.record(domain.EventLoginFailed, "", email, "unknown_email")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: lookup email: %w", err)
	}

	if !user.IsActive {
		s.record(domain.EventLoginFailed, user.ID, email, "deactivated")
		return nil, domain.ErrAccountDeactivated
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.record(domain.EventLoginFailed, user.ID, email, "bad_password")
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.openSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.record(domain.EventLogin, user.ID, user.Email, "")
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return result, nil
}

// Logout clears the stored refresh token hash and revokes the access token
// the principal authenticated with. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, principal domain.Principal) error {
	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("logout: find user: %w", err)
	}

	if user.HasSession() {
		user.RefreshTokenHash = ""
		user.UpdatedAt = s.now().UTC()
		if err := s.users.Update(ctx, user); err != nil {
			return fmt.Errorf("logout: clear refresh token: %w", err)
		}
	}

	if s.revoker != nil && principal.TokenID != "" {
		if err := s.revoker.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to revoke access token")
		}
	}

	s.record(domain.EventLogout, user.ID, user.Email, "")
	s.log.Info().Str("user_id", user.ID).Msg("user logged out")
	return nil
}

// RefreshAccessToken exchanges a refresh token for a new access token. The
// refresh token must match the hash stored for its user; it is not rotated.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", domain.NewValidationError("refreshToken is required")
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.record(domain.EventRefreshFailed, "", "", domain.Reason(err))
		return "", err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("refresh: find user: %w", err)
	}

	if !user.HasSession() || !s.hasher.Verify(refreshToken, user.RefreshTokenHash) {
		s.record(domain.EventRefreshFailed, user.ID, user.Email, "superseded")
		return "", domain.ErrTokenInvalid
	}
	if !user.IsActive {
		s.record(domain.EventRefreshFailed, user.ID, user.Email, "deactivated")
		return "", domain.ErrAccountDeactivated
	}

	access, err := s.tokens.IssueAccess(claimsFor(user))
	if err != nil {
		return "", fmt.Errorf("refresh: issue access token: %w", err)
	}

	s.record(domain.EventRefresh, user.ID, user.Email, "")
	return access, nil
}

// openSession issues a token pair and stores the hash of the refresh token,
// replacing whatever was stored before.
func (s *AuthService) openSession(ctx context.Context, user *domain.User) (*ports.AuthResult, error) {
	claims := claimsFor(user)

	access, err := s.tokens.IssueAccess(claims)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(claims)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	refreshHash, err := s.hasher.Hash(refresh)
	if err != nil {
		return nil, fmt.Errorf("hash refresh token: %w", err)
	}

	user.RefreshTokenHash = refreshHash
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &ports.AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("timing-equaliser")
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare dummy password digest")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func (s *AuthService) record(typ domain.AuthEventType, userID, email, reason string) {
	s.audit.Record(domain.AuthEvent{
		Type:       typ,
		UserID:     userID,
		Email:      email,
		Reason:     reason,
		OccurredAt: s.now().UTC(),
	})
}

func claimsFor(u *domain.User) ports.TokenClaims {
	return ports.TokenClaims{UserID: u.ID, Email: u.Email, Role: u.Role}
}

type noopAudit struct{}

func (noopAudit) Record(domain.AuthEvent) {}
