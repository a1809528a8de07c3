package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bazaar/marketplace-api/internal/core/domain"
	"github.com/bazaar/marketplace-api/internal/core/ports"
)

// UserService manages profiles, password changes and account status.
type UserService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	audit  ports.AuditRecorder
	log    zerolog.Logger
	now    func() time.Time
}

func NewUserService(users ports.UserRepository, hasher ports.PasswordHasher, audit ports.AuditRecorder, log zerolog.Logger) *UserService {
	if audit == nil {
		audit = noopAudit{}
	}
	return &UserService{users: users, hasher: hasher, audit: audit, log: log, now: time.Now}
}

var _ ports.UserService = (*UserService)(nil)

func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "get profile")
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of in.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "update profile")
	}

	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "change password")
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	if s.hasher.Verify(newPassword, user.PasswordHash) {
		return domain.NewValidationError("new password must be different from current password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.audit.Record(domain.AuthEvent{
		Type:       domain.EventPasswordChanged,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: user.UpdatedAt,
	})
	return nil
}

// SetActive activates or deactivates an account. Deactivation also ends the
// account's session.
func (s *UserService) SetActive(ctx context.Context, userID string, active bool) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "set active")
	}

	user.IsActive = active
	if !active {
		user.RefreshTokenHash = ""
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("set active: %w", err)
	}

	reason := "activated"
	if !active {
		reason = "deactivated"
	}
	s.audit.Record(domain.AuthEvent{
		Type:       domain.EventStatusChanged,
		UserID:     user.ID,
		Email:      user.Email,
		Reason:     reason,
		OccurredAt: user.UpdatedAt,
	})
	s.log.Info().Str("user_id", user.ID).Bool("active", active).Msg("account status changed")
	return user, nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
