package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaar/marketplace-api/internal/core/domain"
	"github.com/bazaar/marketplace-api/internal/core/ports"
)

func newUserFixture(t *testing.T) (*UserService, *stubUserRepo, *recordingAudit, *domain.User) {
	t.Helper()
	repo := newStubUserRepo()
	hasher := newTestHasher(t)
	audit := &recordingAudit{}

	hash, err := hasher.Hash("password123")
	require.NoError(t, err)
	u, err := repo.Create(context.Background(), &domain.User{
		FirstName:        "Alice",
		LastName:         "Smith",
		Email:            "alice@example.com",
		PasswordHash:     hash,
		Role:             domain.RoleCustomer,
		RefreshTokenHash: "stored-refresh-hash",
		IsActive:         true,
	})
	require.NoError(t, err)

	return NewUserService(repo, hasher, audit, zerolog.Nop()), repo, audit, u
}

func strPtr(s string) *string { return &s }

func TestUserService_GetProfile(t *testing.T) {
	svc, _, _, u := newUserFixture(t)

	got, err := svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_UpdateProfile_PartialFields(t *testing.T) {
	svc, repo, _, u := newUserFixture(t)

	got, err := svc.UpdateProfile(context.Background(), u.ID, ports.UpdateProfileInput{
		LastName:    strPtr(" Brown "),
		PhoneNumber: strPtr("5551234567"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FirstName)
	assert.Equal(t, "Brown", got.LastName)
	assert.Equal(t, "5551234567", got.PhoneNumber)

	stored := repo.get(u.ID)
	assert.Equal(t, "Brown", stored.LastName)
	assert.Equal(t, u.PasswordHash, stored.PasswordHash)
	assert.False(t, stored.UpdatedAt.IsZero())

	got, err = svc.UpdateProfile(context.Background(), u.ID, ports.UpdateProfileInput{PhoneNumber: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, got.PhoneNumber)
	assert.Empty(t, repo.get(u.ID).PhoneNumber)
}

func TestUserService_ChangePassword(t *testing.T) {
	svc, repo, audit, u := newUserFixture(t)
	hasher := newTestHasher(t)

	err := svc.ChangePassword(context.Background(), u.ID, "wrong-password", "newpassword1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), u.ID, "password123", "password123")
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.ChangePassword(context.Background(), u.ID, "password123", "newpassword1"))
	stored := repo.get(u.ID)
	assert.True(t, hasher.Verify("newpassword1", stored.PasswordHash))
	assert.False(t, hasher.Verify("password123", stored.PasswordHash))
	assert.Equal(t, domain.EventPasswordChanged, audit.last().Type)

	err = svc.ChangePassword(context.Background(), "missing", "a", "b")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_SetActive(t *testing.T) {
	svc, repo, audit, u := newUserFixture(t)

	got, err := svc.SetActive(context.Background(), u.ID, false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.False(t, repo.get(u.ID).HasSession(), "deactivation must end the session")
	assert.Equal(t, "deactivated", audit.last().Reason)

	got, err = svc.SetActive(context.Background(), u.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, "activated", audit.last().Reason)

	_, err = svc.SetActive(context.Background(), "missing", true)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
