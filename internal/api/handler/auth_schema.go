package handler

import (
	"time"

	"github.com/bazaar/marketplace-api/internal/core/domain"
)

type registerRequest struct {
	FirstName   string `json:"firstName"   validate:"required,min=2,max=50"`
	LastName    string `json:"lastName"    validate:"required,min=2,max=50"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=8"`
	Role        string `json:"role"        validate:"omitempty,oneof=customer seller admin"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,phone"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type updateProfileRequest struct {
	FirstName   *string `json:"firstName"   validate:"omitempty,min=2,max=50"`
	LastName    *string `json:"lastName"    validate:"omitempty,min=2,max=50"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitnil,phone_or_blank"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8"`
}

type setStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// userResponse is the public view of an account. Hashes never leave the service.
type userResponse struct {
	UserID      string    `json:"userId"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type authPayload struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type refreshPayload struct {
	AccessToken string `json:"accessToken"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		UserID:      u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Role:        string(u.Role),
		PhoneNumber: u.PhoneNumber,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
