package dto

import (
	"time"

	"github.com/rosterhq/shift-roster/internal/domain"
)

// RegisterRequest payload for new doctors.
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6,max=72"`
	FirstName     string `json:"firstName" validate:"required,max=100"`
	LastName      string `json:"lastName" validate:"required,max=100"`
	PreferredDays *int   `json:"preferredDays" validate:"omitempty,min=0,max=7"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// UpdateProfileRequest payload for profile edits.
type UpdateProfileRequest struct {
	FirstName     *string `json:"firstName" validate:"omitempty,max=100"`
	LastName      *string `json:"lastName" validate:"omitempty,max=100"`
	PreferredDays *int    `json:"preferredDays" validate:"omitempty,min=0,max=7"`
}

// UpdateStatusRequest payload for admin account changes.
type UpdateStatusRequest struct {
	IsActive *bool   `json:"isActive"`
	Role     *string `json:"role" validate:"omitempty,oneof=doctor admin"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID            string      `json:"id"`
	Email         string      `json:"email"`
	FirstName     string      `json:"firstName"`
	LastName      string      `json:"lastName"`
	Role          domain.Role `json:"role"`
	IsActive      bool        `json:"isActive"`
	PreferredDays *int        `json:"preferredDays,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// NewUserResponse maps a domain user, dropping the credential hash.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		IsActive:      u.Active,
		PreferredDays: u.PreferredDays,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
