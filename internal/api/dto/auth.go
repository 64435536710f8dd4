package dto

import (
	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/api/validation"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a user whose first password is the registration code.
type RegisterRequest struct {
	Name         string    `json:"name" validate:"required,max=255"`
	Username     string    `json:"username" validate:"required,max=255"`
	Email        string    `json:"email" validate:"required,max=255"`
	Registration string    `json:"registration" validate:"required"`
	ProfileID    uuid.UUID `json:"profile_id" validate:"required"`
}

func (r *RegisterRequest) Sanitize() {
	r.Name = validation.SanitizeString(r.Name)
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}
