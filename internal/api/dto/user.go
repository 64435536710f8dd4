package dto

import (
	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/api/validation"
)

type UpdateUserRequest struct {
	Name         string    `json:"name" validate:"required,max=255"`
	Username     string    `json:"username" validate:"required,max=255"`
	Email        string    `json:"email" validate:"required,max=255"`
	Registration string    `json:"registration" validate:"required"`
	ProfileID    uuid.UUID `json:"profile_id" validate:"required"`
}

func (r *UpdateUserRequest) Sanitize() {
	r.Name = validation.SanitizeString(r.Name)
}
