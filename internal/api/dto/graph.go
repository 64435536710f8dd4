package dto

import (
	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/api/validation"
)

type ModuleRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	Description     string `json:"description" validate:"max=1000"`
	TextColor       string `json:"text_color" validate:"max=32"`
	BackgroundColor string `json:"background_color" validate:"max=32"`
}

// ItemRequest is the body for both transactions and functions.
type ItemRequest struct {
	Name        string    `json:"name" validate:"required,max=255"`
	Description string    `json:"description" validate:"max=1000"`
	ModuleID    uuid.UUID `json:"module_id" validate:"required"`
}

// UpdateItemRequest may omit module_id, which keeps the current module.
type UpdateItemRequest struct {
	Name        string    `json:"name" validate:"required,max=255"`
	Description string    `json:"description" validate:"max=1000"`
	ModuleID    uuid.UUID `json:"module_id"`
}

func (r *ModuleRequest) Sanitize() {
	r.Name = validation.SanitizeString(r.Name)
	r.Description = validation.SanitizeString(r.Description)
}

func (r *ItemRequest) Sanitize() {
	r.Name = validation.SanitizeString(r.Name)
	r.Description = validation.SanitizeString(r.Description)
}

func (r *UpdateItemRequest) Sanitize() {
	r.Name = validation.SanitizeString(r.Name)
	r.Description = validation.SanitizeString(r.Description)
}

type ProfileRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
	IsAdmin     bool   `json:"is_admin"`
}

func (r *ProfileRequest) Sanitize() {
	r.Name = validation.SanitizeString(r.Name)
	r.Description = validation.SanitizeString(r.Description)
}

type GrantModulesRequest struct {
	ModuleIDs []uuid.UUID `json:"module_ids" validate:"required"`
}

type GrantTransactionsRequest struct {
	TransactionIDs []uuid.UUID `json:"transaction_ids" validate:"required"`
}

type GrantFunctionsRequest struct {
	FunctionIDs []uuid.UUID `json:"function_ids" validate:"required"`
}
