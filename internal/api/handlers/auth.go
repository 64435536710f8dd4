package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/go-gatekeeper/internal/api/dto"
	"github.com/hugh/go-gatekeeper/internal/api/middleware"
	"github.com/hugh/go-gatekeeper/internal/api/validation"
	"github.com/hugh/go-gatekeeper/internal/auth"
)

type AuthHandler struct {
	authService *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Register serves both /auth/register and /users/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		Registration: req.Registration,
		ProfileID:    req.ProfileID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "password reset email sent")
}

func (h *AuthHandler) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	reset, err := h.authService.ValidateResetToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reset)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "password updated")
}

// Me returns the caller's summary.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, auth.NewUserInfo(user))
}
