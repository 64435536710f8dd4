package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/database/models"
)

// Hasher produces and checks password digests.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Notifier delivers password reset tokens out of band.
type Notifier interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// Authenticator defines the interface for user authentication operations.
type Authenticator interface {
	Login(ctx context.Context, input LoginInput) (*LoginResponse, error)
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, token string) (*models.PasswordReset, error)
	ResetPassword(ctx context.Context, token, password string) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateToken(userID uuid.UUID, username, profile string, isAdmin bool) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
	_ Hasher        = (*BcryptHasher)(nil)
	_ Notifier      = (*HTTPNotifier)(nil)
)
