package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"github.com/hugh/go-gatekeeper/internal/store"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
)

const (
	RegistrationLength   = 6
	DefaultResetTokenTTL = 10 * time.Minute
)

var (
	ErrUserNotFound         = apperr.NotFound("user not found")
	ErrProfileNotFound      = apperr.NotFound("profile not found")
	ErrEmailNotFound        = apperr.NotFound("no user with the given email")
	ErrInvalidCredentials   = apperr.Unauthorized("invalid credentials")
	ErrInvalidRegistration  = apperr.BadRequest("registration must have exactly 6 characters")
	ErrUsernameTaken        = apperr.Conflict("a user with this username already exists")
	ErrEmailTaken           = apperr.Conflict("a user with this email already exists")
	ErrRegistrationTaken    = apperr.Conflict("a user with this registration already exists")
	ErrInvalidResetToken    = apperr.BadRequest("invalid or expired token")
	ErrResetDeliveryFailure = errors.New("password reset email could not be sent")
)

type Service struct {
	store    *store.Store
	hasher   Hasher
	tokens   *JWTService
	notifier Notifier
	log      *slog.Logger
	resetTTL time.Duration
	now      func() time.Time
}

type Option func(*Service)

func WithResetTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

// WithClock replaces the wall clock used for reset token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st *store.Store, hasher Hasher, tokens *JWTService, notifier Notifier, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    st,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
		resetTTL: DefaultResetTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type LoginInput struct {
	Username string
	Password string
}

type RegisterInput struct {
	Name         string
	Username     string
	Email        string
	Registration string
	ProfileID    uuid.UUID
}

// UserInfo is the caller summary returned after login.
type UserInfo struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Registration string    `json:"registration"`
	Profile      string    `json:"profile"`
	IsAdmin      bool      `json:"is_admin"`
}

type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	UserInfo    UserInfo `json:"user_info"`
}

func NewUserInfo(user *models.User) UserInfo {
	info := UserInfo{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Username:     user.Username,
		Registration: user.Registration,
	}
	if user.Profile != nil {
		info.Profile = user.Profile.Name
		info.IsAdmin = user.Profile.IsAdmin
	}
	return info
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResponse, error) {
	user, err := s.store.GetUserByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Handle(s.log, err, "error signing in")
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	info := NewUserInfo(user)
	token, err := s.tokens.GenerateToken(user.ID, user.Username, info.Profile, info.IsAdmin)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error signing in")
	}

	return &LoginResponse{AccessToken: token, UserInfo: info}, nil
}

// Register creates a user whose initial password is their registration code.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if utf8.RuneCountInString(input.Registration) != RegistrationLength {
		return nil, ErrInvalidRegistration
	}

	err := s.firstTaken(ctx, uuid.Nil,
		uniqueCheck{s.store.GetUserByUsername, input.Username, ErrUsernameTaken},
		uniqueCheck{s.store.GetUserByEmail, input.Email, ErrEmailTaken},
		uniqueCheck{s.store.GetUserByRegistration, input.Registration, ErrRegistrationTaken},
	)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error registering user")
	}

	profile, err := s.store.GetProfileByID(ctx, input.ProfileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, apperr.Handle(s.log, err, "error registering user")
	}

	hash, err := s.hasher.Hash(input.Registration)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error registering user")
	}

	user := &models.User{
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		Registration: input.Registration,
		PasswordHash: hash,
		ProfileID:    profile.ID,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, apperr.Handle(s.log, err, "error registering user")
	}

	user.Profile = profile
	return user, nil
}

type uniqueCheck struct {
	lookup func(context.Context, string) (*models.User, error)
	value  string
	err    error
}

// firstTaken returns the error of the first check whose value is held by a
// user other than self.
func (s *Service) firstTaken(ctx context.Context, self uuid.UUID, checks ...uniqueCheck) error {
	for _, c := range checks {
		existing, err := c.lookup(ctx, c.value)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if existing.ID != self {
			return c.err
		}
	}
	return nil
}

// RequestPasswordReset stores a fresh token for the email and hands it to the
// notifier. The token stays stored even when delivery fails.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if _, err := s.store.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEmailNotFound
		}
		return apperr.Handle(s.log, err, "error requesting password reset")
	}

	reset := &models.PasswordReset{
		Email:          email,
		Token:          strings.ReplaceAll(uuid.NewString(), "-", ""),
		ExpirationDate: s.now().Add(s.resetTTL).UTC(),
	}
	if err := s.store.UpsertPasswordReset(ctx, reset); err != nil {
		return apperr.Handle(s.log, err, "error requesting password reset")
	}

	if err := s.notifier.SendPasswordReset(ctx, email, reset.Token); err != nil {
		s.log.Error("password reset delivery failed", "email", email, "error", err)
		return apperr.Internal(errors.Join(ErrResetDeliveryFailure, err), "failed to send password reset email")
	}

	s.log.Info("password reset requested", "email", email)
	return nil
}

func (s *Service) ValidateResetToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	if token == "" {
		return nil, ErrInvalidResetToken
	}

	reset, err := s.store.GetPasswordResetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, apperr.Handle(s.log, err, "error validating token")
	}

	if s.now().After(reset.ExpirationDate) {
		return nil, ErrInvalidResetToken
	}
	return reset, nil
}

// ResetPassword consumes the token. A consumed token is rejected like an unknown one.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	reset, err := s.ValidateResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperr.Handle(s.log, err, "error resetting password")
	}

	if err := s.store.ConsumePasswordReset(ctx, reset.Email, reset.Token, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return apperr.Handle(s.log, err, "error resetting password")
	}
	return nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Handle(s.log, err, "error fetching user")
	}
	return user, nil
}
