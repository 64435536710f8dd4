package auth

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"github.com/hugh/go-gatekeeper/internal/store"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
)

var (
	ErrRegistrationBelongsToOther = apperr.Conflict("this registration belongs to another user")
	ErrUsernameBelongsToOther     = apperr.Conflict("this username belongs to another user")
	ErrEmailBelongsToOther        = apperr.Conflict("this email belongs to another user")
)

type UpdateUserInput struct {
	Name         string
	Username     string
	Email        string
	Registration string
	ProfileID    uuid.UUID
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error listing users")
	}
	return users, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if utf8.RuneCountInString(input.Registration) != RegistrationLength {
		return nil, ErrInvalidRegistration
	}

	err = s.firstTaken(ctx, id,
		uniqueCheck{s.store.GetUserByRegistration, input.Registration, ErrRegistrationBelongsToOther},
		uniqueCheck{s.store.GetUserByUsername, input.Username, ErrUsernameBelongsToOther},
		uniqueCheck{s.store.GetUserByEmail, input.Email, ErrEmailBelongsToOther},
	)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error updating user")
	}

	profile, err := s.store.GetProfileByID(ctx, input.ProfileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, apperr.Handle(s.log, err, "error updating user")
	}

	user.Name = input.Name
	user.Username = input.Username
	user.Email = input.Email
	user.Registration = input.Registration
	user.ProfileID = profile.ID
	user.Profile = nil

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, apperr.Handle(s.log, err, "error updating user")
	}

	user.Profile = profile
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetUserByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return apperr.Handle(s.log, err, "error deleting user")
	}
	return nil
}
