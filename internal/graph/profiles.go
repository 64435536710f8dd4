package graph

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"github.com/hugh/go-gatekeeper/internal/store"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
)

type ProfileInput struct {
	Name        string
	Description string
	IsAdmin     bool
}

// ProfileDetail is a profile together with its full grant tree.
type ProfileDetail struct {
	models.Profile
	Modules []ModuleNode `json:"modules"`
}

func (s *Service) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error listing profiles")
	}
	return profiles, nil
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*ProfileDetail, error) {
	profile, err := s.store.GetProfileByID(ctx, id)
	if err != nil {
		return nil, s.lookup(err, ErrProfileNotFound, "error fetching profile")
	}

	modules, err := s.grantTree(ctx, profile.ID, nil)
	if err != nil {
		return nil, apperr.Handle(s.log, err, "error fetching profile")
	}
	return &ProfileDetail{Profile: *profile, Modules: modules}, nil
}

func (s *Service) CreateProfile(ctx context.Context, input ProfileInput) (*models.Profile, error) {
	if err := s.profileNameFree(ctx, uuid.Nil, input.Name); err != nil {
		return nil, apperr.Handle(s.log, err, "error creating profile")
	}

	profile := &models.Profile{
		Name:        input.Name,
		Description: input.Description,
		IsAdmin:     input.IsAdmin,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		return nil, apperr.Handle(s.log, err, "error creating profile")
	}
	return profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileInput) (*models.Profile, error) {
	profile, err := s.store.GetProfileByID(ctx, id)
	if err != nil {
		return nil, s.lookup(err, ErrProfileNotFound, "error updating profile")
	}

	if err := s.profileNameFree(ctx, id, input.Name); err != nil {
		return nil, apperr.Handle(s.log, err, "error updating profile")
	}

	profile.Name = input.Name
	profile.Description = input.Description
	profile.IsAdmin = input.IsAdmin
	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		return nil, apperr.Handle(s.log, err, "error updating profile")
	}
	return profile, nil
}

// DeleteProfile refuses while users are assigned to the profile; otherwise the
// profile and all of its grants go in one transaction.
func (s *Service) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.GetProfileByID(ctx, id); err != nil {
		return s.lookup(err, ErrProfileNotFound, "error deleting profile")
	}

	err := s.store.DeleteProfile(ctx, id)
	switch {
	case err == nil:
		s.log.Info("profile deleted", "profile_id", id)
		return nil
	case errors.Is(err, store.ErrInUse):
		return ErrProfileInUse
	default:
		return s.lookup(err, ErrProfileNotFound, "error deleting profile")
	}
}

func (s *Service) profileNameFree(ctx context.Context, self uuid.UUID, name string) error {
	existing, err := s.store.GetProfileByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return ErrProfileNameTaken
	}
	return nil
}
