package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"gorm.io/gorm"
)

func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := s.conn(ctx).Order("name").Find(&profiles).Error
	return profiles, wrap("list profiles", err)
}

func (s *Store) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, wrap("get profile", err)
	}
	return &p, nil
}

func (s *Store) GetProfileByName(ctx context.Context, name string) (*models.Profile, error) {
	var p models.Profile
	if err := s.conn(ctx).Where("name = ?", name).First(&p).Error; err != nil {
		return nil, wrap("get profile by name", err)
	}
	return &p, nil
}

func (s *Store) CreateProfile(ctx context.Context, p *models.Profile) error {
	return wrap("create profile", s.conn(ctx).Create(p).Error)
}

func (s *Store) UpdateProfile(ctx context.Context, p *models.Profile) error {
	return wrap("update profile", s.conn(ctx).Save(p).Error)
}

// DeleteProfile removes the profile and every grant it holds. It fails with
// ErrInUse while any user is still assigned to the profile.
func (s *Store) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOne(tx, &models.Profile{}, "id = ?", id); err != nil {
			return err
		}
		var users int64
		if err := tx.Model(&models.User{}).Where("profile_id = ?", id).Count(&users).Error; err != nil {
			return err
		}
		if users > 0 {
			return ErrInUse
		}

		if err := tx.Where("profile_id = ?", id).Delete(&models.ProfileFunction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&models.ProfileTransaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&models.ProfileModule{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Delete(&models.Profile{}, "id = ?", id))
	})
	return wrap("delete profile", err)
}
