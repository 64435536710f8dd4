package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"gorm.io/gorm/clause"
)

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.conn(ctx).Preload("Profile").Order("name").Find(&users).Error
	return users, wrap("list users", err)
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findUser(ctx, "get user", "id = ?", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "get user by username", "username = ?", username)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "get user by email", "email = ?", email)
}

func (s *Store) GetUserByRegistration(ctx context.Context, registration string) (*models.User, error) {
	return s.findUser(ctx, "get user by registration", "registration = ?", registration)
}

func (s *Store) findUser(ctx context.Context, op, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Preload("Profile").Where(query, arg).First(&user).Error; err != nil {
		return nil, wrap(op, err)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return wrap("create user", s.conn(ctx).Omit(clause.Associations).Create(user).Error)
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	return wrap("update user", s.conn(ctx).Omit(clause.Associations).Save(user).Error)
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return wrap("delete user", requireAffected(s.conn(ctx).Delete(&models.User{}, "id = ?", id)))
}

func (s *Store) CountUsersWithProfile(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.User{}).Where("profile_id = ?", profileID).Count(&n).Error
	return n, wrap("count users with profile", err)
}
