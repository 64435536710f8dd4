package store

import (
	"context"

	"github.com/hugh/go-gatekeeper/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertPasswordReset stores the token for the email, replacing any previous one.
func (s *Store) UpsertPasswordReset(ctx context.Context, r *models.PasswordReset) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expiration_date"}),
	}).Create(r).Error
	return wrap("upsert password reset", err)
}

func (s *Store) GetPasswordResetByToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	var r models.PasswordReset
	if err := s.conn(ctx).Where("token = ?", token).First(&r).Error; err != nil {
		return nil, wrap("get password reset", err)
	}
	return &r, nil
}

// ConsumePasswordReset sets the new password digest and deletes the token in
// one transaction. A token consumed concurrently yields ErrNotFound.
func (s *Store) ConsumePasswordReset(ctx context.Context, email, token, passwordHash string) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAffected(tx.Where("email = ? AND token = ?", email, token).
			Delete(&models.PasswordReset{})); err != nil {
			return err
		}
		return requireAffected(tx.Model(&models.User{}).Where("email = ?", email).
			Update("password", passwordHash))
	})
	return wrap("consume password reset", err)
}
