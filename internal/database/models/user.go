package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Base
	Name         string    `gorm:"not null" json:"name"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Registration string    `gorm:"size:6;uniqueIndex;not null" json:"registration"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	ProfileID    uuid.UUID `gorm:"type:uuid;index;not null" json:"profile_id"`

	// Relationships
	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// PasswordReset holds the single outstanding reset token for an email.
type PasswordReset struct {
	Email          string    `gorm:"primaryKey" json:"email"`
	Token          string    `gorm:"index;not null" json:"-"`
	ExpirationDate time.Time `gorm:"not null" json:"expiration_date"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}
