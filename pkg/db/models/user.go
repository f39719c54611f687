package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity.
type User struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email             string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash      string     `gorm:"column:password_hash;not null"`
	Name              string     `gorm:"column:name;not null"`
	EmailVerified     bool       `gorm:"column:email_verified;not null;default:false"`
	VerificationToken *string    `gorm:"column:verification_token;index"`
	LastLoginAt       *time.Time `gorm:"column:last_login_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
