package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
)

// CreateUserDTO carries the fields needed to persist a new user.
type CreateUserDTO struct {
	Email             string
	PasswordHash      string
	Name              string
	EmailVerified     bool
	VerificationToken *string
}

// UserDTO is the transport shape for a user profile.
type UserDTO struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	EmailVerified bool       `json:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// FromModel converts a model to the external DTO. Password material never
// leaves this package.
func FromModel(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	return &UserDTO{
		ID:            m.ID,
		Email:         m.Email,
		Name:          m.Name,
		EmailVerified: m.EmailVerified,
		LastLoginAt:   copyTimePointer(m.LastLoginAt),
		CreatedAt:     m.CreatedAt,
	}
}

func copyTimePointer(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
