package auth

import (
	"github.com/siamcode/standupstrip-backend/internal/users"
)

// RegisterInput captures a signup request.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginInput captures a credential check.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput captures a profile edit. Only the display name is
// editable; email changes would invalidate verification.
type UpdateProfileInput struct {
	Name string
}

// AuthResponse carries the freshly minted access token and the profile it
// belongs to.
type AuthResponse struct {
	Token string        `json:"token"`
	User  users.UserDTO `json:"user"`
}
