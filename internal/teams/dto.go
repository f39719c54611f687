package teams

import (
	"time"

	"github.com/google/uuid"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	"github.com/siamcode/standupstrip-backend/pkg/enums"
)

// TeamDTO is the transport shape for a team the caller belongs to.
type TeamDTO struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	OwnerUserID uuid.UUID         `json:"owner_user_id"`
	InviteCode  string            `json:"invite_code"`
	Role        *enums.MemberRole `json:"role,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TeamPreviewDTO is the public shape returned for invite-code lookups. No
// invite code or owner id leaks to unauthenticated callers.
type TeamPreviewDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

// CreateTeamInput captures the fields for creating a team.
type CreateTeamInput struct {
	Name        string
	Description *string
}

// UpdateTeamInput captures the owner-mutable team fields.
type UpdateTeamInput struct {
	Name        *string
	Description *string
}

// InviteMemberInput captures the data required to invite a member by email.
type InviteMemberInput struct {
	Email string
	Role  enums.MemberRole
}

// FromModel converts a team model to the external DTO.
func FromModel(m *models.Team) *TeamDTO {
	if m == nil {
		return nil
	}
	return &TeamDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: copyStringPointer(m.Description),
		OwnerUserID: m.OwnerUserID,
		InviteCode:  m.InviteCode,
		CreatedAt:   m.CreatedAt,
	}
}

// PreviewFromModel converts a team model to its public preview.
func PreviewFromModel(m *models.Team) *TeamPreviewDTO {
	if m == nil {
		return nil
	}
	return &TeamPreviewDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: copyStringPointer(m.Description),
	}
}

func copyStringPointer(src *string) *string {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
