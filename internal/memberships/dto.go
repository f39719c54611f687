package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	"github.com/siamcode/standupstrip-backend/pkg/enums"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID          uuid.UUID              `json:"id"`
	TeamID      uuid.UUID              `json:"team_id"`
	UserID      uuid.UUID              `json:"user_id"`
	Role        enums.MemberRole       `json:"role"`
	Status      enums.InvitationStatus `json:"status"`
	InvitedAt   time.Time              `json:"invited_at"`
	RespondedAt *time.Time             `json:"responded_at,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// TeamMemberDTO mixes membership metadata with the member's profile for
// team listings and reminder dispatch.
type TeamMemberDTO struct {
	MembershipID uuid.UUID              `json:"membership_id"`
	TeamID       uuid.UUID              `json:"team_id"`
	UserID       uuid.UUID              `json:"user_id"`
	Email        string                 `json:"email"`
	Name         string                 `json:"name"`
	Role         enums.MemberRole       `json:"role"`
	Status       enums.InvitationStatus `json:"status"`
	InvitedAt    time.Time              `json:"invited_at"`
	RespondedAt  *time.Time             `json:"responded_at,omitempty"`
}

// InvitationDTO is the member-facing view of a pending invite, joined with
// team metadata so the client can render it without a second lookup.
type InvitationDTO struct {
	MembershipID uuid.UUID        `json:"membership_id"`
	TeamID       uuid.UUID        `json:"team_id"`
	TeamName     string           `json:"team_name"`
	Role         enums.MemberRole `json:"role"`
	InvitedAt    time.Time        `json:"invited_at"`
}

// MembershipWithTeam joins a membership with its team for list-my-teams.
type MembershipWithTeam struct {
	TeamID          uuid.UUID        `json:"team_id"`
	TeamName        string           `json:"team_name"`
	TeamDescription *string          `json:"team_description,omitempty"`
	OwnerUserID     uuid.UUID        `json:"owner_user_id"`
	InviteCode      string           `json:"invite_code"`
	Role            enums.MemberRole `json:"role"`
	JoinedAt        *time.Time       `json:"joined_at,omitempty"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.TeamMember) *MembershipDTO {
	if m == nil {
		return nil
	}
	return &MembershipDTO{
		ID:          m.ID,
		TeamID:      m.TeamID,
		UserID:      m.UserID,
		Role:        m.Role,
		Status:      m.Status,
		InvitedAt:   m.InvitedAt,
		RespondedAt: copyTimePointer(m.RespondedAt),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func copyTimePointer(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
