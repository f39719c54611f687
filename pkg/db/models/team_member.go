package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/siamcode/standupstrip-backend/pkg/enums"
)

// TeamMember links a user with a team and carries the invitation lifecycle.
// At most one row exists per (team, user); re-inviting reuses the row.
type TeamMember struct {
	ID          uuid.UUID              `gorm:"type:uuid;primaryKey"`
	TeamID      uuid.UUID              `gorm:"column:team_id;type:uuid;not null;uniqueIndex:idx_team_members_team_user"`
	UserID      uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_team_members_team_user;index"`
	Role        enums.MemberRole       `gorm:"column:role;type:text;not null"`
	Status      enums.InvitationStatus `gorm:"column:status;type:text;not null"`
	InvitedAt   time.Time              `gorm:"column:invited_at;not null"`
	RespondedAt *time.Time             `gorm:"column:responded_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
